package policy

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// RandomOrder shuffles the pool uniformly for every attempt cycle.
//
// Spreading attempts over a random permutation avoids every client herding
// onto the same first node. This is the default order of a router.
type RandomOrder struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// RandomOrderOption configures a RandomOrder.
type RandomOrderOption func(*RandomOrder)

// WithSeed makes the permutation sequence deterministic.
//
// Parameters:
//   - seed: Seed of the pseudo-random generator
//
// Returns:
//   - RandomOrderOption: Configuration option
func WithSeed(seed uint64) RandomOrderOption {
	return func(o *RandomOrder) {
		o.rng = mrand.New(mrand.NewPCG(seed, seed))
	}
}

// NewRandomOrder creates a RandomOrder.
//
// Without WithSeed, permutations are drawn from crypto/rand.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *RandomOrder: A new random order
func NewRandomOrder(opts ...RandomOrderOption) *RandomOrder {
	o := &RandomOrder{}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Order shuffles addresses in place and returns them.
func (o *RandomOrder) Order(addresses []string) []string {
	if o.rng != nil {
		o.mu.Lock()
		o.rng.Shuffle(len(addresses), func(i, j int) {
			addresses[i], addresses[j] = addresses[j], addresses[i]
		})
		o.mu.Unlock()

		return addresses
	}

	for i := len(addresses) - 1; i > 0; i-- {
		j := randomIndex(i + 1)
		addresses[i], addresses[j] = addresses[j], addresses[i]
	}

	return addresses
}

// randomIndex returns a uniform index in [0, n).
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}

	return int(v.Int64())
}

// FixedOrder keeps the pool order. It is meant for tests and for pools
// listing a preferred node first.
type FixedOrder struct{}

// NewFixedOrder creates a FixedOrder.
//
// Returns:
//   - *FixedOrder: A new fixed order
func NewFixedOrder() *FixedOrder {
	return &FixedOrder{}
}

// Order returns addresses unchanged.
func (*FixedOrder) Order(addresses []string) []string {
	return addresses
}

// RoundRobinOrder rotates the pool by one position on every call.
//
// This provides even load distribution across requests.
type RoundRobinOrder struct {
	counter atomic.Uint64
}

// NewRoundRobinOrder creates a RoundRobinOrder.
//
// Returns:
//   - *RoundRobinOrder: A new round-robin order
func NewRoundRobinOrder() *RoundRobinOrder {
	return &RoundRobinOrder{}
}

// Order returns addresses rotated by the call count.
func (r *RoundRobinOrder) Order(addresses []string) []string {
	if len(addresses) == 0 {
		return addresses
	}

	start := int((r.counter.Add(1) - 1) % uint64(len(addresses)))

	return append(slices.Clone(addresses[start:]), addresses[:start]...)
}

// StickyOrder sends requests to a preferred node first to maximize cache
// hits, followed by the remaining nodes in random order.
//
// The preferred node is chosen randomly on first use. When it fails, the
// next attempted node becomes preferred, at most once per cooldown period.
type StickyOrder struct {
	mu               sync.Mutex
	preferred        string
	lastFailoverTime time.Time
	failoverCooldown time.Duration
	shuffle          *RandomOrder
}

// StickyOrderOption configures a StickyOrder.
type StickyOrderOption func(*StickyOrder)

// WithStickyCooldown sets the minimum time between two preferred node changes.
//
// Parameters:
//   - d: Cooldown duration
//
// Returns:
//   - StickyOrderOption: Configuration option
func WithStickyCooldown(d time.Duration) StickyOrderOption {
	return func(s *StickyOrder) {
		s.failoverCooldown = d
	}
}

// WithPreferredNode sets the initial preferred node.
//
// Parameters:
//   - node: Normalized node address, e.g. "http://solr1:8983/solr/"
//
// Returns:
//   - StickyOrderOption: Configuration option
func WithPreferredNode(node string) StickyOrderOption {
	return func(s *StickyOrder) {
		s.preferred = node
	}
}

// NewStickyOrder creates a StickyOrder.
//
// By default the failover cooldown is 5 minutes.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *StickyOrder: A new sticky order
func NewStickyOrder(opts ...StickyOrderOption) *StickyOrder {
	s := &StickyOrder{
		failoverCooldown: 5 * time.Minute,
		shuffle:          NewRandomOrder(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Order returns the preferred node first and the others shuffled.
//
// When the preferred node left the pool, a new one is picked at random.
func (s *StickyOrder) Order(addresses []string) []string {
	addresses = s.shuffle.Order(addresses)
	if len(addresses) == 0 {
		return addresses
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(addresses, s.preferred)
	if idx < 0 {
		s.preferred = addresses[0]

		return addresses
	}

	addresses[0], addresses[idx] = addresses[idx], addresses[0]

	return addresses
}

// Preferred returns the current preferred node, "" before first use.
func (s *StickyOrder) Preferred() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.preferred
}

// OnSuccess moves preference to a node that answered while the preferred
// one is failing.
func (s *StickyOrder) OnSuccess(node string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.preferred == "" {
		s.preferred = node
	}
}

// OnFailure clears the preference when the preferred node failed and the
// cooldown has passed, so the next successful node becomes preferred.
func (s *StickyOrder) OnFailure(node string, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node != s.preferred {
		return
	}

	if !s.lastFailoverTime.IsZero() && time.Since(s.lastFailoverTime) < s.failoverCooldown {
		return
	}

	s.preferred = ""
	s.lastFailoverTime = time.Now()
}
