package membership

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/wukong"
	"github.com/arloliu/wukong/internal/logging"
	"github.com/arloliu/wukong/types"
)

// Members is the value stored under a resource key in the NATS KV bucket.
//
// Operators, deployment tooling or the nodes themselves PUT it to announce
// the active nodes of a collection:
//
//	{"addresses": ["solr1:8983", "solr2:8983"]}
type Members struct {
	Addresses []string `json:"addresses"`
}

// NATS reads active nodes from a NATS KV bucket.
//
// Each resource is stored under KeyPrefix+resource. Looking up "" returns
// the union of every resource under the prefix. A missing or deleted key
// reports no nodes, which leaves a router's pool unchanged.
type NATS struct {
	kv     jetstream.KeyValue
	config Config
}

var _ wukong.MembershipSource = (*NATS)(nil)

// NewNATS creates a NATS KV membership source.
//
// Parameters:
//   - kv: A NATS JetStream KeyValue store
//   - opts: Optional configuration options
//
// Returns:
//   - *NATS: A new membership source
//   - error: KindConfiguration error if kv is nil
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	kv, _ := js.KeyValue(ctx, "wukong")
//
//	source, _ := membership.NewNATS(kv, membership.WithKeyPrefix("search.members."))
//	cities, err := wukong.Open("cities", nil, wukong.WithMembershipSource(source))
func NewNATS(kv jetstream.KeyValue, opts ...Option) (*NATS, error) {
	if kv == nil {
		return nil, types.NewError(types.KindConfiguration, "KeyValue store is nil")
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.Logger = logging.With(config.Logger, "source", "nats")

	return &NATS{kv: kv, config: config}, nil
}

// Config returns the source configuration.
//
// This method is primarily useful for testing to verify configuration options.
func (n *NATS) Config() Config {
	return n.config
}

// ActiveAddresses returns the nodes announced for resource.
//
// Parameters:
//   - ctx: Context for cancellation
//   - resource: Collection or alias name; "" returns every announced node
//
// Returns:
//   - []string: Node addresses; sorted when resource is ""
//   - error: KindMembership error when the bucket cannot be read
func (n *NATS) ActiveAddresses(ctx context.Context, resource string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	if resource != "" {
		members, err := n.get(ctx, n.key(resource))
		if err != nil {
			return nil, err
		}

		return members.Addresses, nil
	}

	lister, err := n.kv.ListKeys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.WrapError(types.KindMembership, "unable to list membership keys", err)
	}
	defer func() { _ = lister.Stop() }()

	union := make(map[string]struct{})
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, n.config.KeyPrefix) {
			continue
		}

		members, err := n.get(ctx, key)
		if err != nil {
			return nil, err
		}

		for _, a := range members.Addresses {
			union[a] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(union)), nil
}

// Publish announces the active nodes of a resource.
//
// Parameters:
//   - ctx: Context for cancellation
//   - resource: Collection or alias name
//   - addresses: Active node addresses
//
// Returns:
//   - error: KindMembership error if the write fails
func (n *NATS) Publish(ctx context.Context, resource string, addresses ...string) error {
	if resource == "" {
		return types.NewError(types.KindConfiguration, "resource name is empty")
	}

	data, err := json.Marshal(Members{Addresses: addresses})
	if err != nil {
		return types.WrapError(types.KindMembership, "unable to encode members", err)
	}

	if _, err := n.kv.Put(ctx, n.key(resource), data); err != nil {
		return types.WrapError(types.KindMembership, "unable to publish members of "+resource, err)
	}

	n.config.Logger.Debug("membership published",
		"resource", resource,
		"nodes", len(addresses),
	)

	return nil
}

// Remove deletes the announcement of a resource.
func (n *NATS) Remove(ctx context.Context, resource string) error {
	if err := n.kv.Delete(ctx, n.key(resource)); err != nil {
		return types.WrapError(types.KindMembership, "unable to remove members of "+resource, err)
	}

	return nil
}

func (n *NATS) key(resource string) string {
	return n.config.KeyPrefix + resource
}

func (n *NATS) get(ctx context.Context, key string) (Members, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return Members{}, nil
	}
	if err != nil {
		return Members{}, types.WrapError(types.KindMembership, "unable to read "+key, err)
	}

	var members Members
	if err := json.Unmarshal(entry.Value(), &members); err != nil {
		// Invalid JSON - treat as no announcement
		n.config.Logger.Warn("ignoring invalid membership value",
			"key", key,
			"error", err,
		)

		return Members{}, nil
	}

	return members, nil
}
