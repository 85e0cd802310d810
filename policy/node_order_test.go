package policy

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomOrderIsPermutation(t *testing.T) {
	order := NewRandomOrder()
	addrs := []string{"a", "b", "c", "d", "e"}

	for range 20 {
		got := order.Order(slices.Clone(addrs))
		require.ElementsMatch(t, addrs, got)
	}
}

func TestRandomOrderVisitsEveryFirstPosition(t *testing.T) {
	order := NewRandomOrder()
	addrs := []string{"a", "b", "c"}
	seen := make(map[string]bool)

	for range 300 {
		seen[order.Order(slices.Clone(addrs))[0]] = true
	}

	require.Len(t, seen, 3)
}

func TestRandomOrderSeeded(t *testing.T) {
	addrs := []string{"a", "b", "c", "d", "e", "f"}

	first := NewRandomOrder(WithSeed(42))
	second := NewRandomOrder(WithSeed(42))

	for range 5 {
		require.Equal(t,
			first.Order(slices.Clone(addrs)),
			second.Order(slices.Clone(addrs)),
		)
	}
}

func TestRandomOrderEmpty(t *testing.T) {
	require.Empty(t, NewRandomOrder().Order(nil))
	require.Equal(t, []string{"a"}, NewRandomOrder().Order([]string{"a"}))
}

func TestFixedOrder(t *testing.T) {
	require.Equal(t, []string{"b", "a"}, NewFixedOrder().Order([]string{"b", "a"}))
}

func TestRoundRobinOrder(t *testing.T) {
	order := NewRoundRobinOrder()
	addrs := []string{"a", "b", "c"}

	require.Equal(t, []string{"a", "b", "c"}, order.Order(addrs))
	require.Equal(t, []string{"b", "c", "a"}, order.Order(addrs))
	require.Equal(t, []string{"c", "a", "b"}, order.Order(addrs))
	require.Equal(t, []string{"a", "b", "c"}, order.Order(addrs))

	// Input is not modified
	require.Equal(t, []string{"a", "b", "c"}, addrs)
	require.Empty(t, order.Order(nil))
}

func TestStickyOrderKeepsPreferred(t *testing.T) {
	order := NewStickyOrder(WithPreferredNode("b"))
	addrs := []string{"a", "b", "c"}

	for range 10 {
		got := order.Order(slices.Clone(addrs))
		require.Equal(t, "b", got[0])
		require.ElementsMatch(t, addrs, got)
	}
}

func TestStickyOrderPicksPreferredOnFirstUse(t *testing.T) {
	order := NewStickyOrder()
	require.Empty(t, order.Preferred())

	got := order.Order([]string{"a", "b", "c"})
	require.Equal(t, got[0], order.Preferred())

	for range 10 {
		require.Equal(t, got[0], order.Order([]string{"a", "b", "c"})[0])
	}
}

func TestStickyOrderFailover(t *testing.T) {
	order := NewStickyOrder(WithPreferredNode("a"), WithStickyCooldown(0))

	order.OnFailure("a", errors.New("down"))
	require.Empty(t, order.Preferred())

	order.OnSuccess("c")
	require.Equal(t, "c", order.Preferred())
	require.Equal(t, "c", order.Order([]string{"a", "b", "c"})[0])
}

func TestStickyOrderIgnoresNonPreferredFailure(t *testing.T) {
	order := NewStickyOrder(WithPreferredNode("a"), WithStickyCooldown(0))

	order.OnFailure("b", errors.New("down"))
	require.Equal(t, "a", order.Preferred())
}

func TestStickyOrderFailoverCooldown(t *testing.T) {
	order := NewStickyOrder(WithPreferredNode("a"))

	// First failover is allowed
	order.OnFailure("a", errors.New("down"))
	order.OnSuccess("b")
	require.Equal(t, "b", order.Preferred())

	// Second failover is blocked by the cooldown
	order.OnFailure("b", errors.New("down"))
	require.Equal(t, "b", order.Preferred())
}

func TestStickyOrderPreferredLeftPool(t *testing.T) {
	order := NewStickyOrder(WithPreferredNode("gone"))

	got := order.Order([]string{"a", "b"})
	require.Equal(t, got[0], order.Preferred())
}
