package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleAllSelectsExactlyProjection(t *testing.T) {
	prev := New("stale", "a")

	next := ToggleAll([]string{"a", "b", "c"}, prev, true)

	assert.Equal(t, []string{"a", "b", "c"}, next.IDs())
	assert.Equal(t, []string{"a", "stale"}, prev.IDs(), "input must not change")
	assert.Equal(t, 0, ToggleAll([]string{"a"}, next, false).Len())
}

func TestToggleOne(t *testing.T) {
	s := ToggleOne("a", Set{})
	assert.True(t, s.Has("a"))

	s2 := ToggleOne("a", s)
	assert.False(t, s2.Has("a"))
	assert.True(t, s.Has("a"))

	assert.Equal(t, 0, ToggleOne("", Set{}).Len())
}

func TestReconcileKeepsOnlyEligibleIDs(t *testing.T) {
	projections := [][]string{
		{"a", "b", "c"},
		{"b"},
		{},
		{"c", "d"},
	}
	sel := New("a", "b", "c")
	for _, proj := range projections {
		sel = Reconcile(sel, proj)
		eligible := New(proj...)
		for _, id := range sel.IDs() {
			assert.True(t, eligible.Has(id), "id %s not in projection %v", id, proj)
		}
	}
	assert.Equal(t, 0, sel.Len())
}

func TestOrderedFollowsProjection(t *testing.T) {
	sel := New("c", "a")
	assert.Equal(t, []string{"c", "a"}, sel.Ordered([]string{"c", "b", "a"}))
}
