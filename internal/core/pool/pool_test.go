package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type particle struct {
	x, y float64
	life float64
}

func TestNew_NilFactory(t *testing.T) {
	_, err := New[*particle](nil)
	require.ErrorIs(t, err, ErrNilFactory)
}

func TestPool_PrefillAndGrowth(t *testing.T) {
	built := 0
	factory := func() *particle {
		built++
		return &particle{}
	}

	p, err := New(factory, WithInitialSize[*particle](5))
	require.NoError(t, err)
	require.Equal(t, 5, built, "construction must eagerly build the initial objects")
	require.Equal(t, Stats{Available: 5, InUse: 0, Total: 5}, p.Stats())

	// The first five acquisitions drain the prefill without touching
	// the factory again.
	for i := 0; i < 5; i++ {
		p.Acquire()
	}
	require.Equal(t, 5, built)

	// The sixth grows the pool by exactly one.
	p.Acquire()
	require.Equal(t, 6, built)
	require.Equal(t, Stats{Available: 0, InUse: 6, Total: 6}, p.Stats())
}

func TestPool_ResetRunsOnAcquire(t *testing.T) {
	p, err := New(
		func() *particle { return &particle{} },
		WithReset(func(pt *particle) { pt.x, pt.y, pt.life = 0, 0, 1 }),
		WithInitialSize[*particle](1),
	)
	require.NoError(t, err)

	obj := p.Acquire()
	obj.x, obj.y, obj.life = 40, 7, 0.2
	require.NoError(t, p.Release(obj))

	again := p.Acquire()
	require.Same(t, obj, again, "released object must be reused")
	require.Zero(t, again.x)
	require.Zero(t, again.y)
	require.Equal(t, 1.0, again.life)
}

func TestPool_ReleaseUnknown(t *testing.T) {
	p, err := New(func() *particle { return &particle{} })
	require.NoError(t, err)

	require.ErrorIs(t, p.Release(&particle{}), ErrNotAcquired)

	obj := p.Acquire()
	require.NoError(t, p.Release(obj))
	require.ErrorIs(t, p.Release(obj), ErrNotAcquired, "double release must be rejected")
	require.Equal(t, Stats{Available: 1, InUse: 0, Total: 1}, p.Stats())
}

func TestPool_ReleaseAll(t *testing.T) {
	p, err := New(func() *particle { return &particle{} }, WithInitialSize[*particle](3))
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		p.Acquire()
	}
	require.Equal(t, Stats{Available: 0, InUse: 7, Total: 7}, p.Stats())

	p.ReleaseAll()
	require.Equal(t, Stats{Available: 7, InUse: 0, Total: 7}, p.Stats())
}

func TestPool_EqualValueElements(t *testing.T) {
	// Value element types can hand out objects that compare equal. Each
	// one still gets its own ownership record.
	p, err := New(func() int { return 0 })
	require.NoError(t, err)

	p.Acquire()
	p.Acquire()
	require.Equal(t, Stats{Available: 0, InUse: 2, Total: 2}, p.Stats())

	require.NoError(t, p.Release(0))
	require.NoError(t, p.Release(0))
	require.ErrorIs(t, p.Release(0), ErrNotAcquired, "releases beyond acquisitions must be rejected")
	require.Equal(t, Stats{Available: 2, InUse: 0, Total: 2}, p.Stats())

	p.Acquire()
	p.Acquire()
	p.Acquire()
	p.ReleaseAll()
	require.Equal(t, Stats{Available: 3, InUse: 0, Total: 3}, p.Stats())
}

func TestPool_TotalInvariant(t *testing.T) {
	p, err := New(func() *particle { return &particle{} }, WithInitialSize[*particle](4))
	require.NoError(t, err)

	check := func() {
		s := p.Stats()
		require.Equal(t, s.Total, s.Available+s.InUse)
	}

	var held []*particle
	for i := 0; i < 10; i++ {
		held = append(held, p.Acquire())
		check()
	}
	for _, obj := range held[:5] {
		require.NoError(t, p.Release(obj))
		check()
	}
	p.ReleaseAll()
	check()
	require.Equal(t, 10, p.Stats().Total, "pool never destroys objects")
}
