package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAABB_Intersects(t *testing.T) {
	t.Run("Overlapping", func(t *testing.T) {
		a := NewAABB(0, 0, 10, 10)
		b := NewAABB(5, 5, 10, 10)

		require.True(t, a.Intersects(b))
		require.True(t, b.Intersects(a))
	})

	t.Run("Disjoint", func(t *testing.T) {
		a := NewAABB(0, 0, 10, 10)
		b := NewAABB(20, 20, 5, 5)

		require.False(t, a.Intersects(b))
		require.False(t, b.Intersects(a))
	})

	t.Run("Edge Touch Is Not An Intersection", func(t *testing.T) {
		a := NewAABB(0, 0, 10, 10)
		right := NewAABB(10, 0, 10, 10)
		above := NewAABB(0, 10, 10, 10)
		corner := NewAABB(10, 10, 5, 5)

		require.False(t, a.Intersects(right))
		require.False(t, a.Intersects(above))
		require.False(t, a.Intersects(corner))
	})

	t.Run("Symmetry", func(t *testing.T) {
		boxes := []AABB{
			NewAABB(0, 0, 10, 10),
			NewAABB(5, 5, 1, 1),
			NewAABB(10, 0, 10, 10),
			NewAABB(-3, -7, 2.5, 4),
			NewAABB(9.99, 9.99, 0.5, 0.5),
		}
		for _, a := range boxes {
			for _, b := range boxes {
				require.Equal(t, a.Intersects(b), b.Intersects(a),
					"a=%+v b=%+v", a, b)
			}
		}
	})

	t.Run("Contained", func(t *testing.T) {
		outer := NewAABB(0, 0, 100, 100)
		inner := NewAABB(40, 40, 10, 10)

		require.True(t, outer.Intersects(inner))
		require.True(t, inner.Intersects(outer))
	})
}

func TestAABB_ContainsPoint(t *testing.T) {
	a := NewAABB(10, 20, 30, 40)

	t.Run("Interior", func(t *testing.T) {
		require.True(t, a.ContainsPoint(25, 40))
	})

	t.Run("All Four Edges Inclusive", func(t *testing.T) {
		require.True(t, a.ContainsPoint(a.Left(), 30))
		require.True(t, a.ContainsPoint(a.Right(), 30))
		require.True(t, a.ContainsPoint(25, a.Bottom()))
		require.True(t, a.ContainsPoint(25, a.Top()))
	})

	t.Run("Corners Inclusive", func(t *testing.T) {
		require.True(t, a.ContainsPoint(a.Left(), a.Bottom()))
		require.True(t, a.ContainsPoint(a.Right(), a.Top()))
	})

	t.Run("Outside", func(t *testing.T) {
		require.False(t, a.ContainsPoint(a.Left()-0.001, 30))
		require.False(t, a.ContainsPoint(a.Right()+0.001, 30))
		require.False(t, a.ContainsPoint(25, a.Top()+0.001))
	})
}

func TestAABB_Center(t *testing.T) {
	a := NewAABB(10, 20, 30, 40)
	cx, cy := a.Center()
	require.Equal(t, 25.0, cx)
	require.Equal(t, 40.0, cy)
}

func TestVec2(t *testing.T) {
	v := Vec2{X: 1, Y: 2}.Add(Vec2{X: 3, Y: 4})
	require.Equal(t, Vec2{X: 4, Y: 6}, v)

	require.Equal(t, Vec2{X: 2, Y: 4}, Vec2{X: 1, Y: 2}.Scale(2))
	require.Equal(t, 5.0, Distance(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 4}))
}
