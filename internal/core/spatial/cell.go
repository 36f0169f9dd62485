package spatial

import "math"

// EntityID identifies an indexed entity. IDs are assigned by the
// caller; the index only relies on equality and never interprets the
// value. Uniqueness within one index is the caller's responsibility.
type EntityID uint64

// cellKey packs signed 32-bit cell coordinates into a single map key,
// avoiding a struct key and the hashing overhead that comes with it on
// every insert and query.
type cellKey uint64

func packCell(cx, cy int32) cellKey {
	return cellKey(uint64(uint32(cx))<<32 | uint64(uint32(cy)))
}

func unpackCell(k cellKey) (cx, cy int32) {
	return int32(uint32(k >> 32)), int32(uint32(k))
}

// cellCoord maps a world coordinate to a grid coordinate. Floor (not
// truncation) keeps cells aligned across the negative axes.
func cellCoord(v, cellSize float64) int32 {
	return int32(math.Floor(v / cellSize))
}
