package spatial

import (
	"fmt"
	"math"

	"github.com/zeusync/simcore/internal/core/geo"
)

// Hash is a uniform-grid spatial index mapping 2D space to buckets of
// entity ids. An entity occupies every cell its bounding box overlaps,
// so queries return candidate sets that still need a narrow-phase
// check by the caller.
//
// Hash is not safe for concurrent use. It is designed to be owned by a
// single tick-processing goroutine; see the sim package.
type Hash struct {
	cellSize float64
	cells    map[cellKey]map[EntityID]struct{}
	entities map[EntityID]entityEntry
}

// entityEntry records exactly which cells an entity currently occupies
// together with its last indexed box. The cell list is rebuilt from
// scratch on every insert and update, never patched incrementally.
type entityEntry struct {
	cells []cellKey
	box   geo.AABB
}

// Stats describes the current shape of the index.
type Stats struct {
	CellSize           float64 `json:"cell_size"`
	TotalCells         int     `json:"total_cells"`
	TotalEntities      int     `json:"total_entities"`
	AvgEntitiesPerCell float64 `json:"avg_entities_per_cell"`
}

// New creates a spatial hash with the given cell size. The cell size
// divides world coordinates into grid coordinates, so it must be
// positive; a misconfigured value fails here rather than degrading
// silently at runtime.
func New(cellSize float64) (*Hash, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial: %w: %g", ErrInvalidCellSize, cellSize)
	}
	return &Hash{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[EntityID]struct{}),
		entities: make(map[EntityID]entityEntry),
	}, nil
}

// CellSize returns the configured cell size.
func (h *Hash) CellSize() float64 { return h.cellSize }

// Insert adds an entity to the index under its bounding box. Inserting
// an id that is already indexed is rejected with ErrAlreadyIndexed;
// callers tracking a moving entity must use Update instead.
func (h *Hash) Insert(id EntityID, box geo.AABB) error {
	if _, ok := h.entities[id]; ok {
		return fmt.Errorf("spatial: %w: %d", ErrAlreadyIndexed, id)
	}
	h.insert(id, box)
	return nil
}

// Remove deletes an entity from every bucket it occupies. Buckets left
// empty are discarded so the cell map only holds occupied cells.
// Removing an unknown id is a no-op.
func (h *Hash) Remove(id EntityID) {
	entry, ok := h.entities[id]
	if !ok {
		return
	}
	for _, key := range entry.cells {
		bucket := h.cells[key]
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(h.cells, key)
		}
	}
	delete(h.entities, id)
}

// Update re-indexes an entity under a new bounding box. It is a full
// remove-and-insert rebuild rather than a diff of the two cell sets; a
// diff only pays off when footprints are large relative to movement,
// which profiling has not shown for this workload. Unknown ids are
// inserted, making Update an upsert.
func (h *Hash) Update(id EntityID, box geo.AABB) {
	h.Remove(id)
	h.insert(id, box)
}

func (h *Hash) insert(id EntityID, box geo.AABB) {
	keys := h.coveredCells(box)
	for _, key := range keys {
		bucket := h.cells[key]
		if bucket == nil {
			bucket = make(map[EntityID]struct{})
			h.cells[key] = bucket
		}
		bucket[id] = struct{}{}
	}
	h.entities[id] = entityEntry{cells: keys, box: box}
}

// coveredCells returns the keys of every cell the box overlaps. The
// range is derived by flooring the four corner coordinates, inclusive
// on both ends.
func (h *Hash) coveredCells(box geo.AABB) []cellKey {
	minX := cellCoord(box.Left(), h.cellSize)
	maxX := cellCoord(box.Right(), h.cellSize)
	minY := cellCoord(box.Bottom(), h.cellSize)
	maxY := cellCoord(box.Top(), h.cellSize)

	keys := make([]cellKey, 0, int(maxX-minX+1)*int(maxY-minY+1))
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			keys = append(keys, packCell(cx, cy))
		}
	}
	return keys
}

// QueryPoint returns the ids bucketed in the cell containing the given
// point. The result is a candidate set: an entity whose box overlaps
// the cell is returned even when the box does not contain the point
// itself. A miss yields an empty result, never an error.
func (h *Hash) QueryPoint(x, y float64) []EntityID {
	key := packCell(cellCoord(x, h.cellSize), cellCoord(y, h.cellSize))
	bucket := h.cells[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]EntityID, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	return out
}

// QueryAABB returns the deduplicated union of every bucket the query
// box overlaps. The returned slice is freshly allocated; callers may
// mutate the index while holding it.
func (h *Hash) QueryAABB(box geo.AABB) []EntityID {
	var out []EntityID
	seen := make(map[EntityID]struct{})

	minX := cellCoord(box.Left(), h.cellSize)
	maxX := cellCoord(box.Right(), h.cellSize)
	minY := cellCoord(box.Bottom(), h.cellSize)
	maxY := cellCoord(box.Top(), h.cellSize)

	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for id := range h.cells[packCell(cx, cy)] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// QueryRadius returns candidates within the bounding square of the
// circle centered at (cx, cy) with radius r. Corner false positives
// are expected; callers needing a circle-exact set must distance-filter
// the result.
func (h *Hash) QueryRadius(cx, cy, r float64) []EntityID {
	return h.QueryAABB(geo.NewAABB(cx-r, cy-r, 2*r, 2*r))
}

// Nearby returns the ids bucketed in the square neighborhood of cells
// around the given entity, excluding the entity itself. The anchor
// cell is derived from the center of the entity's last indexed box, so
// repeated calls with an unchanged index return the same set. Returns
// an empty result for unknown ids.
func (h *Hash) Nearby(id EntityID, radius float64) []EntityID {
	entry, ok := h.entities[id]
	if !ok {
		return nil
	}
	centerX, centerY := entry.box.Center()
	anchorX := cellCoord(centerX, h.cellSize)
	anchorY := cellCoord(centerY, h.cellSize)
	reach := int32(math.Ceil(radius/h.cellSize)) + 1

	var out []EntityID
	seen := make(map[EntityID]struct{})
	for cx := anchorX - reach; cx <= anchorX+reach; cx++ {
		for cy := anchorY - reach; cy <= anchorY+reach; cy++ {
			for other := range h.cells[packCell(cx, cy)] {
				if other == id {
					continue
				}
				if _, dup := seen[other]; dup {
					continue
				}
				seen[other] = struct{}{}
				out = append(out, other)
			}
		}
	}
	return out
}

// Contains reports whether the id is currently indexed.
func (h *Hash) Contains(id EntityID) bool {
	_, ok := h.entities[id]
	return ok
}

// Clear drops every bucket and every entity record.
func (h *Hash) Clear() {
	h.cells = make(map[cellKey]map[EntityID]struct{})
	h.entities = make(map[EntityID]entityEntry)
}

// Stats returns occupancy statistics for diagnostics overlays.
func (h *Hash) Stats() Stats {
	s := Stats{
		CellSize:      h.cellSize,
		TotalCells:    len(h.cells),
		TotalEntities: len(h.entities),
	}
	if len(h.cells) > 0 {
		total := 0
		for _, bucket := range h.cells {
			total += len(bucket)
		}
		s.AvgEntitiesPerCell = float64(total) / float64(len(h.cells))
	}
	return s
}

// CheckConsistency verifies that bucket membership and the per-entity
// cell records agree in both directions, and that no bucket is empty.
// It is intended for tests and debug builds; the per-tick paths never
// call it.
func (h *Hash) CheckConsistency() error {
	for id, entry := range h.entities {
		for _, key := range entry.cells {
			if _, ok := h.cells[key][id]; !ok {
				cx, cy := unpackCell(key)
				return fmt.Errorf("spatial: entity %d records cell (%d,%d) but is missing from its bucket", id, cx, cy)
			}
		}
	}
	for key, bucket := range h.cells {
		cx, cy := unpackCell(key)
		if len(bucket) == 0 {
			return fmt.Errorf("spatial: empty bucket retained at cell (%d,%d)", cx, cy)
		}
		for id := range bucket {
			entry, ok := h.entities[id]
			if !ok {
				return fmt.Errorf("spatial: bucket at (%d,%d) holds unknown entity %d", cx, cy, id)
			}
			found := false
			for _, k := range entry.cells {
				if k == key {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("spatial: entity %d present in bucket (%d,%d) it does not record", id, cx, cy)
			}
		}
	}
	return nil
}
