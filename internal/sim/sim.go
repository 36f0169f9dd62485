// Package sim is the tick-loop harness that owns one set of core
// instances: a spatial hash, a particle pool and a performance
// monitor. It drives the per-tick flow the core is built for — move,
// re-index, broad-phase query, narrow-phase filter, record — with
// neutral bouncing entities standing in for gameplay logic.
//
// Everything here runs on a single goroutine. The only cross-goroutine
// surface is Snapshot, which hands the diagnostics server an immutable
// copy of the latest stats.
package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/geo"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/core/perf"
	"github.com/zeusync/simcore/internal/core/pool"
	"github.com/zeusync/simcore/internal/core/spatial"
)

// maxLiveParticles caps the burst of pooled particles so a pathological
// collision cluster cannot grow the pool without bound.
const maxLiveParticles = 4096

const particleLifetime = 0.5 // seconds

// Entity is a moving demo body. Position marks the bottom-left corner
// of its bounding box.
type Entity struct {
	ID   spatial.EntityID
	Pos  geo.Vec2
	Vel  geo.Vec2
	Size geo.Vec2
}

// Box returns the entity's current bounding box.
func (e *Entity) Box() geo.AABB {
	return geo.NewAABB(e.Pos.X, e.Pos.Y, e.Size.X, e.Size.Y)
}

// Particle is a pooled short-lived effect spawned on contact.
type Particle struct {
	Pos  geo.Vec2
	Vel  geo.Vec2
	Life float64
}

// Snapshot is an immutable view of the simulation's stats, safe to
// hand across goroutines.
type Snapshot struct {
	InstanceID string        `json:"instance_id"`
	Tick       uint64        `json:"tick"`
	Perf       perf.Stats    `json:"perf"`
	Spatial    spatial.Stats `json:"spatial"`
	Pool       pool.Stats    `json:"pool"`
}

// Simulation owns one simulation instance. Instances are independent:
// nothing here is shared or global, so tests and servers can run any
// number of them side by side.
type Simulation struct {
	cfg    config.Config
	logger *log.Logger

	instanceID uuid.UUID

	hash      *spatial.Hash
	particles *pool.Pool[*Particle]
	monitor   *perf.Monitor

	entities []*Entity
	byID     map[spatial.EntityID]*Entity
	live     []*Particle

	rng  *rand.Rand
	tick uint64

	mu       sync.Mutex
	snapshot Snapshot
}

// New builds a simulation from a validated configuration.
func New(cfg config.Config, logger *log.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hash, err := spatial.New(cfg.Spatial.CellSize)
	if err != nil {
		return nil, err
	}
	monitor, err := perf.New(cfg.Perf.HistorySize)
	if err != nil {
		return nil, err
	}
	particles, err := pool.New(
		func() *Particle { return &Particle{} },
		pool.WithReset(func(p *Particle) { *p = Particle{Life: particleLifetime} }),
		pool.WithInitialSize[*Particle](cfg.Pool.InitialSize),
	)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:        cfg,
		logger:     logger,
		instanceID: uuid.New(),
		hash:       hash,
		particles:  particles,
		monitor:    monitor,
		byID:       make(map[spatial.EntityID]*Entity, cfg.Sim.EntityCount),
		rng:        rand.New(rand.NewPCG(cfg.Sim.Seed, cfg.Sim.Seed^0x9e3779b97f4a7c15)),
	}
	s.spawnEntities()
	s.publishSnapshot()

	logger.Info("simulation created",
		log.String("instance_id", s.instanceID.String()),
		log.Int("entities", len(s.entities)),
		log.Float64("cell_size", cfg.Spatial.CellSize),
	)
	return s, nil
}

func (s *Simulation) spawnEntities() {
	for i := 0; i < s.cfg.Sim.EntityCount; i++ {
		e := &Entity{
			ID: spatial.EntityID(i + 1),
			Pos: geo.Vec2{
				X: s.rng.Float64() * s.cfg.Sim.WorldWidth,
				Y: s.rng.Float64() * s.cfg.Sim.WorldHeight,
			},
			Vel: geo.Vec2{
				X: (s.rng.Float64() - 0.5) * 100,
				Y: (s.rng.Float64() - 0.5) * 100,
			},
			Size: geo.Vec2{X: 10, Y: 10},
		}
		s.entities = append(s.entities, e)
		s.byID[e.ID] = e
		if err := s.hash.Insert(e.ID, e.Box()); err != nil {
			// IDs are assigned sequentially above; a collision here is
			// a bug, not a runtime condition.
			panic(fmt.Sprintf("sim: spawn: %v", err))
		}
	}
}

// Run steps the simulation at the configured tick rate until the
// context is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.cfg.Sim.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("simulation loop started",
		log.Duration("tick_interval", interval))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation loop stopped", log.Uint64("ticks", s.tick))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.Step(dt)
		}
	}
}

// Step advances the simulation by dt seconds: movement, re-indexing,
// broad phase, narrow phase, particle churn, then one metrics sample.
func (s *Simulation) Step(dt float64) {
	s.tick++

	for _, e := range s.entities {
		s.move(e, dt)
		s.hash.Update(e.ID, e.Box())
	}

	checks := s.collide()
	s.decayParticles(dt)

	s.monitor.Record(dt, len(s.entities), checks)
	s.publishSnapshot()
}

// move integrates the entity's position and reflects its velocity off
// the world bounds.
func (s *Simulation) move(e *Entity, dt float64) {
	e.Pos = e.Pos.Add(e.Vel.Scale(dt))

	if e.Pos.X < 0 {
		e.Pos.X, e.Vel.X = 0, -e.Vel.X
	} else if limit := s.cfg.Sim.WorldWidth - e.Size.X; e.Pos.X > limit {
		e.Pos.X, e.Vel.X = limit, -e.Vel.X
	}
	if e.Pos.Y < 0 {
		e.Pos.Y, e.Vel.Y = 0, -e.Vel.Y
	} else if limit := s.cfg.Sim.WorldHeight - e.Size.Y; e.Pos.Y > limit {
		e.Pos.Y, e.Vel.Y = limit, -e.Vel.Y
	}
}

// collide runs the broad phase against the index and the narrow phase
// against the candidates, returning the number of exact overlap tests
// performed. Candidate sets are materialized slices, so mutating the
// index afterwards is safe.
func (s *Simulation) collide() int {
	checks := 0
	for _, e := range s.entities {
		box := e.Box()
		for _, candID := range s.hash.QueryAABB(box) {
			// Each pair is handled once, by its lower id.
			if candID <= e.ID {
				continue
			}
			other := s.byID[candID]
			checks++
			if box.Intersects(other.Box()) {
				s.spawnParticles(e, other)
			}
		}
	}
	return checks
}

func (s *Simulation) spawnParticles(a, b *Entity) {
	acx, acy := a.Box().Center()
	bcx, bcy := b.Box().Center()
	origin := geo.Vec2{X: acx, Y: acy}

	// Deeper overlaps, approximated by how close the two centers got,
	// kick the burst harder.
	kick := 20.0
	if sep := geo.Distance(origin, geo.Vec2{X: bcx, Y: bcy}); sep < a.Size.X {
		kick += a.Size.X - sep
	}

	for i := 0; i < 2 && len(s.live) < maxLiveParticles; i++ {
		p := s.particles.Acquire()
		p.Pos = origin
		p.Vel = geo.Vec2{
			X: b.Vel.X - a.Vel.X + (s.rng.Float64()-0.5)*kick,
			Y: b.Vel.Y - a.Vel.Y + (s.rng.Float64()-0.5)*kick,
		}
		s.live = append(s.live, p)
	}
}

func (s *Simulation) decayParticles(dt float64) {
	for i := 0; i < len(s.live); {
		p := s.live[i]
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Life -= dt
		if p.Life > 0 {
			i++
			continue
		}
		if err := s.particles.Release(p); err != nil {
			s.logger.Warn("particle release failed", log.Error(err))
		}
		// Swap-remove keeps the live list dense.
		s.live[i] = s.live[len(s.live)-1]
		s.live = s.live[:len(s.live)-1]
	}
}

func (s *Simulation) publishSnapshot() {
	snap := Snapshot{
		InstanceID: s.instanceID.String(),
		Tick:       s.tick,
		Perf:       s.monitor.Stats(),
		Spatial:    s.hash.Stats(),
		Pool:       s.particles.Stats(),
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

// Snapshot returns the stats published by the most recent tick.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}
