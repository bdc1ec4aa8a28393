package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"infworld/internal/config"
	"infworld/internal/meshing"
	"infworld/internal/profiling"
	"infworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VisibleChunk is one chunk the host should draw this frame.
type VisibleChunk struct {
	Level int
	Coord world.ChunkCoord
	// Transform places the chunk's local grid in the world.
	Transform mgl32.Mat4
	Handle    BufferHandle
	Band      Band
	// ChunkScale is the level's chunk half-extent in noise space.
	ChunkScale float32
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its slot tables.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Manager owns one slot table per LOD level. Level 0 has the finest chunks;
// every following level multiplies the chunk size by LODScale. It is not safe
// for concurrent use.
type Manager struct {
	cfg        config.Terrain
	seed       *world.Seed
	tables     []*SlotTable
	footprints []float32
	ranges     []int
	bands      []Band
	owner      BufferOwner
	log        *slog.Logger
}

// Footprint returns the world-space side length of a chunk with the given
// half-extent. Chunks are laid out prec/(prec+1) closer than their noise
// extent so the last vertex row of one chunk meets the first of the next.
func Footprint(scale float32, prec int, worldScale float32) float32 {
	return 2 * scale * float32(prec) / float32(prec+1) * worldScale
}

// NewManager validates cfg and creates every level's slot table. Chunks are
// not meshed until GenerateAll or Update is called.
func NewManager(seed *world.Seed, cfg config.Terrain, owner BufferOwner, opts ...Option) (*Manager, error) {
	if seed == nil {
		return nil, fmt.Errorf("terrain: nil seed")
	}
	if owner == nil {
		return nil, fmt.Errorf("terrain: nil buffer owner")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:   cfg,
		seed:  seed,
		owner: owner,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	n := cfg.LODLevels
	m.tables = make([]*SlotTable, 0, n)
	m.footprints = make([]float32, n)
	m.ranges = make([]int, n)
	slots := 0
	for i := 0; i < n; i++ {
		scale := cfg.LevelScale(i)
		spec := TableSpec{
			Level:     i,
			Range:     cfg.LevelRange(i),
			Scale:     scale,
			MaxHeight: cfg.MaxHeight,
			Prec:      cfg.Prec,
			Footprint: Footprint(scale, cfg.Prec, cfg.WorldScale),
		}
		t, err := NewSlotTable(spec, owner, m.log, cfg.StrictQueues)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.tables = append(m.tables, t)
		m.footprints[i] = spec.Footprint
		m.ranges[i] = spec.Range
		slots += len(t.slots)
	}
	m.bands = computeBands(m.footprints, m.ranges)
	for i, b := range m.bands {
		if b.Empty() {
			m.log.Debug("level band empty", "level", i, "min", b.Min, "max", b.Max)
		}
	}

	m.log.Info("terrain ready", "seed", seed.Value(), "levels", n, "slots", slots,
		"view_distance", m.ViewDistance())
	return m, nil
}

// GenerateAll meshes the full window of every level around chunk (centerX,
// centerZ) of that level's grid. Every level is at rest afterwards. Hosts
// starting away from the origin usually want GenerateAround.
func (m *Manager) GenerateAll(seed *world.Seed, centerX, centerZ int) {
	defer profiling.Track("terrain.GenerateAll")()
	c := world.ChunkCoord{X: centerX, Z: centerZ}
	for _, t := range m.tables {
		t.Fill(seed, c)
	}
}

// GenerateAround eagerly fills every level around the chunk containing world
// position (x, z) in that level's grid.
func (m *Manager) GenerateAround(seed *world.Seed, x, z float32) {
	defer profiling.Track("terrain.GenerateAround")()
	for _, t := range m.tables {
		t.Fill(seed, t.ViewerChunk(x, z))
	}
}

// GenerateAllParallel is GenerateAll spread over a worker pool. If ctx is
// cancelled the tables keep what was meshed and forget their centers, so the
// following Updates queue the rest.
func (m *Manager) GenerateAllParallel(ctx context.Context, seed *world.Seed, centerX, centerZ, workers int) error {
	defer profiling.Track("terrain.GenerateAll")()

	type fillJob struct {
		table int
		slot  int
	}
	c := world.ChunkCoord{X: centerX, Z: centerZ}
	var jobs []fillJob
	for ti, t := range m.tables {
		t.resetWindow(c)
		r := t.spec.Range
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				jobs = append(jobs, fillJob{table: ti, slot: t.windowSlot(dx, dz)})
			}
		}
	}

	pool := meshing.NewWorkerPool(ctx, workers, len(jobs))
	defer pool.Shutdown()
	results := make(chan meshing.MeshResult, len(jobs))

	abort := func(err error) error {
		for _, t := range m.tables {
			t.hasCenter = false
		}
		return err
	}

	go func() {
		for k, j := range jobs {
			t := m.tables[j.table]
			r := t.spec.Range
			dx := j.slot%(2*r+1) - r
			dz := j.slot/(2*r+1) - r
			ok := pool.SubmitJobBlocking(meshing.MeshJob{
				Seed:       seed,
				Coord:      c.Add(dx, dz),
				MaxHeight:  t.spec.MaxHeight,
				ChunkScale: t.spec.Scale,
				Prec:       t.spec.Prec,
				Tag:        k,
				ResultChan: results,
			})
			if !ok {
				return
			}
		}
	}()

	for range jobs {
		select {
		case r := <-results:
			j := jobs[r.Tag]
			m.tables[j.table].place(j.slot, r.Payload)
		case <-ctx.Done():
			return abort(ctx.Err())
		}
	}
	m.log.Debug("terrain filled", "chunks", len(jobs), "workers", pool.Workers())
	return nil
}

// Update ticks every level once and returns how many chunks were meshed,
// which is at most the number of levels.
func (m *Manager) Update(seed *world.Seed, x, z float32) int {
	defer profiling.Track("terrain.Update")()
	meshed := 0
	for _, t := range m.tables {
		if t.Tick(seed, x, z).Meshed {
			meshed++
		}
	}
	return meshed
}

// RenderEligible reports whether a resident chunk of the given level should be
// drawn when its table is centered on center. Coarse levels skip the inner
// chunks that the next finer level already covers. Levels outside
// [0, Levels()) are never eligible.
func (m *Manager) RenderEligible(level int, c, center world.ChunkCoord) bool {
	if level < 0 || level >= len(m.ranges) {
		return false
	}
	if level == 0 {
		return true
	}
	minRange := max(m.ranges[level-1]/m.cfg.LODScale-1, 0)
	dx := c.X - center.X
	dz := c.Z - center.Z
	inner := dx > -minRange && dx < minRange && dz > -minRange && dz < minRange
	return !inner
}

// ForEachVisibleChunk calls fn for every resident, render-eligible chunk,
// finest level first.
func (m *Manager) ForEachVisibleChunk(fn func(VisibleChunk)) {
	w := m.cfg.WorldScale
	for level, t := range m.tables {
		center, ok := t.Center()
		if !ok {
			continue
		}
		f := m.footprints[level]
		for _, s := range t.slots {
			if !s.Resident || !m.RenderEligible(level, s.Coord, center) {
				continue
			}
			fn(VisibleChunk{
				Level:      level,
				Coord:      s.Coord,
				Transform:  mgl32.Translate3D(float32(s.Coord.X)*f, 0, float32(s.Coord.Z)*f).Mul4(mgl32.Scale3D(w, w, w)),
				Handle:     s.Handle,
				Band:       m.bands[level],
				ChunkScale: t.spec.Scale,
			})
		}
	}
}

// Bands returns the draw band of every level.
func (m *Manager) Bands() []Band {
	out := make([]Band, len(m.bands))
	copy(out, m.bands)
	return out
}

// ViewDistance is the distance at which the coarsest level runs out, used
// for the far plane and fog.
func (m *Manager) ViewDistance() float32 {
	n := len(m.tables)
	lod := math.Pow(float64(m.cfg.LODScale), float64(n-2))
	return m.cfg.ChunkSize * m.cfg.WorldScale * 2 * float32(m.cfg.Range) * float32(lod)
}

// HeightAt returns the terrain height in world units under world position
// (x, z), measured on the level 0 surface.
func (m *Manager) HeightAt(x, z float32) float32 {
	t := m.tables[0]
	f := t.spec.Footprint
	c := t.ViewerChunk(x, z)
	// Rendered chunks are compressed by prec/(prec+1); undo it to reach noise space.
	k := f / (2 * t.spec.Scale)
	nx := float32(c.X)*2*t.spec.Scale + (x-float32(c.X)*f)/k
	nz := float32(c.Z)*2*t.spec.Scale + (z-float32(c.Z)*f)/k
	return world.NewHeightField(m.seed, m.cfg.MaxHeight).SampleScaled(nx, nz) * m.cfg.WorldScale
}

// Levels returns the number of LOD levels.
func (m *Manager) Levels() int { return len(m.tables) }

// Level returns the slot table of level i. It panics if i is not in
// [0, Levels()).
func (m *Manager) Level(i int) *SlotTable { return m.tables[i] }

// Footprint returns the chunk footprint of level i, which must be in
// [0, Levels()).
func (m *Manager) Footprint(i int) float32 { return m.footprints[i] }

// Seed returns the seed the manager was created with.
func (m *Manager) Seed() *world.Seed { return m.seed }

// Config returns the terrain settings in use.
func (m *Manager) Config() config.Terrain { return m.cfg }

// Settled reports whether every level is at rest around the chunk containing
// (x, z).
func (m *Manager) Settled(x, z float32) bool {
	for _, t := range m.tables {
		c, ok := t.Center()
		if !ok || t.State() != AtRest || c != t.ViewerChunk(x, z) {
			return false
		}
	}
	return true
}

// Close releases every table's buffers through the owner.
func (m *Manager) Close() {
	for _, t := range m.tables {
		t.Close()
	}
	m.tables = nil
}
