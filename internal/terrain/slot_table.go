package terrain

import (
	"fmt"
	"log/slog"

	"infworld/internal/meshing"
	"infworld/internal/profiling"
	"infworld/internal/world"
)

// TableState describes whether a slot table still has queued regeneration work.
type TableState int

const (
	// AtRest means the table's center matches the last viewer chunk seen and
	// nothing is queued.
	AtRest TableState = iota
	// Draining means chunks are still waiting to be meshed into free slots.
	Draining
)

func (s TableState) String() string {
	switch s {
	case AtRest:
		return "at-rest"
	case Draining:
		return "draining"
	}
	return fmt.Sprintf("TableState(%d)", int(s))
}

// Slot is one GPU buffer of a slot table and the chunk it currently holds.
// Coord is meaningless while Resident is false.
type Slot struct {
	Handle   BufferHandle
	Coord    world.ChunkCoord
	Resident bool
}

// TickResult reports what a single Tick did.
type TickResult struct {
	Meshed  bool
	Shifted bool
}

// TableStats are cumulative counters for one slot table.
type TableStats struct {
	Meshed       int
	Shifts       int
	Overflows    int
	UploadErrors int
}

// TableSpec fixes the geometry of one slot table.
type TableSpec struct {
	Level     int
	Range     int
	Scale     float32
	MaxHeight float32
	Prec      int
	// Footprint is the world-space side length of one chunk.
	Footprint float32
}

// SlotTable is the fixed-size set of chunk buffers of one LOD level. When the
// viewer moves to another chunk, chunks that entered the window are queued
// against slots that left it and are regenerated one per Tick.
type SlotTable struct {
	spec    TableSpec
	slots   []Slot
	indices []uint32

	center    world.ChunkCoord
	hasCenter bool
	// dirty forces a re-shift after a failed upload left a hole in the window.
	dirty bool

	// Both queues are popped from the end and always have equal length.
	newChunks []world.ChunkCoord
	reusable  []int

	// resident maps a chunk to the slot holding it.
	resident map[world.ChunkCoord]int

	owner  BufferOwner
	log    *slog.Logger
	strict bool
	stats  TableStats
}

// NewSlotTable allocates (2*range+1)^2 buffers from owner. All slots start
// non-resident; until Fill or the first Tick the table has no center.
func NewSlotTable(spec TableSpec, owner BufferOwner, log *slog.Logger, strict bool) (*SlotTable, error) {
	if spec.Range < 1 || spec.Prec < 1 {
		return nil, fmt.Errorf("slot table level %d: bad geometry range=%d prec=%d", spec.Level, spec.Range, spec.Prec)
	}
	if log == nil {
		log = slog.Default()
	}
	size := 2*spec.Range + 1
	n := size * size
	indices := meshing.BuildIndices(spec.Prec)
	handles, err := owner.CreateBuffers(n, indices)
	if err != nil {
		return nil, fmt.Errorf("slot table level %d: create buffers: %w", spec.Level, err)
	}
	if len(handles) != n {
		owner.DestroyBuffers(handles)
		return nil, fmt.Errorf("slot table level %d: owner returned %d buffers, want %d", spec.Level, len(handles), n)
	}

	t := &SlotTable{
		spec:      spec,
		slots:     make([]Slot, n),
		indices:   indices,
		newChunks: make([]world.ChunkCoord, 0, 2*n),
		reusable:  make([]int, 0, 2*n),
		resident:  make(map[world.ChunkCoord]int, n),
		owner:     owner,
		log:       log.With("level", spec.Level),
		strict:    strict,
	}
	for i, h := range handles {
		t.slots[i].Handle = h
	}
	return t, nil
}

// ViewerChunk returns the chunk of this level that contains world (x, z).
func (t *SlotTable) ViewerChunk(x, z float32) world.ChunkCoord {
	return world.ChunkAt(x, z, t.spec.Footprint)
}

// Tick advances the table by at most one chunk. Queued work is drained first;
// only when nothing is queued is the viewer position compared against the
// remembered center.
func (t *SlotTable) Tick(seed *world.Seed, x, z float32) TickResult {
	if len(t.newChunks) > 0 {
		c := t.newChunks[len(t.newChunks)-1]
		slot := t.reusable[len(t.reusable)-1]
		t.newChunks = t.newChunks[:len(t.newChunks)-1]
		t.reusable = t.reusable[:len(t.reusable)-1]
		t.mesh(seed, slot, c)
		return TickResult{Meshed: true}
	}

	vc := t.ViewerChunk(x, z)
	if t.hasCenter && !t.dirty && vc == t.center {
		return TickResult{}
	}
	t.shift(vc)
	return TickResult{Shifted: true}
}

// shift recenters the window and queues the chunks that entered it against the
// slots that are free or fell outside it.
func (t *SlotTable) shift(center world.ChunkCoord) {
	t.center = center
	t.hasCenter = true
	t.dirty = false
	t.stats.Shifts++

	r := t.spec.Range
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			c := center.Add(dx, dz)
			if _, ok := t.resident[c]; !ok {
				t.pushNew(c)
			}
		}
	}
	for i := range t.slots {
		s := &t.slots[i]
		if !s.Resident || !s.Coord.Within(center, r) {
			t.pushReusable(i)
		}
	}

	// Every window coordinate is either resident in a slot inside the window
	// or queued, so both counts equal the number of slots minus the kept ones.
	if len(t.newChunks) != len(t.reusable) {
		t.log.Error("terrain queues out of step", "new", len(t.newChunks), "reusable", len(t.reusable))
		n := min(len(t.newChunks), len(t.reusable))
		t.newChunks = t.newChunks[:n]
		t.reusable = t.reusable[:n]
	}
}

func (t *SlotTable) pushNew(c world.ChunkCoord) {
	if len(t.newChunks) == cap(t.newChunks) {
		t.overflow("new", c)
		return
	}
	t.newChunks = append(t.newChunks, c)
}

func (t *SlotTable) pushReusable(slot int) {
	if len(t.reusable) == cap(t.reusable) {
		t.overflow("reusable", t.slots[slot].Coord)
		return
	}
	t.reusable = append(t.reusable, slot)
}

func (t *SlotTable) overflow(queue string, c world.ChunkCoord) {
	t.stats.Overflows++
	profiling.Count("terrain.overflow", 1)
	t.log.Warn("terrain queue overflow", "queue", queue, "x", c.X, "z", c.Z, "cap", cap(t.newChunks))
	if t.strict {
		panic(fmt.Sprintf("terrain: level %d %s queue overflow at %v", t.spec.Level, queue, c))
	}
}

// mesh builds chunk c and uploads it into slot.
func (t *SlotTable) mesh(seed *world.Seed, slot int, c world.ChunkCoord) {
	p := meshing.BuildChunk(seed, c.X, c.Z, t.spec.MaxHeight, t.spec.Scale, t.spec.Prec)
	t.place(slot, p)
}

// place uploads p into slot and updates residency. A failed upload leaves the
// slot non-resident so the next shift offers it again.
func (t *SlotTable) place(slot int, p *meshing.ChunkPayload) {
	s := &t.slots[slot]
	if s.Resident {
		if cur, ok := t.resident[s.Coord]; ok && cur == slot {
			delete(t.resident, s.Coord)
		}
		s.Resident = false
	}
	if err := t.owner.Upload(s.Handle, p); err != nil {
		t.stats.UploadErrors++
		t.dirty = true
		t.log.Error("terrain upload failed", "slot", slot, "x", p.Coord.X, "z", p.Coord.Z, "err", err)
		return
	}
	s.Coord = p.Coord
	s.Resident = true
	t.resident[p.Coord] = slot
	t.stats.Meshed++
	profiling.Count("terrain.meshed", 1)
}

// windowSlot returns the slot index the eager fill uses for offset (dx, dz).
func (t *SlotTable) windowSlot(dx, dz int) int {
	r := t.spec.Range
	return (dz+r)*(2*r+1) + (dx + r)
}

// resetWindow clears queued work and residency ahead of an eager fill.
func (t *SlotTable) resetWindow(center world.ChunkCoord) {
	t.center = center
	t.hasCenter = true
	t.dirty = false
	t.newChunks = t.newChunks[:0]
	t.reusable = t.reusable[:0]
	clear(t.resident)
	for i := range t.slots {
		t.slots[i].Resident = false
	}
}

// Fill synchronously meshes every chunk of the window around center. The table
// is at rest afterwards.
func (t *SlotTable) Fill(seed *world.Seed, center world.ChunkCoord) {
	t.resetWindow(center)
	r := t.spec.Range
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			t.mesh(seed, t.windowSlot(dx, dz), center.Add(dx, dz))
		}
	}
}

// State reports whether regeneration work is queued or a failed upload still
// has to be retried.
func (t *SlotTable) State() TableState {
	if len(t.newChunks) > 0 || t.dirty {
		return Draining
	}
	return AtRest
}

// Center returns the remembered window center and whether one has been set.
func (t *SlotTable) Center() (world.ChunkCoord, bool) {
	return t.center, t.hasCenter
}

func (t *SlotTable) Range() int { return t.spec.Range }

func (t *SlotTable) Spec() TableSpec { return t.spec }

// Slots returns the slot array. Callers must not modify it.
func (t *SlotTable) Slots() []Slot { return t.slots }

// Pending returns the number of chunks waiting to be meshed.
func (t *SlotTable) Pending() int { return len(t.newChunks) }

func (t *SlotTable) Stats() TableStats { return t.stats }

// Indices returns the shared triangle index list of every slot.
func (t *SlotTable) Indices() []uint32 { return t.indices }

// Lookup returns the slot holding chunk c, if resident.
func (t *SlotTable) Lookup(c world.ChunkCoord) (Slot, bool) {
	i, ok := t.resident[c]
	if !ok {
		return Slot{}, false
	}
	return t.slots[i], true
}

// Close releases the table's buffers.
func (t *SlotTable) Close() {
	hs := make([]BufferHandle, len(t.slots))
	for i, s := range t.slots {
		hs[i] = s.Handle
	}
	t.owner.DestroyBuffers(hs)
	clear(t.resident)
	t.newChunks = t.newChunks[:0]
	t.reusable = t.reusable[:0]
}
