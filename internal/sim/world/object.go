package world

import "fmt"

// Object is one placed structure instance. Location never changes after
// creation and every cell inside it maps back to this object; the pool
// owns the record, other subsystems keep only the ObjectID handle.
type Object struct {
	ID        ObjectID
	Kind      string
	Location  Rect
	Town      TownID
	BuildDate Date
}

// objectPoolCap bounds the total number of live objects in a world.
const objectPoolCap = 64000

// ObjectPool is an arena of Object records with stable handles and
// per-kind live counts. Handles are never reused while live; freed
// slots go back on the free list.
type ObjectPool struct {
	slots  []*Object // slot i holds the object with ID i+1
	free   []ObjectID
	live   int
	counts map[string]int
}

func NewObjectPool() *ObjectPool {
	return &ObjectPool{counts: map[string]int{}}
}

// CanAllocate reports whether one more instance of the kind fits under
// both the pool-wide cap and the kind's own configured maximum.
func (p *ObjectPool) CanAllocate(kind string, maxCount int) bool {
	if p.live >= objectPoolCap {
		return false
	}
	if maxCount > 0 && p.counts[kind] >= maxCount {
		return false
	}
	return true
}

// Allocate reserves a slot and returns its handle. The caller must fill
// the record before any other subsystem can observe the id.
func (p *ObjectPool) Allocate() (ObjectID, error) {
	if p.live >= objectPoolCap {
		return InvalidObject, fmt.Errorf("object pool exhausted (%d live)", p.live)
	}
	var id ObjectID
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, nil)
		id = ObjectID(len(p.slots))
	}
	o := &Object{ID: id}
	p.slots[id-1] = o
	p.live++
	return id, nil
}

// Get panics on a dead handle: holding one across an object's
// destruction is a caller contract violation, not a recoverable state.
func (p *ObjectPool) Get(id ObjectID) *Object {
	if id == InvalidObject || int(id) > len(p.slots) || p.slots[id-1] == nil {
		panic(fmt.Sprintf("object pool: dead handle %d", id))
	}
	return p.slots[id-1]
}

// Destroy releases the slot. The object's occupancy cells must already
// have been reverted to terrain.
func (p *ObjectPool) Destroy(id ObjectID) {
	p.Get(id) // panics on a dead handle
	p.slots[id-1] = nil
	p.free = append(p.free, id)
	p.live--
}

func (p *ObjectPool) IncCount(kind string) { p.counts[kind]++ }

func (p *ObjectPool) DecCount(kind string) {
	if p.counts[kind] <= 0 {
		panic(fmt.Sprintf("object pool: count underflow for %s", kind))
	}
	p.counts[kind]--
}

func (p *ObjectPool) Count(kind string) int { return p.counts[kind] }

func (p *ObjectPool) Live() int { return p.live }

// All returns the live objects in handle order.
func (p *ObjectPool) All() []*Object {
	out := make([]*Object, 0, p.live)
	for _, o := range p.slots {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Reset clears the pool and all counts. World (re)initialization only,
// never mid-session.
func (p *ObjectPool) Reset() {
	p.slots = nil
	p.free = nil
	p.live = 0
	p.counts = map[string]int{}
}

// ObjectAt resolves the occupancy cell's stored handle. Panics when the
// cell holds no object; check the tile type first.
func (w *World) ObjectAt(p Pt) *Object {
	c := w.grid.Cell(p)
	if c.Type != TileObject {
		panic(fmt.Sprintf("tile %v holds no object", p))
	}
	return w.objects.Get(c.Object)
}

func (w *World) objectKindAt(p Pt) string {
	c := w.grid.Cell(p)
	return w.catalogs.Objects.Palette[c.Kind]
}

func (w *World) isObjectOfKind(p Pt, kind string) bool {
	return w.grid.TileType(p) == TileObject && w.objectKindAt(p) == kind
}
