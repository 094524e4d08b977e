package world

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"tilemark.dev/internal/protocol"
	"tilemark.dev/internal/sim/catalogs"
	"tilemark.dev/internal/sim/tuning"
)

// Object kind ids with wired-in behavior. They must exist in the
// catalog; additional catalog kinds get the default tile operations.
const (
	KindTransmitter = "TRANSMITTER"
	KindLighthouse  = "LIGHTHOUSE"
	KindStatue      = "STATUE"
	KindOwnedLand   = "OWNED_LAND"
	KindHQ          = "HQ"
)

const ticksPerDay = 74

type WorldConfig struct {
	ID         string
	TickRateHz int
	SizeX      int
	SizeY      int
	Seed       int64
	HardEdges  bool
	Theme      string
}

type JoinRequest struct {
	Name    string
	Company Owner
	Out     chan []byte
	Resp    chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type CommandEnvelope struct {
	SessionID string
	Cmd       protocol.CommandMsg
}

// World is a single-threaded authoritative simulation. All state must
// be accessed only from the world loop goroutine (or via StepOnce in
// tests); the two-phase estimate/commit contract has no lock discipline
// beyond that.
type World struct {
	cfg      WorldConfig
	tune     tuning.Tuning
	catalogs *catalogs.Catalogs

	tick atomic.Uint64

	grid    *Grid
	objects *ObjectPool

	companies map[Owner]*Company
	towns     map[TownID]*Town
	stations  []*Station

	rng          Randomizer
	date         Date
	economyTrend int // > 0 boom, <= 0 recession (halves HQ cargo)

	nextTownNum    int
	nextStationNum int
	nextSessionNum atomic.Uint64

	clients map[string]*clientState

	inbox chan CommandEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	// Incremental tile loop cursor; a slice of the map steps each tick.
	tileLoopCursor int

	autoslopeEnabled bool
	waterSim         WaterSim

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger
	progress    ProgressSink
}

type clientState struct {
	Out     chan []byte
	Company Owner
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// ProgressSink receives world-generation progress. Notifications are a
// side channel with no effect on correctness.
type ProgressSink interface {
	SetTotal(class string, total int)
	Step(class string)
}

// WaterSim is the external water-dynamics step that object cells
// sitting on reclaimed water delegate to during the tile loop.
type WaterSim interface {
	TileLoop(p Pt)
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedCommand struct {
	SessionID string              `json:"session_id"`
	Cmd       protocol.CommandMsg `json:"cmd"`
}

type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  string `json:"actor"` // "company_3", "worldgen", "session_N"
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
	Pos    [2]int `json:"pos"`
	Cost   int64  `json:"cost,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func New(cfg WorldConfig, tune tuning.Tuning, cats *catalogs.Catalogs) (*World, error) {
	if cfg.SizeX <= 0 || cfg.SizeY <= 0 {
		return nil, fmt.Errorf("bad map size %dx%d", cfg.SizeX, cfg.SizeY)
	}
	for _, kind := range []string{KindTransmitter, KindLighthouse, KindStatue, KindOwnedLand, KindHQ} {
		if _, ok := cats.Objects.Defs[kind]; !ok {
			return nil, fmt.Errorf("catalog missing object kind %s", kind)
		}
	}
	if err := validateKindOps(cats); err != nil {
		return nil, err
	}

	w := &World{
		cfg:       cfg,
		tune:      tune,
		catalogs:  cats,
		grid:      NewGrid(cfg.SizeX, cfg.SizeY),
		objects:   NewObjectPool(),
		companies: map[Owner]*Company{},
		towns:     map[TownID]*Town{},
		clients:   map[string]*clientState{},
		rng:       NewRandomizer(cfg.Seed),
		inbox:     make(chan CommandEnvelope, 1024),
		join:      make(chan JoinRequest, 64),
		leave:     make(chan string, 64),
		stop:      make(chan struct{}),

		autoslopeEnabled: true,
	}
	GenerateTerrain(w.grid, cfg.Seed, cfg.HardEdges)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)     { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)   { w.auditLogger = l }
func (w *World) SetProgressSink(p ProgressSink) { w.progress = p }

func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) CurrentTick() uint64  { return w.tick.Load() }
func (w *World) CurrentDate() Date    { return w.date }
func (w *World) Grid() *Grid          { return w.grid }
func (w *World) Objects() *ObjectPool { return w.objects }

func (w *World) SetEconomyTrend(trend int) { w.economyTrend = trend }
func (w *World) SetAutoslope(on bool)      { w.autoslopeEnabled = on }
func (w *World) SetWaterSim(ws WaterSim)   { w.waterSim = ws }

// ResetObjects clears the object pool and all counts; world
// (re)initialization only.
func (w *World) ResetObjects() {
	w.objects.Reset()
}

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCmds []CommandEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingCmds = append(pendingCmds, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingCmds)
			pendingJoins = nil
			pendingLeaves = nil
			pendingCmds = nil
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances exactly one tick with the given inputs. Test entry
// point; Run is the production loop.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, cmds []CommandEnvelope) uint64 {
	w.step(joins, leaves, cmds)
	return w.tick.Load()
}

func (w *World) step(joins []JoinRequest, leaves []string, cmds []CommandEnvelope) {
	nowTick := w.tick.Load()

	for _, req := range joins {
		w.handleJoin(req)
	}
	for _, id := range leaves {
		delete(w.clients, id)
	}

	var recorded []RecordedCommand
	for _, env := range cmds {
		w.applyCommand(env, nowTick)
		recorded = append(recorded, RecordedCommand{SessionID: env.SessionID, Cmd: env.Cmd})
	}

	w.runTileLoopSlice()

	next := nowTick + 1
	w.tick.Store(next)
	if next%ticksPerDay == 0 {
		w.date++
	}

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:     nowTick,
			Commands: recorded,
			Digest:   w.StateDigest(),
		})
	}
}

func (w *World) handleJoin(req JoinRequest) {
	n := w.nextSessionNum.Add(1)
	id := fmt.Sprintf("S%d", n)
	w.clients[id] = &clientState{Out: req.Out, Company: req.Company}

	wireCompany := 0
	if req.Company.IsCompany() {
		wireCompany = int(req.Company) + 1
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		Company:         wireCompany,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			SizeX:      w.cfg.SizeX,
			SizeY:      w.cfg.SizeY,
			Seed:       w.cfg.Seed,
			HardEdges:  w.cfg.HardEdges,
		},
		Catalogs: protocol.Digests{
			ObjectsDigest: w.catalogs.Objects.DefsDigest,
			TuningDigest:  w.tune.Digest,
		},
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: welcome}
	}
}

// runTileLoopSlice advances the incremental per-tile simulation over
// 1/16 of the map per tick, mirroring how the host frameworks spread
// tile-loop work across ticks.
func (w *World) runTileLoopSlice() {
	total := w.cfg.SizeX * w.cfg.SizeY
	sliceLen := total / 16
	if sliceLen == 0 {
		sliceLen = total
	}
	for i := 0; i < sliceLen; i++ {
		idx := (w.tileLoopCursor + i) % total
		p := Pt{X: idx % w.cfg.SizeX, Y: idx / w.cfg.SizeX}
		if w.grid.TileType(p) == TileObject {
			w.TileLoop(p)
		}
	}
	w.tileLoopCursor = (w.tileLoopCursor + sliceLen) % total
}

func (w *World) auditEvent(actor, action, kind string, p Pt, cost Money, reason string) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:   w.tick.Load(),
		Actor:  actor,
		Action: action,
		Kind:   kind,
		Pos:    [2]int{p.X, p.Y},
		Cost:   int64(cost),
		Reason: reason,
	})
}
