package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tilemark.dev/internal/persistence/indexdb"
	persistlog "tilemark.dev/internal/persistence/log"
	"tilemark.dev/internal/sim/catalogs"
	"tilemark.dev/internal/sim/tuning"
	"tilemark.dev/internal/sim/world"
	"tilemark.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed       = flag.Int64("seed", 0, "world seed override (0: use tuning)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
		genObjects = flag.Bool("generate_objects", true, "run the worldgen object placement on startup")
		companies  = flag.Int("companies", 4, "number of company slots to open")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	cfg := world.WorldConfig{
		ID:         *worldID,
		TickRateHz: tune.TickRateHz,
		SizeX:      tune.Map.SizeX,
		SizeY:      tune.Map.SizeY,
		Seed:       tune.Map.Seed,
		HardEdges:  tune.Map.HardEdges,
		Theme:      tune.Map.Theme,
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	w, err := world.New(cfg, tune, cats)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	w.SetTickLogger(tickLog)

	auditLog := persistlog.NewAuditLogger(worldDir)
	defer auditLog.Close()

	if *disableDB {
		w.SetAuditLogger(auditLog)
	} else {
		idx, err := indexdb.Open(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		w.SetAuditLogger(teeAudit{auditLog, idx})
	}

	// A fresh world needs at least one settlement before any object can
	// resolve an owner town.
	seedTown := w.AddTown("Seedville", world.Pt{X: cfg.SizeX / 2, Y: cfg.SizeY / 2})
	logger.Printf("founded %s at %v", seedTown.Name, seedTown.Center)

	for i := 0; i < *companies; i++ {
		w.AddCompany(fmt.Sprintf("Company %d", i+1))
	}

	if *genObjects {
		w.SetProgressSink(logProgress{logger})
		w.GenerateObjects()
		logger.Printf("worldgen: %d transmitters, %d lighthouses",
			w.Objects().Count(world.KindTransmitter), w.Objects().Count(world.KindLighthouse))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Printf("shutting down")
		cancel()
	}()

	wsServer := ws.NewServer(w, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsServer.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = httpSrv.Close()
	}()
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("world loop: %v", err)
	}
}

// teeAudit fans audit entries out to the JSONL log and the index DB.
type teeAudit struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (t teeAudit) WriteAudit(e world.AuditEntry) error {
	err1 := t.a.WriteAudit(e)
	err2 := t.b.WriteAudit(e)
	if err1 != nil {
		return err1
	}
	return err2
}

type logProgress struct{ l *log.Logger }

func (p logProgress) SetTotal(class string, total int) {
	p.l.Printf("worldgen %s: target %d", class, total)
}

func (p logProgress) Step(class string) {}
