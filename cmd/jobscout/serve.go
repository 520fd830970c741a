package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/httpapi"
	"jobscout-engine/internal/scheduler"
	"jobscout-engine/internal/search"
	"jobscout-engine/internal/store"
)

func newServeCmd() *cobra.Command {
	var every time.Duration
	var periodicQuery string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API with SSE progress events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), every, periodicQuery)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 0, "also run a periodic background search (0 = disabled)")
	cmd.Flags().StringVar(&periodicQuery, "periodic-query", "", "query for the periodic search (default: random per run)")
	return cmd
}

func runServe(ctx context.Context, every time.Duration, periodicQuery string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	lock, err := lockDataDir(cfg.App.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := store.Open(filepath.Join(cfg.App.DataDir, "jobscout.db"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	opts, cleanup, err := scrapeOptions(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hub := events.NewHub()
	opts.OnOutcome = func(out domain.ScrapeOutcome) {
		hub.Publish(events.SourceDone("", out))
	}

	svc, err := search.New(cfg, opts)
	if err != nil {
		return err
	}

	var cfgVal, runStatus atomic.Value
	cfgVal.Store(cfg)
	runStatus.Store(httpapi.RunStatus{})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db,
		Hub:         hub,
		Searcher:    svc,
		CfgVal:      &cfgVal,
		RunStatus:   &runStatus,
		UserCfgPath: cfgPath,
	})
	handler := httpapi.Chain(mux,
		httpapi.Recover,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if every > 0 {
		go scheduler.Every(ctx, every, "periodic-search", func(ctx context.Context) error {
			return periodicRun(ctx, svc, db, hub, periodicQuery)
		})
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("[serve] listening on http://%s (data=%s)", addr, cfg.App.DataDir)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func periodicRun(ctx context.Context, svc *search.Service, db *store.DB, hub *events.Hub, query string) error {
	text := query
	if text == "" {
		text = svc.RandomQuery()
	}
	if text == "" {
		return nil
	}

	hub.Publish(events.RunStarted("", text))
	res, err := svc.Search(ctx, domain.SearchQuery{Text: text})
	if err != nil {
		return err
	}
	hub.Publish(events.RunDone(res))

	saved, err := db.SaveResult(ctx, res)
	if err != nil {
		return err
	}
	log.Printf("[periodic] query=%q found=%d saved=%d", text, len(res.Listings), saved)
	return nil
}
