package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voice-sheet/internal/bridge"
	"voice-sheet/internal/kvstore"
	"voice-sheet/internal/session"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, sheet string
	cmd := &cobra.Command{
		Use:   "serve [file.xlsx]",
		Short: "Serve the websocket bridge for browser speech front ends",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			return a.serve(cmd.Context(), addr, file, sheet)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http service address (default from config)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to open (default: first sheet)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr, file, sheet string) error {
	kv, err := a.openStore()
	if err != nil {
		return err
	}
	defer kvstore.Close(kv)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := bridge.NewHub(a.entry())
	speech := bridge.NewSpeech(hub, a.cfg.Voice.Language)
	loop := session.NewLoop(a.newSession(kv, a.gateway(), speech, speech, speech))
	handler := bridge.NewHandler(ctx, hub, loop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		bridge.ServeWs(hub, handler, w, r)
	})
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var st session.State
		if err := loop.Do(r.Context(), func(s *session.Session) { st = s.Snapshot() }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(st)
	})
	// Simple health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return quiet(hub.Run(gctx)) })
	g.Go(func() error { return quiet(loop.Run(gctx)) })
	g.Go(func() error {
		a.log.Infof("Server started on %s", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if file != "" {
		loop.OpenAsync(gctx, file, sheet)
	}
	return g.Wait()
}

// quiet treats cancellation as a clean stop.
func quiet(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
