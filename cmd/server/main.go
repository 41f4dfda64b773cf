package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/relay/internal/adapters/http"
	"github.com/dkeye/relay/internal/adapters/rtc"
	wsignal "github.com/dkeye/relay/internal/adapters/signal"
	"github.com/dkeye/relay/internal/adapters/store"
	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/app/orch"
	"github.com/dkeye/relay/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	iceServers, err := rtc.ICEServers(cfg.ICEServers)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ice servers")
	}

	reg := app.NewRegistry()
	o := &orch.Orchestrator{
		Registry: reg,
		Policy:   app.SimplePolicy{Action: app.ParseBackpressureAction(cfg.Backpressure)},
		Signals:  rtc.Validator{MaxSDPBytes: cfg.MaxSDPBytes},
		Boards: orch.BoardRooms{
			Prefixes:    cfg.Board.Prefixes,
			Columns:     cfg.Board.Columns,
			LoadTimeout: cfg.Board.LoadTimeout,
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet, boards fall back to defaults until it is")
		}
		pingCancel()

		boards := store.NewBoardStore(rdb, cfg.Redis.KeyPrefix, cfg.Board.Columns)
		persister := store.NewPersister(boards, store.PersistOptions{
			Queue:        cfg.Persist.Queue,
			MaxAttempts:  cfg.Persist.MaxAttempts,
			Backoff:      cfg.Persist.Backoff,
			DrainTimeout: cfg.Persist.DrainTimeout,
		})
		o.Loader = boards
		o.Sink = persister
		g.Go(func() error { return persister.Run(gctx) })
	} else {
		log.Info().Msg("no redis configured, boards are kept in memory only")
	}

	ctrl := wsignal.NewSignalWSController(o, wsignal.NewRateLimiter(cfg.RateLimit, cfg.RateInterval), wsignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		ICEServers: iceServers,
	})
	r := router.SetupRouter(gctx, cfg, reg, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("relay server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("Server exited gracefully")
}
