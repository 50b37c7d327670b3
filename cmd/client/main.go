package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"arena-client/internal/combat"
	"arena-client/internal/config"
	"arena-client/internal/netconn"
	"arena-client/internal/protocol"
	"arena-client/internal/session"
	"arena-client/internal/tournament"
	"arena-client/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("client exited", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	conn := netconn.NewConnection(netconn.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		ReconnectDelay: cfg.ReconnectDelay,
		Logger:         logger,
	})

	mgr := session.NewManager(conn, session.Options{
		Logger:    logger,
		MoveLimit: cfg.MoveRateLimit,
	})

	terrain := world.FlatTerrain{Height: protocol.SpawnHeight}
	engine := combat.NewEngine(combat.Config{
		Class:   protocol.ParseClass(cfg.PlayerClass),
		Sender:  mgr,
		Scene:   world.StaticTargets(nil),
		Terrain: terrain,
		Targets: mgr.Roster(),
		Logger:  logger,
	})
	tracker := tournament.NewTracker(mgr, logger)

	mgr.AttachBookkeeper(engine)
	mgr.AttachBookkeeper(tracker)

	// Local death is followed by an automatic respawn after the fixed delay.
	// Respawn is a no-op when the player is already back up.
	mgr.RegisterHandler(protocol.KindPlayerDied, func(env protocol.Envelope) {
		p, err := protocol.DecodePayload[protocol.PlayerDied](env)
		if err != nil || p.ID != mgr.LocalID() {
			return
		}
		time.AfterFunc(time.Duration(combat.RespawnDelaySeconds*float64(time.Second)), engine.Respawn)
	})

	mgr.RegisterHandler(protocol.KindJoinConfirmed, func(protocol.Envelope) {
		if err := mgr.RequestExistingPlayers(""); err != nil {
			logger.Warn("roster request failed", "err", err)
		}
	})

	if err := mgr.Join(protocol.JoinRequest{
		Name:     cfg.PlayerName,
		Class:    protocol.ParseClass(cfg.PlayerClass),
		Position: protocol.SpawnOrigin(),
	}); err != nil {
		return err
	}

	logger.Info("connecting", "url", cfg.ServerURL)
	select {
	case err := <-conn.Connect(cfg.ServerURL):
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				// The engine reports position changes itself.
				engine.Tick(now.Sub(last).Seconds())
				last = now
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := mgr.Ping(); err != nil {
					logger.Warn("ping failed", "err", err)
				}
			}
		}
	})

	err := g.Wait()
	conn.Disconnect()
	return err
}
