package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/sokodle/internal/metrics"
	"github.com/SeamusWaldron/sokodle/internal/server"
	"github.com/SeamusWaldron/sokodle/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the level API and server-side play sessions.

Sessions are kept in Redis when session.redis_addr (or SOKODLE_REDIS_ADDR)
is set, and in memory otherwise. Metrics are exposed at /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store session.Store
	if cfg.Session.RedisAddr != "" {
		rs := session.NewRedisStore(cfg.Session.RedisAddr,
			session.WithPrefix(cfg.Session.Prefix),
			session.WithTTL(cfg.Session.TTL),
		)
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			return err
		}
		logger.Info("session store", "backend", "redis", "addr", cfg.Session.RedisAddr)
		store = rs
	} else {
		logger.Info("session store", "backend", "memory")
		store = session.NewMemoryStore()
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(server.Deps{
		DB:       db,
		Sessions: store,
		Metrics:  metrics.New(),
		Logger:   logger,
		ShareURL: cfg.ShareURL,
	})

	logger.Info("database", "path", db.Path())
	if err := srv.ListenAndServe(ctx, addr, cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
