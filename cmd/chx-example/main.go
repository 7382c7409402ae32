// Package main is a small CLI exercising chx's Query, Insert, Inserter,
// and Watch operations against a configured ClickHouse-like server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mrhb33/chx"
	"github.com/mrhb33/chx/chxcfg"
)

type eventRow struct {
	No   uint32 `ch:"no"`
	Name string `ch:"name"`
}

func main() {
	configPath := flag.String("config", "chx-example.yaml", "path to YAML config")
	mode := flag.String("mode", "query", "query | insert | watch")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := chxcfg.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting chx example",
		zap.String("mode", *mode),
		zap.String("environment", cfg.Environment),
	)

	client, err := chx.NewClient(cfg.Server.URL,
		chx.WithCredentials(cfg.Server.User, cfg.Server.Password),
		chx.WithDatabase(cfg.Server.Database),
		chx.WithCompression(cfg.ResolveCompression()),
		chx.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to build client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx); err != nil {
		logger.Fatal("ping failed", zap.Error(err))
	}

	switch *mode {
	case "query":
		err = runQuery(ctx, client, logger)
	case "insert":
		err = runInsert(ctx, client, cfg, logger)
	case "watch":
		err = runWatch(ctx, client, logger)
	default:
		logger.Fatal("unknown mode", zap.String("mode", *mode))
	}
	if err != nil {
		logger.Fatal("run failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func runQuery(ctx context.Context, client *chx.Client, logger *zap.Logger) error {
	cur, err := chx.Rows[eventRow](ctx, client.Query("SELECT ?fields FROM events WHERE no > ?").Bind(uint32(0)))
	if err != nil {
		return fmt.Errorf("open cursor: %w", err)
	}
	defer cur.Close()

	count := 0
	for {
		row, ok, err := cur.Next()
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if !ok {
			break
		}
		count++
		logger.Debug("row", zap.Uint32("no", row.No), zap.String("name", row.Name))
	}
	logger.Info("query complete", zap.Int("rows", count))
	return nil
}

func runInsert(ctx context.Context, client *chx.Client, cfg *chxcfg.Config, logger *zap.Logger) error {
	period := time.Duration(cfg.Insert.PeriodMs) * time.Millisecond
	ins := chx.NewInserter[eventRow](client, cfg.Insert.Table, cfg.Insert.MaxRows, cfg.Insert.MaxBytes, period,
		chx.WithJitterBias(cfg.Insert.JitterBias),
	)
	defer func() {
		if err := ins.Close(ctx); err != nil {
			logger.Warn("close on shutdown", zap.Error(err))
		}
	}()

	for i := uint32(0); i < 10; i++ {
		row := eventRow{No: i, Name: fmt.Sprintf("row-%d", i)}
		if err := ins.Write(ctx, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		stats, err := ins.Commit(ctx)
		if err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		if stats.Transactions > 0 {
			logger.Info("committed batch", zap.Int("rows", stats.Rows), zap.Int("bytes", stats.Bytes))
		}
	}
	return nil
}

func runWatch(ctx context.Context, client *chx.Client, logger *zap.Logger) error {
	w, err := chx.OpenWatch[eventRow](ctx, client, "SELECT no, name FROM events", chx.WatchLimit(100))
	if err != nil {
		return fmt.Errorf("open watch: %w", err)
	}
	defer w.Close()

	for {
		version, row, ok, err := w.Next()
		if err != nil {
			return fmt.Errorf("read update: %w", err)
		}
		if !ok {
			return nil
		}
		logger.Info("update", zap.Uint64("version", version), zap.Uint32("no", row.No))
	}
}
