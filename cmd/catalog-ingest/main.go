// Command catalog-ingest loads supplier product feeds into the catalog.
// Feeds are gzip-compressed JSONL files; see the catalog package for the
// cross-validation rules.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/corner-store/internal/catalog"
	"github.com/xenking/corner-store/internal/storage/postgres"
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz supplier feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) < 2 {
		return errors.Errorf("found %d feed files in %s, need at least two to cross-validate", len(files), dataDir)
	}
	sort.Strings(files)

	slog.Info("ingesting feeds", slog.Int("count", len(files)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	lg, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	ing := catalog.NewIngestor(
		postgres.NewProductRepository(pool),
		postgres.NewCategoryRepository(pool),
	)

	stats, err := ing.Run(zctx.Base(ctx, lg), files)
	if err != nil {
		return errors.Wrap(err, "run ingest")
	}

	slog.Info("ingest finished",
		slog.Int("trusted", stats.Trusted),
		slog.Int("upserted", stats.Upserted),
	)

	return nil
}
