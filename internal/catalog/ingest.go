package catalog

import (
	"context"
	"math/bits"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/corner-store/internal/domain/category"
	"github.com/xenking/corner-store/internal/domain/product"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// Ingestor cross-validates supplier feeds and upserts trusted products.
type Ingestor struct {
	products   product.Repository
	categories category.Repository
}

// NewIngestor constructs an Ingestor backed by the given repositories.
func NewIngestor(products product.Repository, categories category.Repository) *Ingestor {
	return &Ingestor{
		products:   products,
		categories: categories,
	}
}

// Stats summarizes one ingest run.
type Stats struct {
	// Trusted is the number of SKUs confirmed by two or more feeds.
	Trusted int
	// Upserted is the number of products written to the catalog.
	Upserted int
}

// Run ingests the given feed files. It streams every file twice: pass one
// builds a bloom filter of SKUs per feed, pass two collects the records whose
// SKU a different feed also carries. Confirmed records are then upserted by
// SKU, creating categories as needed.
func (ing *Ingestor) Run(ctx context.Context, files []string) (Stats, error) {
	if len(files) < 2 {
		return Stats{}, errors.New("need at least two feed files to cross-validate")
	}

	lg := zctx.From(ctx)
	lg.Info("Pass 1: building SKU filters", zap.Int("files", len(files)))

	filters, err := buildSKUFilters(ctx, files)
	if err != nil {
		return Stats{}, errors.Wrap(err, "build sku filters")
	}

	lg.Info("Pass 2: collecting confirmed records")

	trusted, err := collectTrustedRecords(ctx, files, filters)
	if err != nil {
		return Stats{}, errors.Wrap(err, "collect trusted records")
	}

	lg.Info("Trusted SKUs found", zap.Int("count", len(trusted)))

	stats := Stats{Trusted: len(trusted)}
	for _, rec := range trusted {
		if err := ing.upsert(ctx, rec); err != nil {
			return stats, errors.Wrapf(err, "upsert sku %s", rec.SKU)
		}
		stats.Upserted++
	}

	return stats, nil
}

// upsert resolves the record's category and writes the product by SKU.
func (ing *Ingestor) upsert(ctx context.Context, rec Record) error {
	cat, err := ing.categories.EnsureByName(ctx, rec.Category)
	if err != nil {
		return errors.Wrapf(err, "ensure category %s", rec.Category)
	}

	return ing.products.UpsertBySKU(ctx, &product.Product{
		Name:       rec.Name,
		Brand:      rec.Brand,
		Price:      rec.Price,
		CategoryID: cat.ID,
		SKU:        rec.SKU,
	})
}

// buildSKUFilters creates one bloom filter per feed file, concurrently.
func buildSKUFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFeed(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFeed(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		lg := zctx.From(ctx)
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamFeed(ctx, path, func(line []byte) {
			rec, err := decodeRecord(line)
			if err != nil || !rec.valid() {
				return
			}
			filter.AddString(rec.SKU)
			count++
			if count%progressEvery == 0 {
				lg.Info("Pass 1 progress",
					zap.Int("feed", idx+1),
					zap.Uint64("records", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for feed %d", idx+1)
		}

		lg.Info("Pass 1 complete",
			zap.Int("feed", idx+1),
			zap.Uint64("total_records", count),
		)

		filters[idx] = filter
		return nil
	}
}

// feedResult holds the candidate records found in one feed during pass 2.
// The mask records which feed the candidate was seen in.
type feedResult struct {
	records map[string]Record
	masks   map[string]uint
}

// collectTrustedRecords re-streams each feed and checks SKUs against the
// OTHER feeds' bloom filters. A SKU is trusted when it appears in two or more
// feeds; the record kept for it comes from the lowest-numbered feed.
func collectTrustedRecords(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]Record, error) {
	results := make([]feedResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(collectCandidatesInFeed(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	records := make(map[string]Record)
	for _, r := range results {
		for sku, mask := range r.masks {
			merged[sku] |= mask
			if _, ok := records[sku]; !ok {
				records[sku] = r.records[sku]
			}
		}
	}

	trusted := make(map[string]Record)
	for sku, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			trusted[sku] = records[sku]
		}
	}

	return trusted, nil
}

func collectCandidatesInFeed(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []feedResult,
) func() error {
	return func() error {
		lg := zctx.From(ctx)
		res := feedResult{
			records: make(map[string]Record),
			masks:   make(map[string]uint),
		}
		feedBit := uint(1) << uint(idx)
		var count uint64

		if err := streamFeed(ctx, path, func(line []byte) {
			rec, err := decodeRecord(line)
			if err != nil || !rec.valid() {
				return
			}

			count++
			if count%progressEvery == 0 {
				lg.Info("Pass 2 progress",
					zap.Int("feed", idx+1),
					zap.Uint64("records", count),
				)
			}

			// Keep the record only if another feed carries the same SKU.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(rec.SKU) {
					res.records[rec.SKU] = rec
					res.masks[rec.SKU] |= feedBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan feed %d for candidates", idx+1)
		}

		lg.Info("Pass 2 complete",
			zap.Int("feed", idx+1),
			zap.Uint64("total_records", count),
			zap.Int("candidates", len(res.masks)),
		)

		results[idx] = res
		return nil
	}
}
