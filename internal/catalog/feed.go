// Package catalog ingests supplier product feeds into the store catalog.
//
// Suppliers ship gzip-compressed JSONL files, one product record per line.
// Feeds are noisy: lines may be malformed and SKUs may be stale or invented,
// so a SKU is only trusted when at least two independent feeds agree on it.
package catalog

import (
	"bufio"
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
)

const (
	minSKULen = 6
	maxSKULen = 32
)

// Record is one product line from a supplier feed.
type Record struct {
	SKU      string
	Name     string
	Brand    string
	Category string
	Price    decimal.Decimal
}

// valid reports whether the record is complete enough to ingest.
func (r Record) valid() bool {
	return len(r.SKU) >= minSKULen && len(r.SKU) <= maxSKULen &&
		r.Name != "" && r.Category != "" && !r.Price.IsNegative()
}

// decodeRecord parses a single JSONL feed line.
func decodeRecord(line []byte) (Record, error) {
	var rec Record
	d := jx.DecodeBytes(line)

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sku":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "sku")
			}
			rec.SKU = v
		case "name":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			rec.Name = v
		case "brand":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "brand")
			}
			rec.Brand = v
		case "category":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "category")
			}
			rec.Category = v
		case "price":
			// Suppliers send prices both as JSON numbers and as strings.
			var raw string
			if d.Next() == jx.String {
				v, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "price")
				}
				raw = v
			} else {
				n, err := d.Num()
				if err != nil {
					return errors.Wrap(err, "price")
				}
				raw = n.String()
			}
			p, err := decimal.NewFromString(raw)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			rec.Price = p
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return Record{}, errors.Wrap(err, "decode record")
	}

	return rec, nil
}

// streamFeed opens a gzip-compressed feed and calls fn for each raw line.
func streamFeed(ctx context.Context, path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
