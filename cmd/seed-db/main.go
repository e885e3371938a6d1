// Command seed-db loads the demo data set: two cashiers, three categories
// with one product each, and a few orders so the API has something to show
// right after startup. Running it against an already seeded database is a
// no-op.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/corner-store/internal/domain/cashier"
	"github.com/xenking/corner-store/internal/domain/category"
	"github.com/xenking/corner-store/internal/domain/order"
	"github.com/xenking/corner-store/internal/domain/product"
	"github.com/xenking/corner-store/internal/storage/postgres"
)

type productJSON struct {
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
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

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	cashiers := postgres.NewCashierRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)

	// The first cashier doubles as the seeded marker.
	if _, err := cashiers.GetByID(ctx, 1); err == nil {
		slog.Info("database already seeded, nothing to do")
		return nil
	} else if !errors.Is(err, cashier.ErrNotFound) {
		return errors.Wrap(err, "check existing seed")
	}

	seededCashiers, err := seedCashiers(ctx, cashiers)
	if err != nil {
		return errors.Wrap(err, "seed cashiers")
	}

	seededProducts, err := seedProducts(ctx, categories, products, productsFile)
	if err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedOrders(ctx, orders, seededCashiers, seededProducts); err != nil {
		return errors.Wrap(err, "seed orders")
	}

	return nil
}

func seedCashiers(ctx context.Context, repo cashier.Repository) ([]cashier.Cashier, error) {
	seed := []cashier.Cashier{
		{FirstName: "Jim", LastName: "Bob"},
		{FirstName: "Steve", LastName: "Texas"},
	}

	slog.Info("creating cashiers", slog.Int("count", len(seed)))

	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			return nil, errors.Wrapf(err, "create cashier %s", seed[i].FullName())
		}

		slog.Info("created cashier", slog.Int64("id", seed[i].ID), slog.String("name", seed[i].FullName()))
	}

	return seed, nil
}

func seedProducts(
	ctx context.Context,
	categories category.Repository,
	products product.Repository,
	productsFile string,
) ([]product.Product, error) {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}

	slog.Info("creating products", slog.Int("count", len(entries)))

	out := make([]product.Product, 0, len(entries))
	for _, e := range entries {
		cat, err := categories.EnsureByName(ctx, e.Category)
		if err != nil {
			return nil, errors.Wrapf(err, "ensure category %s", e.Category)
		}

		p := product.Product{
			Name:       e.Name,
			Brand:      e.Brand,
			Price:      e.Price,
			CategoryID: cat.ID,
		}
		if err := products.Create(ctx, &p); err != nil {
			return nil, errors.Wrapf(err, "create product %s", e.Name)
		}

		slog.Info("created product",
			slog.Int64("id", p.ID),
			slog.String("name", p.Name),
			slog.String("category", e.Category),
		)
		out = append(out, p)
	}

	return out, nil
}

// seedOrders rings up a few demo orders, one of them already paid.
func seedOrders(
	ctx context.Context,
	repo order.Repository,
	cashiers []cashier.Cashier,
	products []product.Product,
) error {
	if len(cashiers) < 2 || len(products) < 3 {
		return errors.New("not enough seed data for demo orders")
	}

	paidOn := time.Date(2023, time.September, 29, 0, 0, 0, 0, time.UTC)

	orders := []order.Order{
		{
			CashierID: cashiers[0].ID,
			Items: []order.LineItem{
				{ProductID: products[0].ID, Quantity: 2},
				{ProductID: products[1].ID, Quantity: 1},
			},
		},
		{
			CashierID:  cashiers[1].ID,
			PaidOnDate: &paidOn,
			Items: []order.LineItem{
				{ProductID: products[2].ID, Quantity: 1},
			},
		},
		{
			CashierID: cashiers[0].ID,
			Items: []order.LineItem{
				{ProductID: products[1].ID, Quantity: 3},
			},
		},
	}

	slog.Info("creating demo orders", slog.Int("count", len(orders)))

	for i := range orders {
		if err := repo.Create(ctx, &orders[i]); err != nil {
			return errors.Wrapf(err, "create demo order %d", i+1)
		}

		slog.Info("created order", slog.Int64("id", orders[i].ID))
	}

	return nil
}
