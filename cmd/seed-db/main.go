// Command seed-db loads the demo catalog into PostgreSQL and creates a staff
// account for catalog management. Safe to re-run: everything is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopfloor/storefront/internal/storage/postgres"
)

type catalogJSON struct {
	Categories []struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"categories"`
	Products []struct {
		Slug        string          `json:"slug"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Category    string          `json:"category"`
		Stock       int             `json:"stock"`
		Image       struct {
			Thumbnail string `json:"thumbnail"`
			Mobile    string `json:"mobile"`
			Tablet    string `json:"tablet"`
			Desktop   string `json:"desktop"`
		} `json:"image"`
	} `json:"products"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		staffUsername string
		staffPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&staffUsername, "staff-username", "admin", "staff account username")
	flag.StringVar(&staffPassword, "staff-password", "", "staff account password (or STORE_SEED_STAFF_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if staffPassword == "" {
		staffPassword = os.Getenv("STORE_SEED_STAFF_PASSWORD")
	}
	if staffPassword == "" {
		slog.Error("staff password is required: set --staff-password or STORE_SEED_STAFF_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, staffUsername, staffPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, staffUsername, staffPassword string) error {
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

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedStaffUser(ctx, pool, staffUsername, staffPassword); err != nil {
		return errors.Wrap(err, "seed staff user")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(catalog.Categories)))

	for _, c := range catalog.Categories {
		if _, err := pool.Exec(ctx, `
			INSERT INTO categories (slug, name) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		`, c.Slug, c.Name); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.Slug)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(catalog.Products)))

	for _, p := range catalog.Products {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (
				id, slug, name, description, price, category_slug, stock,
				image_thumbnail, image_mobile, image_tablet, image_desktop
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (slug) DO UPDATE SET
				name            = EXCLUDED.name,
				description     = EXCLUDED.description,
				price           = EXCLUDED.price,
				category_slug   = EXCLUDED.category_slug,
				stock           = EXCLUDED.stock,
				image_thumbnail = EXCLUDED.image_thumbnail,
				image_mobile    = EXCLUDED.image_mobile,
				image_tablet    = EXCLUDED.image_tablet,
				image_desktop   = EXCLUDED.image_desktop
		`,
			uuid.New().String(), p.Slug, p.Name, p.Description, p.Price, p.Category, p.Stock,
			p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}

		slog.Info("upserted product", slog.String("slug", p.Slug), slog.String("name", p.Name))
	}

	return nil
}

func seedStaffUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	slog.Info("seeding staff user", slog.String("username", username))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, is_staff)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			is_staff      = TRUE
	`, uuid.New().String(), username, string(hash)); err != nil {
		return errors.Wrap(err, "upsert staff user")
	}

	return nil
}
