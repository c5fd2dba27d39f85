// Command catalog-import bulk-loads gzipped JSONL product feeds into the
// catalog. Feeds come from different suppliers and routinely overlap, so the
// import runs in two passes: pass 1 builds a per-feed bloom filter of slugs,
// pass 2 uses the other feeds' filters to pin down slugs that appear in more
// than one feed. Conflicting slugs are skipped and reported; the rest are
// upserted in batches.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shopfloor/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	batchSize     = 500
)

// feedRow is one product line in a supplier feed.
type feedRow struct {
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
}

func (r feedRow) valid() bool {
	return r.Slug != "" && r.Name != "" && r.Category != "" && !r.Price.IsNegative()
}

func main() {
	var (
		feedDir     string
		databaseURL string
	)

	flag.StringVar(&feedDir, "feed-dir", "feeds", "directory containing *.jsonl.gz product feeds")
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

	if err := run(ctx, feedDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, feedDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(feedDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz feeds in %s", feedDir)
	}
	sort.Strings(files)

	slog.Info("pass 1: indexing feed slugs", slog.Int("feeds", len(files)))

	filters, err := buildSlugFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "index feed slugs")
	}

	slog.Info("pass 2: detecting cross-feed conflicts")

	conflicts, err := findConflictingSlugs(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "detect conflicts")
	}
	for slug := range conflicts {
		slog.Warn("slug appears in multiple feeds, skipping", slog.String("slug", slug))
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var imported int
	for _, f := range files {
		n, err := importFeed(ctx, pool, f, conflicts)
		if err != nil {
			return errors.Wrapf(err, "import feed %s", filepath.Base(f))
		}
		imported += n
	}

	slog.Info("import finished",
		slog.Int("imported", imported),
		slog.Int("conflicts", len(conflicts)),
	)
	return nil
}

// buildSlugFilters creates one bloom filter of product slugs per feed,
// streaming all feeds concurrently.
func buildSlugFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			err := streamFeed(ctx, f, func(row feedRow) {
				filter.AddString(row.Slug)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress",
						slog.String("feed", filepath.Base(f)),
						slog.Uint64("rows", count),
					)
				}
			})
			if err != nil {
				return err
			}

			slog.Info("pass 1 complete",
				slog.String("feed", filepath.Base(f)),
				slog.Uint64("rows", count),
			)
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// findConflictingSlugs re-streams each feed and tests every slug against the
// OTHER feeds' filters. Bloom hits are only candidates; a slug is confirmed
// as a conflict once two different feeds both report it.
func findConflictingSlugs(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]struct{}, error) {
	perFeed := make([]map[string]struct{}, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			candidates := make(map[string]struct{})
			err := streamFeed(ctx, f, func(row feedRow) {
				for j, filter := range filters {
					if j == i {
						continue
					}
					if filter.TestString(row.Slug) {
						candidates[row.Slug] = struct{}{}
						break
					}
				}
			})
			if err != nil {
				return err
			}
			perFeed[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	for _, candidates := range perFeed {
		for slug := range candidates {
			seen[slug]++
		}
	}

	conflicts := make(map[string]struct{})
	for slug, n := range seen {
		if n >= 2 {
			conflicts[slug] = struct{}{}
		}
	}
	return conflicts, nil
}

const upsertProductSQL = `
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
`

const upsertCategorySQL = `
INSERT INTO categories (slug, name) VALUES ($1, $2)
ON CONFLICT (slug) DO NOTHING
`

// importFeed streams one feed and upserts its rows in batches, skipping
// conflicting slugs and rows that fail validation.
func importFeed(ctx context.Context, pool *pgxpool.Pool, path string, conflicts map[string]struct{}) (int, error) {
	var (
		batch    pgx.Batch
		imported int
		skipped  int
		flushErr error
	)

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, &batch).Close(); err != nil {
			return errors.Wrap(err, "send batch")
		}
		batch = pgx.Batch{}
		return nil
	}

	err := streamFeed(ctx, path, func(row feedRow) {
		if flushErr != nil {
			return
		}
		if _, ok := conflicts[row.Slug]; ok {
			skipped++
			return
		}
		if !row.valid() {
			slog.Warn("invalid feed row, skipping",
				slog.String("feed", filepath.Base(path)),
				slog.String("slug", row.Slug),
			)
			skipped++
			return
		}

		batch.Queue(upsertCategorySQL, row.Category, categoryName(row.Category))
		batch.Queue(upsertProductSQL,
			uuid.New().String(), row.Slug, row.Name, row.Description,
			row.Price, row.Category, row.Stock,
			row.Image.Thumbnail, row.Image.Mobile, row.Image.Tablet, row.Image.Desktop,
		)
		imported++

		if batch.Len() >= batchSize {
			flushErr = flush()
		}
	})
	if err != nil {
		return 0, err
	}
	if flushErr != nil {
		return 0, flushErr
	}
	if err := flush(); err != nil {
		return 0, err
	}

	slog.Info("feed imported",
		slog.String("feed", filepath.Base(path)),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped),
	)
	return imported, nil
}

// streamFeed opens a gzipped JSONL feed and calls fn for each decoded row.
// Lines that fail to decode are logged and skipped.
func streamFeed(ctx context.Context, path string, fn func(row feedRow)) error {
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
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var lineNo int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row feedRow
		if err := json.Unmarshal(line, &row); err != nil {
			slog.Warn("malformed feed line",
				slog.String("feed", filepath.Base(path)),
				slog.Int("line", lineNo),
			)
			continue
		}
		fn(row)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// categoryName derives a display name from a category slug, e.g.
// "home-garden" becomes "Home Garden". Imported categories can be renamed
// later; the feed format carries only the slug.
func categoryName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
