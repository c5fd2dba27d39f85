package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfloor/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

const productColumns = `id, slug, name, description, price, category_slug, stock,
	created_by, created_at, image_thumbnail, image_mobile, image_tablet, image_desktop`

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one page of products matching the filter, newest first, along
// with the total match count for pagination.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) (*product.Page, error) {
	where, args := buildProductFilter(f)

	var total int
	countSQL := "SELECT count(*) FROM products" + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = product.DefaultPageSize
	}

	listSQL := fmt.Sprintf(
		"SELECT %s FROM products%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	return &product.Page{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// buildProductFilter compiles a Filter into a WHERE clause and its arguments.
func buildProductFilter(f product.Filter) (string, []any) {
	var conds []string
	var args []any

	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		p := next()
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, "category_slug = "+next())
	}
	switch f.PriceRange {
	case product.PriceRangeUnder100:
		conds = append(conds, "price <= 100")
	case product.PriceRange100To500:
		conds = append(conds, "price >= 100 AND price <= 500")
	case product.PriceRange500To1000:
		conds = append(conds, "price >= 500 AND price <= 1000")
	case product.PriceRangeAbove1000:
		conds = append(conds, "price >= 1000")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetByID returns a single product by identifier, or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySlug returns a single product by slug, or product.ErrNotFound.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *ProductRepository) getBy(ctx context.Context, column, value string) (*product.Product, error) {
	sql := fmt.Sprintf("SELECT %s FROM products WHERE %s = $1", productColumns, column)

	row := r.pool.QueryRow(ctx, sql, value)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product by %s %q: %w", column, value, err)
	}
	return p, nil
}

// Related returns up to limit products in the same category, excluding p.
func (r *ProductRepository) Related(ctx context.Context, p *product.Product, limit int) ([]product.Product, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM products WHERE category_slug = $1 AND id <> $2 ORDER BY created_at DESC LIMIT $3",
		productColumns,
	)

	rows, err := r.pool.Query(ctx, sql, p.Category, p.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing related products for %q: %w", p.ID, err)
	}
	return scanProducts(rows)
}

const createProductSQL = `INSERT INTO products (id, slug, name, description, price, category_slug, stock,
	created_by, image_thumbnail, image_mobile, image_tablet, image_desktop)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Create inserts a new product. A slug collision maps to product.ErrSlugTaken.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Slug, p.Name, p.Description, p.Price, p.Category, p.Stock,
		p.CreatedBy, p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrSlugTaken
		}
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

const updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4,
	category_slug = $5, stock = $6, image_thumbnail = $7, image_mobile = $8,
	image_tablet = $9, image_desktop = $10
	WHERE id = $1`

// Update overwrites the mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Stock,
		p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product by identifier.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Categories returns every category ordered by name.
func (r *ProductRepository) Categories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, "SELECT slug, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.Slug, &c.Name)
		return c, err
	})
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock,
		&p.CreatedBy, &p.CreatedAt,
		&p.Image.Thumbnail, &p.Image.Mobile, &p.Image.Tablet, &p.Image.Desktop,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]product.Product, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Product, error) {
		p, err := scanProduct(row)
		if err != nil {
			return product.Product{}, err
		}
		return *p, nil
	})
}
