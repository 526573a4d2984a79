package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
	"github.com/igloolab/pharmacy-inventory/internal/core/ports"
)

const (
	productColumns = `id, name, price::float8, description, elaboration_date, expiry_date, image, created_at, updated_at`

	insertProductSQL = `INSERT INTO products ` +
		`(id, name, price, description, elaboration_date, expiry_date, image, created_at, updated_at) ` +
		`VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	findProductByIDSQL    = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	findAllProductsSQL    = `SELECT ` + productColumns + ` FROM products`
	deleteProductSQL      = `DELETE FROM products WHERE id = $1`
	countExpiringBySQL    = `SELECT COUNT(*) FROM products WHERE expiry_date <= $1`
	countExpiringAfterSQL = `SELECT COUNT(*) FROM products WHERE expiry_date > $1`
)

var sortColumns = map[domain.SortField]string{
	domain.SortByName:            "name",
	domain.SortByPrice:           "price",
	domain.SortByElaborationDate: "elaboration_date",
	domain.SortByExpiryDate:      "expiry_date",
	domain.SortByCreatedAt:       "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p     domain.Product
		image sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Description,
		&p.ElaborationDate, &p.ExpiryDate, &image, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	p.ElaborationDate = p.ElaborationDate.UTC()
	p.ExpiryDate = p.ExpiryDate.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, insertProductSQL,
		p.ID, p.Name, p.Price, p.Description,
		p.ElaborationDate, p.ExpiryDate, p.Image, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, findProductByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// listQueries builds the page and count statements for f. The sort column
// comes from a fixed map, never from user input.
func listQueries(f ports.ListProductsFilter) (page, count string, args []any) {
	where := ""
	if f.Search != "" {
		where = ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	dir := "DESC"
	if f.Order == domain.OrderAsc {
		dir = "ASC"
	}

	n := len(args)
	page = fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		productColumns, where, column, dir, dir, n+1, n+2)
	count = `SELECT COUNT(*) FROM products` + where
	return page, count, args
}

func (r *ProductRepository) List(ctx context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pageSQL, countSQL, args := listQueries(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		offset = 0
	}
	items, err := r.query(ctx, pageSQL, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.query(ctx, findAllProductsSQL)
}

func (r *ProductRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

// updateQuery builds an UPDATE touching only the patched columns.
func updateQuery(id string, patch domain.ProductPatch, updatedAt time.Time) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ElaborationDate != nil {
		add("elaboration_date", *patch.ElaborationDate)
	}
	if patch.ExpiryDate != nil {
		add("expiry_date", *patch.ExpiryDate)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns)
	return q, args
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q, args := updateQuery(id, patch, updatedAt)
	p, err := scanProduct(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return n > 0, nil
}

func (r *ProductRepository) CountExpiringBy(ctx context.Context, t time.Time) (int64, error) {
	return r.count(ctx, countExpiringBySQL, t)
}

func (r *ProductRepository) CountExpiringAfter(ctx context.Context, t time.Time) (int64, error) {
	return r.count(ctx, countExpiringAfterSQL, t)
}

func (r *ProductRepository) count(ctx context.Context, q string, t time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx, q, t).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products by expiry: %w", err)
	}
	return n, nil
}
