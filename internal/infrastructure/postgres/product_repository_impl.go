package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/internal/domain/repository"
)

var productSortColumns = map[string]string{
	"name":       "name",
	"sku":        "sku",
	"category":   "category",
	"source":     "source",
	"created_at": "created_at",
}

const productColumns = "id, name, sku, description, category, logo, source, assigned_to, created_at, updated_at"

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Category,
		&p.Logo, &p.Source, &p.AssignedTo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, sku, description, category, logo, source, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Name, p.SKU, p.Description, p.Category, p.Logo, p.Source, p.AssignedTo)

	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return translateUnique(err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	return scanProduct(row)
}

// filterClause builds the WHERE fragment shared by List and its count query.
func filterClause(q repository.ProductQuery) (string, []any) {
	var conds []string
	var args []any

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Source != "" {
		args = append(args, q.Source)
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	if q.AssignedTo != "" {
		args = append(args, q.AssignedTo)
		conds = append(conds, fmt.Sprintf("$%d = ANY(assigned_to)", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *ProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, int64, error) {
	where, args := filterClause(q)

	col, ok := productSortColumns[q.Sort]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if q.Order == "desc" {
		dir = "DESC"
	}

	sql := "SELECT " + productColumns + " FROM products" + where +
		fmt.Sprintf(" ORDER BY %s %s", col, dir)
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, (page-1)*q.Limit)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Total is computed over the same filter, independent of the page window.
	countWhere, countArgs := filterClause(q)
	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+countWhere, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, sku = $2, description = $3, category = $4, logo = $5, assigned_to = $6, updated_at = $7
		WHERE id = $8
	`, p.Name, p.SKU, p.Description, p.Category, p.Logo, p.AssignedTo, p.UpdatedAt, p.ID)
	if err != nil {
		return translateUnique(err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
