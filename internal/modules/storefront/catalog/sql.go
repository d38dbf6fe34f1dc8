package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/database"
)

const (
	productsTable       = "products"
	dbUnavailableErrMsg = "failed to get database connection: %w"
)

var productColumns = []string{"id", "category", "name", "price", "original_price", "colors", "rating", "reviews", "badge", "description"}

func selectColumns() []any {
	cols := make([]any, len(productColumns))
	for i, c := range productColumns {
		cols[i] = c
	}
	return cols
}

// productEntity is a row of the products table. Colours are stored as a JSON array;
// original_price is 0 for products without a discount.
type productEntity struct {
	ID            string  `db:"id"`
	Category      string  `db:"category"`
	Name          string  `db:"name"`
	Price         int64   `db:"price"`
	OriginalPrice int64   `db:"original_price"`
	Colors        string  `db:"colors"`
	Rating        float64 `db:"rating"`
	Reviews       int     `db:"reviews"`
	Badge         string  `db:"badge"`
	Description   string  `db:"description"`
}

type scanner interface {
	Scan(dest ...any) error
}

func (e *productEntity) scan(row scanner) error {
	return row.Scan(
		&e.ID,
		&e.Category,
		&e.Name,
		&e.Price,
		&e.OriginalPrice,
		&e.Colors,
		&e.Rating,
		&e.Reviews,
		&e.Badge,
		&e.Description,
	)
}

func (e *productEntity) toProduct() (domain.Product, error) {
	p := domain.Product{
		ID:            e.ID,
		Category:      e.Category,
		Name:          e.Name,
		Price:         e.Price,
		OriginalPrice: e.OriginalPrice,
		Rating:        e.Rating,
		Reviews:       e.Reviews,
		Badge:         e.Badge,
		Description:   e.Description,
	}
	if e.Colors != "" {
		if err := json.Unmarshal([]byte(e.Colors), &p.Colors); err != nil {
			return domain.Product{}, fmt.Errorf("failed to decode colors of %s: %w", e.ID, err)
		}
	}
	return p, nil
}

// SQL reads the catalog from the products table of the default database.
type SQL struct {
	getDB func(context.Context) (database.Interface, error)
}

func NewSQL(getDB func(context.Context) (database.Interface, error)) *SQL {
	return &SQL{getDB: getDB}
}

func (s *SQL) Categories(ctx context.Context) ([]string, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	query, args, err := qb.Select("DISTINCT category").
		From(productsTable).
		OrderBy("category").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build categories query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return out, nil
}

func (s *SQL) Category(ctx context.Context, name string) ([]domain.Product, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	f := qb.Filter()
	query, args, err := qb.Select(selectColumns()...).
		From(productsTable).
		Where(f.Eq("category", name)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var entity productEntity
		if err := entity.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p, err := entity.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if len(products) == 0 {
		return nil, ErrCategoryNotFound
	}
	return products, nil
}

func (s *SQL) Product(ctx context.Context, id string) (*domain.Product, error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	f := qb.Filter()
	query, args, err := qb.Select(selectColumns()...).
		From(productsTable).
		Where(f.Eq("id", id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var entity productEntity
	if err := entity.scan(db.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p, err := entity.toProduct()
	if err != nil {
		return nil, err
	}
	return &p, nil
}
