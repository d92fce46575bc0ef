// Package catalog holds the product catalog the cart prices and validates
// against: wreath and arrangement products, their configurable options and
// the price modifiers of each choice.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string
	Name        string
	NameCS      string
	Description string
	BasePrice   int64
	ImageURL    string
	Active      bool
}

type OptionChoice struct {
	ID            string
	Label         string
	PriceModifier int64
}

type ProductOption struct {
	ID               string
	ProductID        string
	Label            string
	Required         bool
	AllowCustomValue bool
	Choices          []OptionChoice
}

// Catalog is the read contract the cart service needs.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductOptions(ctx context.Context, productID string) ([]ProductOption, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*Product, error) {
	query := `
		SELECT id, name, name_cs, description, base_price, image_url, active
		FROM products
		WHERE id = $1
	`

	p := &Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.NameCS,
		&p.Description,
		&p.BasePrice,
		&p.ImageURL,
		&p.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetProductOptions(ctx context.Context, productID string) ([]ProductOption, error) {
	query := `
		SELECT id, product_id, label, required, allow_custom_value
		FROM product_options
		WHERE product_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product options: %w", err)
	}
	defer rows.Close()

	var options []ProductOption
	for rows.Next() {
		opt := ProductOption{}
		if err := rows.Scan(&opt.ID, &opt.ProductID, &opt.Label, &opt.Required, &opt.AllowCustomValue); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for i := range options {
		choices, err := r.getChoices(ctx, options[i].ID)
		if err != nil {
			return nil, err
		}
		options[i].Choices = choices
	}
	return options, nil
}

func (r *Repository) getChoices(ctx context.Context, optionID string) ([]OptionChoice, error) {
	query := `
		SELECT id, label, price_modifier
		FROM option_choices
		WHERE option_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query option choices: %w", err)
	}
	defer rows.Close()

	var choices []OptionChoice
	for rows.Next() {
		c := OptionChoice{}
		if err := rows.Scan(&c.ID, &c.Label, &c.PriceModifier); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return choices, nil
}
