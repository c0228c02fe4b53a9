package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/pbaille/grocer/assets"
	"github.com/pbaille/grocer/internal/domain"
)

//go:embed schema.sql
var schema string

// Store is a read-only product catalog held in an in-memory database.
// It is populated once at startup and never written to afterwards.
type Store struct {
	db *sql.DB
}

// product mirrors one catalog.yaml record.
type product struct {
	Name     string  `yaml:"name"`
	Brand    string  `yaml:"brand"`
	Price    float64 `yaml:"price"`
	Category string  `yaml:"category"`
	Seasonal bool    `yaml:"seasonal"`
}

// Load builds a Store from the YAML file at path, or from the embedded
// default catalog when path is empty.
func Load(path string) (*Store, error) {
	data := assets.DefaultCatalogYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	return New(data)
}

// New builds a Store from raw catalog YAML.
func New(data []byte) (*Store, error) {
	var products []product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each pool connection would get its own :memory: database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	for i, p := range products {
		seasonal := 0
		if p.Seasonal {
			seasonal = 1
		}
		_, err := db.Exec(
			"INSERT INTO products (pos, name, brand, price, category, seasonal) VALUES (?, ?, ?, ?, ?, ?)",
			i, p.Name, p.Brand, p.Price, p.Category, seasonal,
		)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("insert product: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Search returns every product whose name or category contains query
// case-insensitively. An empty query matches everything, so a brand or
// price filter on its own performs a pure filter search. Results keep
// catalog declaration order.
func (s *Store) Search(query, brand string, maxPrice *float64) ([]domain.CatalogEntry, error) {
	q := "SELECT name, brand, price, category, seasonal FROM products WHERE (lower(name) LIKE ? ESCAPE '\\' OR lower(category) LIKE ? ESCAPE '\\')"
	args := []interface{}{pattern(query), pattern(query)}

	if brand != "" {
		q += " AND lower(brand) LIKE ? ESCAPE '\\'"
		args = append(args, pattern(brand))
	}
	if maxPrice != nil {
		q += " AND price <= ?"
		args = append(args, *maxPrice)
	}
	q += " ORDER BY pos"

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// SeasonalSample returns up to n seasonal products in declaration order.
func (s *Store) SeasonalSample(n int) ([]domain.CatalogEntry, error) {
	rows, err := s.db.Query(
		"SELECT name, brand, price, category, seasonal FROM products WHERE seasonal = 1 ORDER BY pos LIMIT ?",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("seasonal products: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]domain.CatalogEntry, error) {
	entries := []domain.CatalogEntry{}
	for rows.Next() {
		var e domain.CatalogEntry
		var seasonal int
		if err := rows.Scan(&e.Name, &e.Brand, &e.Price, &e.Category, &seasonal); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		e.Seasonal = seasonal != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// pattern builds a LIKE pattern that matches s as a literal substring, so
// metacharacters in a query ("2% milk") do not act as wildcards.
func pattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
