package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/gamestore/internal/domain/product"
	"github.com/shopspring/decimal"
)

//go:embed catalog.json
var demoCatalog []byte

// CatalogRepository keeps products in insertion order. Products are shared pointers:
// stock mutations are visible store-wide.
type CatalogRepository struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*product.Product
}

func NewCatalogRepository(products ...*product.Product) (*CatalogRepository, error) {
	r := &CatalogRepository{products: make(map[string]*product.Product, len(products))}
	for _, p := range products {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewDemoCatalog seeds the repository with the built-in demo products.
func NewDemoCatalog() (*CatalogRepository, error) {
	products, err := DecodeCatalog(bytes.NewReader(demoCatalog))
	if err != nil {
		return nil, fmt.Errorf("demo catalog: %w", err)
	}
	return NewCatalogRepository(products...)
}

// LoadCatalog seeds from a JSON file, or the demo catalog when path is empty.
func LoadCatalog(path string) (*CatalogRepository, error) {
	if path == "" {
		return NewDemoCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	products, err := DecodeCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return NewCatalogRepository(products...)
}

type catalogRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Genre       string          `json:"genre"`
	Platform    string          `json:"platform"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
}

// DecodeCatalog parses a JSON array of products. Category tags are untrusted and
// fail with product.ErrUnknownCategory.
func DecodeCatalog(r io.Reader) ([]*product.Product, error) {
	var records []catalogRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	out := make([]*product.Product, 0, len(records))
	for i, rec := range records {
		c, err := product.ParseCategory(rec.Category)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, rec.ID, err)
		}
		p, err := product.New(product.Attributes{
			ID:          rec.ID,
			Name:        rec.Name,
			Genre:       rec.Genre,
			Platform:    rec.Platform,
			Description: rec.Description,
			Category:    c,
		}, rec.Price, rec.Stock)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, rec.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *CatalogRepository) Add(p *product.Product) error {
	if p == nil || p.ID == "" {
		return product.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[p.ID]; exists {
		return fmt.Errorf("catalog: duplicate product id %q", p.ID)
	}
	r.products[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*product.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*product.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id])
	}
	return out, nil
}

func (r *CatalogRepository) ListByCategory(ctx context.Context, c product.Category) ([]*product.Product, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*product.Product, 0, len(all))
	for _, p := range all {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByID matches ids case-insensitively.
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", product.ErrNotFound, id)
	}
	return p, nil
}
