package billing

import (
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/enhancv/go-subscriptions/pkg/customer"
)

// Catalog is the set of purchasable plans, loaded once at startup and
// passed by reference.
type Catalog struct {
	plans map[string]customer.Plan
}

// catalogFile is the YAML shape of the plan catalog. Prices are strings so
// they survive the trip into decimals without float rounding.
type catalogFile struct {
	Plans []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Level int    `yaml:"level"`
		Price string `yaml:"price"`
	} `yaml:"plans"`
}

// LoadCatalog reads a plan catalog from a YAML file.
//
// Example file:
//
//	plans:
//	  - id: basic
//	    name: Basic
//	    level: 1
//	    price: "9.99"
//	  - id: pro
//	    name: Pro
//	    level: 2
//	    price: "19.99"
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from YAML bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}

	catalog := &Catalog{plans: make(map[string]customer.Plan, len(file.Plans))}
	for _, p := range file.Plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan catalog entry without id")
		}
		if _, exists := catalog.plans[p.ID]; exists {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price for plan %q: %w", p.ID, err)
		}
		catalog.plans[p.ID] = customer.Plan{
			ID:    p.ID,
			Name:  p.Name,
			Level: p.Level,
			Price: price,
		}
	}
	return catalog, nil
}

// NewCatalog builds a catalog from already-constructed plans. Used by
// tests and by callers managing plans outside the YAML file.
func NewCatalog(plans ...customer.Plan) *Catalog {
	catalog := &Catalog{plans: make(map[string]customer.Plan, len(plans))}
	for _, p := range plans {
		catalog.plans[p.ID] = p
	}
	return catalog
}

// Plan looks up a plan by id.
func (c *Catalog) Plan(id string) (customer.Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// Plans returns every plan ordered by level ascending, id ascending on
// ties.
func (c *Catalog) Plans() []customer.Plan {
	plans := make([]customer.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].Level != plans[j].Level {
			return plans[i].Level < plans[j].Level
		}
		return plans[i].ID < plans[j].ID
	})
	return plans
}
