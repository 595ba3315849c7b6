// Package plans loads the subscription plan catalog from a YAML file
// so pricing can change without a rebuild.
package plans

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Plan describes one subscription tier.
type Plan struct {
	Key          string   `yaml:"key" json:"key"`
	Name         string   `yaml:"name" json:"name"`
	PriceCents   int      `yaml:"price_cents" json:"priceCents"`
	Currency     string   `yaml:"currency" json:"currency"`
	BillingCycle string   `yaml:"billing_cycle" json:"billingCycle"`
	Features     []string `yaml:"features" json:"features"`
}

// Catalog is the set of offered plans, keyed by plan key.
type Catalog struct {
	plans map[string]Plan
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plans: reading catalog: %w", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML bytes.
func Parse(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("plans: parsing catalog: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plans: catalog is empty")
	}

	m := make(map[string]Plan, len(f.Plans))
	for _, p := range f.Plans {
		if p.Key == "" {
			return nil, fmt.Errorf("plans: plan %q has no key", p.Name)
		}
		if _, dup := m[p.Key]; dup {
			return nil, fmt.Errorf("plans: duplicate plan key %q", p.Key)
		}
		if p.PriceCents < 0 {
			return nil, fmt.Errorf("plans: plan %q has negative price", p.Key)
		}
		m[p.Key] = p
	}
	return &Catalog{plans: m}, nil
}

// Default is the built-in catalog used when no file is configured.
func Default() *Catalog {
	c, err := Parse([]byte(defaultCatalog))
	if err != nil {
		// The built-in catalog is a compile-time constant; failing to
		// parse it is a programming error.
		panic(err)
	}
	return c
}

// Get returns the plan for a key.
func (c *Catalog) Get(key string) (Plan, bool) {
	p, ok := c.plans[key]
	return p, ok
}

// List returns all plans ordered by price, cheapest first.
func (c *Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents < out[j].PriceCents
		}
		return out[i].Key < out[j].Key
	})
	return out
}

const defaultCatalog = `
plans:
  - key: basic
    name: Basic
    price_cents: 2900
    currency: usd
    billing_cycle: monthly
    features:
      - Restaurant profile page
      - Menu hosting
  - key: premium
    name: Premium
    price_cents: 7900
    currency: usd
    billing_cycle: monthly
    features:
      - Restaurant profile page
      - Menu hosting
      - Email campaigns
      - Review monitoring
  - key: enterprise
    name: Enterprise
    price_cents: 19900
    currency: usd
    billing_cycle: monthly
    features:
      - Everything in Premium
      - Multi-location support
      - Dedicated support
`
