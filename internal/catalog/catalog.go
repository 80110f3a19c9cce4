// Package catalog holds the immutable menu: categories, items and their
// purchasable variants. It is built once at startup and passed by reference
// to every component that needs prices or names.
package catalog

import (
	_ "embed"
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/imrishuroy/go-chat-orderflow/internal/i18n"
)

//go:embed menu.yaml
var embeddedMenu []byte

// Category groups items on the menu. A contact-only category has no
// orderable items; selecting it shows contact details instead.
type Category struct {
	ID          string         `yaml:"id" validate:"required"`
	Name        i18n.Localized `yaml:"name"`
	ContactOnly bool           `yaml:"contact_only"`
}

// Item is a menu position with one or more variants.
type Item struct {
	ID          string         `yaml:"id" validate:"required"`
	CategoryID  string         `yaml:"category" validate:"required"`
	Name        i18n.Localized `yaml:"name"`
	Description i18n.Localized `yaml:"description" validate:"-"`
	Note        i18n.Localized `yaml:"note" validate:"-"`
	Variants    []Variant      `yaml:"variants" validate:"required,min=1,dive"`
}

// Variant is a purchasable option of an item. Price is in whole tenge.
type Variant struct {
	ID     string         `yaml:"id" validate:"required"`
	Label  i18n.Localized `yaml:"label"`
	Price  int64          `yaml:"price" validate:"gt=0"`
	ItemID string         `yaml:"-"`
}

type menuFile struct {
	Categories []Category `yaml:"categories" validate:"required,min=1,dive"`
	Items      []Item     `yaml:"items" validate:"required,min=1,dive"`
}

// Catalog is read-only after construction.
type Catalog struct {
	categories []Category
	byCategory map[string][]Item
	items      map[string]Item
	variants   map[string]Variant
}

// Load builds the catalog from the embedded menu.
func Load() (*Catalog, error) {
	return Parse(embeddedMenu)
}

// Parse builds a catalog from YAML menu data.
func Parse(data []byte) (*Catalog, error) {
	var file menuFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if err := validatorv10.New().Struct(file); err != nil {
		return nil, fmt.Errorf("validate menu: %w", err)
	}
	return build(file.Categories, file.Items)
}

// New builds a catalog from already decoded data. It applies the same
// integrity checks as Parse.
func New(categories []Category, items []Item) (*Catalog, error) {
	if err := validatorv10.New().Struct(menuFile{Categories: categories, Items: items}); err != nil {
		return nil, fmt.Errorf("validate menu: %w", err)
	}
	return build(categories, items)
}

func build(categories []Category, items []Item) (*Catalog, error) {
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		byCategory: map[string][]Item{},
		items:      map[string]Item{},
		variants:   map[string]Variant{},
	}
	known := map[string]bool{}
	contactOnly := 0
	for _, cat := range categories {
		if known[cat.ID] {
			return nil, fmt.Errorf("duplicate category %q", cat.ID)
		}
		known[cat.ID] = true
		if cat.ContactOnly {
			contactOnly++
		}
		c.categories = append(c.categories, cat)
	}
	if contactOnly > 1 {
		return nil, fmt.Errorf("at most one contact-only category is allowed, got %d", contactOnly)
	}

	for _, it := range items {
		if !known[it.CategoryID] {
			return nil, fmt.Errorf("item %q: unknown category %q", it.ID, it.CategoryID)
		}
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.ID)
		}
		variants := make([]Variant, 0, len(it.Variants))
		for _, v := range it.Variants {
			if _, dup := c.variants[v.ID]; dup {
				return nil, fmt.Errorf("duplicate variant %q", v.ID)
			}
			v.ItemID = it.ID
			c.variants[v.ID] = v
			variants = append(variants, v)
		}
		it.Variants = variants
		c.items[it.ID] = it
		c.byCategory[it.CategoryID] = append(c.byCategory[it.CategoryID], it)
	}
	return c, nil
}

// Categories returns categories in menu order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Items returns the items of a category in menu order.
func (c *Catalog) Items(categoryID string) []Item {
	src := c.byCategory[categoryID]
	out := make([]Item, len(src))
	for i, it := range src {
		out[i] = it.clone()
	}
	return out
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (Item, bool) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, false
	}
	return it.clone(), true
}

// Variant looks up a variant and its parent item.
func (c *Catalog) Variant(id string) (Variant, Item, bool) {
	v, ok := c.variants[id]
	if !ok {
		return Variant{}, Item{}, false
	}
	return v, c.items[v.ItemID].clone(), true
}

// PriceRange returns the lowest and highest variant price of an item.
func (it Item) PriceRange() (min, max int64) {
	for i, v := range it.Variants {
		if i == 0 || v.Price < min {
			min = v.Price
		}
		if v.Price > max {
			max = v.Price
		}
	}
	return min, max
}

func (it Item) clone() Item {
	variants := make([]Variant, len(it.Variants))
	copy(variants, it.Variants)
	it.Variants = variants
	return it
}
