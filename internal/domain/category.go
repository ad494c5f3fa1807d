package domain

import "fmt"

type Category struct {
	Label string `json:"fullName" yaml:"label" validate:"required"`
	Short string `json:"name" yaml:"short" validate:"required"`
	Color string `json:"color" yaml:"color" validate:"required,hexcolor"`
	Flag  string `json:"flag" yaml:"flag"`
}

// Catalog is the ordered table of known opportunity categories. It is
// read-only once built and safe to share between goroutines.
type Catalog struct {
	cats  []Category
	index map[string]int
}

func NewCatalog(cats []Category) (*Catalog, error) {
	c := &Catalog{
		cats:  make([]Category, 0, len(cats)),
		index: make(map[string]int, len(cats)),
	}
	for i, cat := range cats {
		if cat.Label == "" {
			return nil, fmt.Errorf("category %d has an empty label", i)
		}
		if _, dup := c.index[cat.Label]; dup {
			return nil, fmt.Errorf("duplicate category label %q", cat.Label)
		}
		if cat.Short == "" {
			cat.Short = cat.Label
		}
		c.index[cat.Label] = len(c.cats)
		c.cats = append(c.cats, cat)
	}
	return c, nil
}

func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.cats))
	copy(out, c.cats)
	return out
}

func (c *Catalog) Len() int { return len(c.cats) }

func (c *Catalog) Known(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Index returns the configuration position of label, or -1.
func (c *Catalog) Index(label string) int {
	if i, ok := c.index[label]; ok {
		return i
	}
	return -1
}

func (c *Catalog) Lookup(label string) (Category, bool) {
	i, ok := c.index[label]
	if !ok {
		return Category{}, false
	}
	return c.cats[i], true
}

// DefaultCategories is the 2025 opportunity table.
func DefaultCategories() []Category {
	return []Category{
		{Label: "Viva Tech Paris (June)", Short: "Viva Tech Paris", Color: "#FF6B6B", Flag: "🇫🇷"},
		{Label: "Smart City World Expo Barcelona (November)", Short: "Smart City Barcelona", Color: "#4ECDC4", Flag: "🇪🇸"},
		{Label: "Slush Helsinki (November)", Short: "Slush Helsinki", Color: "#45B7D1", Flag: "🇫🇮"},
		{Label: "Hannover Messe (April)", Short: "Hannover Messe", Color: "#96CEB4", Flag: "🇩🇪"},
		{Label: "Drone Summit Riga (May)", Short: "Drone Summit Riga", Color: "#F9CA24", Flag: "🇱🇻"},
		{Label: "Upstream Festival Rotterdam (May)", Short: "Upstream Rotterdam", Color: "#A29BFE", Flag: "🇳🇱"},
		{Label: "Possidonia Athens (June)", Short: "Possidonia Athens", Color: "#00B894", Flag: "🇬🇷"},
		{Label: "FIT Ports & Trade Mission Malaysia (September)", Short: "FIT Malaysia", Color: "#E17055", Flag: "🇲🇾"},
	}
}
