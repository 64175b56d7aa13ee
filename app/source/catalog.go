package source

import (
	"fmt"
	"sort"
)

// Catalog is the immutable, id-ordered table of configured sources.
type Catalog struct {
	ids     []string
	sources map[string]*Source
}

// NewCatalog builds a catalog; duplicate ids are rejected.
func NewCatalog(sources ...*Source) (*Catalog, error) {
	c := &Catalog{sources: make(map[string]*Source, len(sources))}
	for _, s := range sources {
		if _, exists := c.sources[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id '%s'", s.ID)
		}
		c.sources[s.ID] = s
		c.ids = append(c.ids, s.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Get returns a copy of the source with the given id.
func (c *Catalog) Get(id string) (Source, bool) {
	s, ok := c.sources[id]
	if !ok {
		return Source{}, false
	}
	return *s, true
}

// IDs returns all source ids in order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

func (c *Catalog) Summaries() []Summary {
	summaries := make([]Summary, 0, len(c.ids))
	for _, id := range c.ids {
		summaries = append(summaries, c.sources[id].Summary())
	}
	return summaries
}

// Enabled returns copies of the enabled sources in order.
func (c *Catalog) Enabled() []Source {
	var enabled []Source
	for _, id := range c.ids {
		if s := c.sources[id]; s.Enabled {
			enabled = append(enabled, *s)
		}
	}
	return enabled
}

func (c *Catalog) Len() int {
	return len(c.ids)
}
