package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shared/utils"
)

// Catalog maps component keys to display metadata. It is the build-time or
// runtime manifest that makes unknown keys a checked condition.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]types.ModuleDescriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]types.ModuleDescriptor)}
}

// Register adds or replaces a descriptor.
func (c *Catalog) Register(d types.ModuleDescriptor) error {
	if err := utils.ValidateComponentKey(d.Key); err != nil {
		return err
	}
	if d.Title == "" {
		d.Title = d.Key
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[d.Key] = d
	return nil
}

// Get returns the descriptor for key.
func (c *Catalog) Get(key string) (types.ModuleDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.items[key]
	return d, ok
}

// Len returns the number of registered modules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// List returns descriptors ordered by category, then order, then title.
func (c *Catalog) List() []types.ModuleDescriptor {
	c.mu.RLock()
	out := make([]types.ModuleDescriptor, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Search returns descriptors whose key, title, category or tags contain q
// (case-insensitive). An empty query returns everything.
func (c *Catalog) Search(q string) []types.ModuleDescriptor {
	all := c.List()
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all
	}

	out := all[:0]
	for _, d := range all {
		if matches(d, q) {
			out = append(out, d)
		}
	}
	return out
}

func matches(d types.ModuleDescriptor, q string) bool {
	if strings.Contains(strings.ToLower(d.Key), q) ||
		strings.Contains(strings.ToLower(d.Title), q) ||
		strings.Contains(strings.ToLower(d.Category), q) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
