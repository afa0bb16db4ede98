package types

import "time"

// ModuleDescriptor is the display metadata of a module: everything the shell
// needs to draw a tile and open a tab, nothing about how it is implemented.
type ModuleDescriptor struct {
	Key          string   `json:"key" yaml:"key" toml:"key"`
	Title        string   `json:"title" yaml:"title" toml:"title"`
	Icon         string   `json:"icon" yaml:"icon" toml:"icon"`
	Category     string   `json:"category" yaml:"category" toml:"category"`
	Order        int      `json:"order" yaml:"order" toml:"order"`
	Description  string   `json:"description,omitempty" yaml:"description" toml:"description"`
	Endpoint     string   `json:"endpoint,omitempty" yaml:"endpoint" toml:"endpoint"`
	Fields       []string `json:"fields,omitempty" yaml:"fields" toml:"fields"`
	RequiredRole string   `json:"requiredRole,omitempty" yaml:"requiredRole" toml:"requiredRole"`
	Tags         []string `json:"tags,omitempty" yaml:"tags" toml:"tags"`
}

// Module is a node of the backend's module tree (GET /modules, /modules/tree).
type Module struct {
	ID          string    `json:"id"`
	Code        string    `json:"code" validate:"required,max=64"`
	Name        string    `json:"name" validate:"required,max=128"`
	Icon        string    `json:"icon,omitempty"`
	Route       string    `json:"route,omitempty"`
	ParentID    *string   `json:"parentId,omitempty"`
	Order       int       `json:"order"`
	Active      bool      `json:"active"`
	Children    []Module  `json:"children,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	Description string    `json:"description,omitempty"`
}

// App is an entry of the backend apps registry (GET /apps).
type App struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Category    string `json:"category,omitempty"`
	Version     string `json:"version,omitempty"`
	Active      bool   `json:"active"`
	Order       int    `json:"order"`
}

// AppRoute is one route exposed by an app (GET /apps/{code}/routes).
type AppRoute struct {
	Path      string `json:"path"`
	Component string `json:"component"`
	Title     string `json:"title,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// Descriptor converts a backend app into display metadata.
func (a App) Descriptor() ModuleDescriptor {
	return ModuleDescriptor{
		Key:         a.Code,
		Title:       a.Name,
		Icon:        a.Icon,
		Category:    a.Category,
		Order:       a.Order,
		Description: a.Description,
	}
}
