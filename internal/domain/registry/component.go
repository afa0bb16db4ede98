package registry

import (
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// Source records where a component came from.
type Source string

const (
	SourceManifest    Source = "manifest"
	SourceBackend     Source = "backend"
	SourcePlaceholder Source = "placeholder"
)

// Component is the renderable unit a tab mounts: display metadata plus the
// routes the module exposes. A placeholder is still a valid Component.
type Component struct {
	Key        string                 `json:"key"`
	Descriptor types.ModuleDescriptor `json:"descriptor"`
	Routes     []types.AppRoute       `json:"routes,omitempty"`
	Source     Source                 `json:"source"`
	// Reason explains why a placeholder was substituted.
	Reason string `json:"reason,omitempty"`
}

// Placeholder reports whether this is the "module not found" stand-in.
func (c Component) Placeholder() bool {
	return c.Source == SourcePlaceholder
}

// NotFound builds the standard placeholder for key.
func NotFound(key, reason string) Component {
	return Component{
		Key: key,
		Descriptor: types.ModuleDescriptor{
			Key:         key,
			Title:       "Module not found",
			Icon:        "AlertTriangle",
			Description: "The module \"" + key + "\" could not be loaded.",
		},
		Source: SourcePlaceholder,
		Reason: reason,
	}
}
