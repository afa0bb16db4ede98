package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when a namespace has never been written.
var ErrNotFound = errors.New("storage: namespace not found")

var namespacePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store is durable client-side storage keyed by namespace. Each namespace
// holds one opaque snapshot and is owned by exactly one state container.
type Store interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, data []byte) error
	Delete(ctx context.Context, namespace string) error
	Close() error
}

// ValidateNamespace rejects namespaces that are unsafe as file names or keys.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("storage: namespace is required")
	}
	if len(namespace) > 128 || !namespacePattern.MatchString(namespace) {
		return fmt.Errorf("storage: invalid namespace %q", namespace)
	}
	return nil
}
