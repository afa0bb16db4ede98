// Package id generates identifiers for tabs, API requests and shell clients.
//
// Every generated identifier embeds a ULID, so ids created later sort after
// ids created earlier. Tab ids additionally carry the component key they were
// opened for, which keeps logs and persisted snapshots readable:
//
//	materials-01HZX3J8Y8Q0S2W6D1C9TQK4M7
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TabID identifies an open tab.
type TabID string

// RequestID correlates one call to the ERP backend across logs.
type RequestID string

// ConnID identifies a live-update websocket client.
type ConnID string

// HomeTabID is the fixed id of the permanent Home tab.
const HomeTabID TabID = "home"

const (
	RequestPrefix = "req"
	ConnPrefix    = "conn"
)

// Generator produces monotonic ULIDs. Two ids generated within the same
// millisecond still sort in generation order.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(entropy, 0)}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates "<prefix>_<ulid>".
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewTabID creates "<componentKey>-<ulid>". The key may itself contain
// dashes (material-groups); the ULID is always the last 26 characters.
func NewTabID(componentKey string) TabID {
	return TabID(componentKey + "-" + Default().GenerateString())
}

// NewRequestID creates a prefixed request id.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewConnID creates a prefixed websocket connection id.
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(ConnPrefix))
}

func (id TabID) String() string     { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id ConnID) String() string    { return string(id) }

// IsHome reports whether id is the permanent Home tab.
func (id TabID) IsHome() bool { return id == HomeTabID }

// ComponentKey returns the component key a tab id was generated for, or ""
// when id does not have the "<key>-<ulid>" shape.
func (id TabID) ComponentKey() string {
	if id.IsHome() {
		return string(HomeTabID)
	}
	s := string(id)
	if len(s) < ulid.EncodedSize+2 || s[len(s)-ulid.EncodedSize-1] != '-' {
		return ""
	}
	if !IsValid(s[len(s)-ulid.EncodedSize:]) {
		return ""
	}
	return s[:len(s)-ulid.EncodedSize-1]
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.ParseStrict(id)
}

// Timestamp extracts the creation time from a ULID or from any id that ends
// with one (tab ids, prefixed ids).
func Timestamp(id string) (time.Time, error) {
	if len(id) > ulid.EncodedSize {
		id = id[len(id)-ulid.EncodedSize:]
	}
	parsed, err := Parse(strings.ToUpper(id))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
