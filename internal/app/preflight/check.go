// Package preflight provides manifest checks run before playback starts.
package preflight

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// Severity represents how serious a finding is.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Finding is a single problem reported by a check.
type Finding struct {
	Check    string
	Pack     string // Empty for manifest-wide findings
	Severity Severity
	Message  string
}

// String formats the finding for CLI output.
func (f Finding) String() string {
	if f.Pack == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Check, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", f.Severity, f.Check, f.Pack, f.Message)
}

// Check is the interface for manifest checks.
type Check interface {
	// Name returns the check name (used in config and CLI).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Run inspects the manifest. fsys may be nil when no filesystem is available.
	Run(ctx context.Context, packs []pack.Pack, fsys fs.FS) []Finding
}

// registry holds registered check factories.
var registry = make(map[string]func() Check)

// Register registers a check factory.
func Register(name string, factory func() Check) {
	registry[name] = factory
}

// GetRegistered returns all registered check factories.
func GetRegistered() map[string]func() Check {
	return registry
}

// Names returns the registered check names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
