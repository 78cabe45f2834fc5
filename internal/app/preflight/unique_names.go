package preflight

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// UniqueNamesCheck rejects empty or duplicate pack names and warns when fewer
// than two packs are configured.
type UniqueNamesCheck struct{}

func (c *UniqueNamesCheck) Name() string {
	return "unique_names"
}

func (c *UniqueNamesCheck) Description() string {
	return "Checks that pack names are present and unique"
}

func (c *UniqueNamesCheck) Run(_ context.Context, packs []pack.Pack, _ fs.FS) []Finding {
	var findings []Finding

	if len(packs) == 0 {
		return append(findings, Finding{
			Check:    c.Name(),
			Severity: SeverityError,
			Message:  "no packs configured",
		})
	}
	if len(packs) == 1 {
		findings = append(findings, Finding{
			Check:    c.Name(),
			Severity: SeverityWarning,
			Message:  "only one pack configured: it will follow itself",
		})
	}

	seen := make(map[string]int, len(packs))
	for i, p := range packs {
		if p.Name == "" {
			findings = append(findings, Finding{
				Check:    c.Name(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("pack #%d has no name", i),
			})
			continue
		}
		if first, ok := seen[p.Name]; ok {
			findings = append(findings, Finding{
				Check:    c.Name(),
				Pack:     p.Name,
				Severity: SeverityError,
				Message:  fmt.Sprintf("duplicate of pack #%d", first),
			})
			continue
		}
		seen[p.Name] = i
	}
	return findings
}

func init() {
	Register("unique_names", func() Check { return &UniqueNamesCheck{} })
}
