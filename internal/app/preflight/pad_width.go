package preflight

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// PadWidthCheck verifies segment sizes against their zero-padding width.
// A count that needs more digits than the pad width produces file names of
// uneven length, which usually means the pad width is wrong.
type PadWidthCheck struct{}

func (c *PadWidthCheck) Name() string {
	return "pad_width"
}

func (c *PadWidthCheck) Description() string {
	return "Checks that frame counts are positive and fit the zero-padding width"
}

func (c *PadWidthCheck) Run(_ context.Context, packs []pack.Pack, _ fs.FS) []Finding {
	var findings []Finding
	for _, p := range packs {
		for _, seg := range pack.Segments {
			spec := p.Spec(seg)
			switch {
			case spec.Count < 1:
				findings = append(findings, Finding{
					Check:    c.Name(),
					Pack:     p.Name,
					Severity: SeverityError,
					Message:  fmt.Sprintf("%s: frame count must be at least 1, got %d", seg, spec.Count),
				})
			case spec.Pad < 0:
				findings = append(findings, Finding{
					Check:    c.Name(),
					Pack:     p.Name,
					Severity: SeverityError,
					Message:  fmt.Sprintf("%s: pad width must not be negative, got %d", seg, spec.Pad),
				})
			case digits(spec.Count) > spec.Pad && spec.Pad > 0:
				findings = append(findings, Finding{
					Check:    c.Name(),
					Pack:     p.Name,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s: %d frames need %d digits but pad is %d", seg, spec.Count, digits(spec.Count), spec.Pad),
				})
			}
		}
	}
	return findings
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

func init() {
	Register("pad_width", func() Check { return &PadWidthCheck{} })
}
