package preflight

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// FrameFilesCheck verifies that every frame file exists.
// Missing frames do not stop playback, but a missing frame in a segment keeps
// that segment from ever becoming ready.
type FrameFilesCheck struct{}

func (c *FrameFilesCheck) Name() string {
	return "frame_files"
}

func (c *FrameFilesCheck) Description() string {
	return "Checks that every frame file of every segment exists"
}

func (c *FrameFilesCheck) Run(ctx context.Context, packs []pack.Pack, fsys fs.FS) []Finding {
	if fsys == nil {
		return []Finding{{
			Check:    c.Name(),
			Severity: SeverityWarning,
			Message:  "no filesystem available, skipped",
		}}
	}

	var findings []Finding
	for _, p := range packs {
		for _, seg := range pack.Segments {
			if ctx.Err() != nil {
				return findings
			}

			missing := 0
			first := ""
			for _, path := range p.FramePaths(seg) {
				info, err := fs.Stat(fsys, path)
				if err == nil && !info.IsDir() {
					continue
				}
				if missing == 0 {
					first = path
				}
				missing++
			}
			if missing == 0 {
				continue
			}

			findings = append(findings, Finding{
				Check:    c.Name(),
				Pack:     p.Name,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s: %d of %d frames missing (first: %s)", seg, missing, p.Spec(seg).Count, first),
			})
		}
	}
	return findings
}

func init() {
	Register("frame_files", func() Check { return &FrameFilesCheck{} })
}
