package preflight

import (
	"context"
	"io/fs"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/domain/pack"
)

// Report collects the findings of a chain run.
type Report struct {
	Findings []Finding
}

// Errors returns the number of error findings.
func (r Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// HasErrors returns true if any finding is an error.
func (r Report) HasErrors() bool {
	return r.Errors() > 0
}

// Chain executes checks in sequence.
type Chain struct {
	checks []Check
}

// NewChain creates a new check chain.
func NewChain() *Chain {
	return &Chain{
		checks: make([]Check, 0),
	}
}

// NewDefaultChain creates a chain with every registered check, in name order.
func NewDefaultChain() *Chain {
	c := NewChain()
	for _, name := range Names() {
		c.Add(registry[name]())
	}
	return c
}

// NewChainOf creates a chain of the named registered checks.
func NewChainOf(names ...string) (*Chain, error) {
	c := NewChain()
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown check: %s", name)
		}
		c.Add(factory())
	}
	return c, nil
}

// Add adds a check to the chain.
func (c *Chain) Add(check Check) {
	c.checks = append(c.checks, check)
}

// Execute runs all checks and collects every finding.
// Unlike a request filter chain, it does not stop at the first error.
func (c *Chain) Execute(ctx context.Context, packs []pack.Pack, fsys fs.FS) Report {
	var report Report
	for _, check := range c.checks {
		if ctx.Err() != nil {
			break
		}
		findings := check.Run(ctx, packs, fsys)
		zlog.Debug().Msgf("preflight: check done: name=%s findings=%d", check.Name(), len(findings))
		report.Findings = append(report.Findings, findings...)
	}
	return report
}

// Checks returns all checks in the chain.
func (c *Chain) Checks() []Check {
	return c.checks
}
