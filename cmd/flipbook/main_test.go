package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/flipbook/internal/infra/config"
)

func TestCheck(t *testing.T) {
	cfg, err := config.Parse([]byte(`
packs:
  - name: star
    in:    {dir: in/,    prefix: in_,    pad: 2, count: 120}
    inter: {dir: inter/, prefix: inter_, pad: 4, count: 20}
    out:   {dir: out/,   prefix: out_,   pad: 4, count: 20}
loader:
  type: synthetic
`))
	require.NoError(t, err)

	tests := []struct {
		name   string
		checks []string
		want   bool
	}{
		{name: "all checks, warnings only", checks: nil, want: true},
		{name: "selected checks", checks: []string{"pad_width", "unique_names"}, want: true},
		{name: "unknown check", checks: []string{"nope"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, check(context.Background(), cfg, tt.checks))
		})
	}
}
