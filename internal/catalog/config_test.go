package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
profile: design-phase-loose
types:
  - component_type: fuse
    acceptance_threshold: 0.8
    attributes:
      - name: current_rating
        importance: critical
        rule: {type: range, min: 1, max: 1.25}
      - name: voltage_rating
        importance: high
        rule: {type: minimum, threshold: 0.9}
      - name: speed
        importance: medium
        rule: {type: exact}
  - component_type: resistor
    attributes:
      - name: resistance
        importance: critical
        rule: {type: percentage, tolerance: 0.02}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultCatalogs(t *testing.T) {
	for _, profile := range metadata.Profiles {
		t.Run(string(profile), func(t *testing.T) {
			reg, err := Default(profile)
			require.NoError(t, err)
			assert.Equal(t, profile, reg.Profile())
			assert.GreaterOrEqual(t, reg.Len(), 9)

			for _, ct := range reg.ComponentTypes() {
				md, err := reg.Lookup(ct)
				require.NoError(t, err)
				assert.NotEmpty(t, md.Attributes(), ct)
				assert.NotEmpty(t, md.CriticalAttributes(), "%s should declare a critical attribute", ct)
				assert.Equal(t, profile, md.DefaultProfile())
			}
		})
	}

	_, err := Default("nonsense")
	assert.Error(t, err)
}

func TestDefaultProfilesDiffer(t *testing.T) {
	strict, err := Default(metadata.ProfileReplacementStrict)
	require.NoError(t, err)
	loose, err := Default(metadata.ProfileDesignPhaseLoose)
	require.NoError(t, err)

	original := attr.Set{
		"resistance": attr.Number(10000, "ohm"),
		"tolerance":  attr.Number(1, "%"),
		"package":    attr.Text("0603", ""),
	}
	candidate := attr.Set{
		"resistance": attr.Number(10300, "ohm"),
		"tolerance":  attr.Number(1, "%"),
		"package":    attr.Text("0603", ""),
	}

	strictMD, _ := strict.Lookup("resistor")
	looseMD, _ := loose.Lookup("resistor")

	assert.Equal(t, 0.0, scoring.Score(original, candidate, strictMD), "3 percent off vetoes under the 1 percent strict tolerance")
	assert.Greater(t, scoring.Score(original, candidate, looseMD), 0.0)
}

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	assert.Equal(t, metadata.ProfileDesignPhaseLoose, reg.Profile())
	assert.Equal(t, []string{"fuse", "resistor"}, reg.ComponentTypes())

	fuse, err := reg.Lookup("fuse")
	require.NoError(t, err)
	assert.Equal(t, 0.8, fuse.AcceptanceThreshold())
	assert.Equal(t, metadata.ProfileDesignPhaseLoose, fuse.DefaultProfile())
	assert.Equal(t, []string{"current_rating", "voltage_rating", "speed"}, fuse.Attributes())
	assert.True(t, fuse.IsCritical("current_rating"))

	cfg, ok := fuse.Config("current_rating")
	require.True(t, ok)
	assert.Equal(t, "range(x1..x1.25)", cfg.Rule.Name())

	vr, _ := fuse.Config("voltage_rating")
	assert.Equal(t, 0.9, tolerance.Threshold(vr.Rule))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "no attributes",
			yaml:    "types:\n  - component_type: empty\n    attributes: []\n",
			wantErr: metadata.ErrNoAttributes,
		},
		{
			name: "inverted range",
			yaml: `types:
  - component_type: fuse
    attributes:
      - name: current_rating
        importance: critical
        rule: {type: range, min: 1.2, max: 0.8}
`,
			wantErr: tolerance.ErrInvalidRange,
		},
		{
			name: "range without bounds",
			yaml: `types:
  - component_type: fuse
    attributes:
      - name: current_rating
        importance: critical
        rule: {type: range}
`,
			wantErr: tolerance.ErrInvalidRange,
		},
		{
			name: "range without max",
			yaml: `types:
  - component_type: fuse
    attributes:
      - name: current_rating
        importance: critical
        rule: {type: range, min: 0.8}
`,
			wantErr: tolerance.ErrInvalidRange,
		},
		{
			name: "unknown rule",
			yaml: `types:
  - component_type: fuse
    attributes:
      - name: speed
        importance: low
        rule: {type: fuzzy}
`,
			wantErr: ErrUnknownRule,
		},
		{
			name: "negative percentage",
			yaml: `types:
  - component_type: fuse
    attributes:
      - name: current_rating
        importance: low
        rule: {type: percentage, tolerance: -1}
`,
			wantErr: tolerance.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("bad importance", func(t *testing.T) {
		_, err := Parse([]byte("types:\n  - component_type: x\n    attributes:\n      - name: a\n        importance: urgent\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "urgent")
	})

	t.Run("no types", func(t *testing.T) {
		_, err := Parse([]byte("profile: replacement-strict\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("types: [\n"))
		assert.Error(t, err)
	})
}

func TestLoadOverlaysBuiltins(t *testing.T) {
	path := writeFile(t, validYAML)

	reg, err := Load(metadata.ProfileReplacementStrict, path)
	require.NoError(t, err)

	_, err = reg.Lookup("fuse")
	require.NoError(t, err)

	_, err = reg.Lookup("mosfet")
	require.NoError(t, err, "built-in types remain available")

	res, err := reg.Lookup("resistor")
	require.NoError(t, err)
	cfg, _ := res.Config("resistance")
	assert.Equal(t, "percentage(2%)", cfg.Rule.Name(), "file definitions override built-ins")
}

func TestLoadWithoutFile(t *testing.T) {
	reg, err := Load(metadata.ProfileReplacementStrict, "")
	require.NoError(t, err)
	assert.Equal(t, metadata.ProfileReplacementStrict, reg.Profile())

	_, err = Load(metadata.ProfileReplacementStrict, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
