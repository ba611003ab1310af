package metadata

import (
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/partmatch/internal/attr"
	"github.com/lehigh-university-libraries/partmatch/internal/tolerance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWithoutAttributesFails(t *testing.T) {
	m, err := NewBuilder("resistor").Build()
	assert.Nil(t, m)
	require.ErrorIs(t, err, ErrNoAttributes)
	assert.Contains(t, err.Error(), "resistor")
}

func TestLastRegistrationWins(t *testing.T) {
	m, err := NewBuilder("capacitor").
		Add("capacitance", Critical, tolerance.NewExact()).
		Add("voltage_rating", High, tolerance.NewMinimumRequired()).
		Add("capacitance", Low, tolerance.NewMinimumRequired()).
		Build()
	require.NoError(t, err)

	cfg, ok := m.Config("capacitance")
	require.True(t, ok)
	assert.Equal(t, Low, cfg.Importance)
	assert.Equal(t, "minimum", cfg.Rule.Name())
	assert.False(t, m.IsCritical("capacitance"))

	assert.Equal(t, []string{"capacitance", "voltage_rating"}, m.Attributes())
}

func TestIsCritical(t *testing.T) {
	m := NewBuilder("resistor").
		Add("resistance", Critical, tolerance.NewExact()).
		Add("tolerance", High, tolerance.NewExact()).
		Add("package", Medium, tolerance.NewExact()).
		Add("temperature_coefficient", Low, tolerance.NewExact()).
		MustBuild()

	assert.True(t, m.IsCritical("resistance"))
	assert.False(t, m.IsCritical("tolerance"))
	assert.False(t, m.IsCritical("package"))
	assert.False(t, m.IsCritical("temperature_coefficient"))
	assert.False(t, m.IsCritical("not_registered"))
	assert.False(t, m.IsCritical("Resistance"), "attribute names are case-sensitive")

	assert.Equal(t, []string{"resistance"}, m.CriticalAttributes())
}

func TestBuilderDefaults(t *testing.T) {
	m := NewBuilder("diode").Add("forward_voltage", High, tolerance.NewExact()).MustBuild()

	assert.Equal(t, "diode", m.ComponentType())
	assert.Equal(t, ProfileReplacementStrict, m.DefaultProfile())
	assert.Equal(t, tolerance.DefaultAcceptanceThreshold, m.AcceptanceThreshold())
}

func TestBuilderRejectsInvalidRegistrations(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
	}{
		{"empty name", NewBuilder("x").Add("", High, tolerance.NewExact())},
		{"nil rule", NewBuilder("x").Add("a", High, nil)},
		{"bad importance", NewBuilder("x").Add("a", Importance(9), tolerance.NewExact())},
		{"bad threshold", NewBuilder("x").Add("a", High, tolerance.NewExact()).WithAcceptanceThreshold(2)},
		{"empty component type", NewBuilder(" ").Add("a", High, tolerance.NewExact())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestMustBuildPanics(t *testing.T) {
	assert.Panics(t, func() { NewBuilder("empty").MustBuild() })
}

func TestMetadataIsolatedFromBuilder(t *testing.T) {
	b := NewBuilder("led").Add("color", Critical, tolerance.NewExact())
	m := b.MustBuild()

	b.Add("forward_voltage", High, tolerance.NewExact())
	assert.Equal(t, []string{"color"}, m.Attributes())

	attrs := m.Attributes()
	attrs[0] = "mutated"
	assert.Equal(t, []string{"color"}, m.Attributes())
}

func TestConcurrentReads(t *testing.T) {
	m := NewBuilder("resistor").
		Add("resistance", Critical, tolerance.NewExact()).
		MustBuild()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg, _ := m.Config("resistance")
				_ = cfg.Rule.Compare(attr.Number(1, ""), attr.Number(1, ""))
				_ = m.IsCritical("resistance")
			}
		}()
	}
	wg.Wait()
}

func TestImportance(t *testing.T) {
	assert.Greater(t, Critical.Weight(), High.Weight())
	assert.Greater(t, High.Weight(), Medium.Weight())
	assert.Greater(t, Medium.Weight(), Low.Weight())
	assert.Greater(t, Low.Weight(), 0.0)

	for _, s := range []string{"critical", "HIGH", " Medium ", "low"} {
		imp, err := ParseImportance(s)
		require.NoError(t, err)
		assert.True(t, imp.Valid())
	}
	_, err := ParseImportance("urgent")
	assert.Error(t, err)

	text, err := Critical.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "critical", string(text))
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("")
	require.NoError(t, err)
	assert.Equal(t, ProfileReplacementStrict, p)

	p, err = ParseProfile("Design-Phase-Loose")
	require.NoError(t, err)
	assert.Equal(t, ProfileDesignPhaseLoose, p)

	_, err = ParseProfile("whatever")
	assert.Error(t, err)
}
