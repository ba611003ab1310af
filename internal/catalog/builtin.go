package catalog

import (
	"fmt"

	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
)

// Default returns the built-in component catalog for a profile.
//
// replacement-strict is meant for drop-in replacement of an obsolete part on an
// existing board; design-phase-loose widens tolerances for picking alternates
// while a design can still change.
func Default(profile metadata.Profile) (*metadata.Registry, error) {
	var defs []Definition
	switch profile {
	case metadata.ProfileReplacementStrict, "":
		profile = metadata.ProfileReplacementStrict
		defs = strictDefinitions()
	case metadata.ProfileDesignPhaseLoose:
		defs = looseDefinitions()
	default:
		return nil, fmt.Errorf("no built-in catalog for profile %q", profile)
	}

	entries := make([]*metadata.TypeMetadata, 0, len(defs))
	for _, def := range defs {
		def.DefaultProfile = string(profile)
		md, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("built-in catalog: %w", err)
		}
		entries = append(entries, md)
	}
	return metadata.NewRegistry(profile, entries...), nil
}

func exact() RuleDefinition { return RuleDefinition{Type: RuleExact} }

func minimum() RuleDefinition { return RuleDefinition{Type: RuleMinimum} }

func percentage(t float64) RuleDefinition {
	return RuleDefinition{Type: RulePercentage, Tolerance: t}
}

func maximum(limit float64) RuleDefinition {
	return RuleDefinition{Type: RuleMaximum, Limit: limit}
}

func between(lo, hi float64) RuleDefinition {
	return RuleDefinition{Type: RuleRange, Min: lo, Max: hi}
}

func attribute(name, importance string, rule RuleDefinition) AttributeDefinition {
	return AttributeDefinition{Name: name, Importance: importance, Rule: rule}
}

func strictDefinitions() []Definition {
	return []Definition{
		{
			ComponentType: "resistor",
			Attributes: []AttributeDefinition{
				attribute("resistance", "critical", percentage(0.01)),
				attribute("tolerance", "high", maximum(1)),
				attribute("power_rating", "high", minimum()),
				attribute("package", "medium", exact()),
				attribute("temperature_coefficient", "low", maximum(1)),
			},
		},
		{
			ComponentType: "capacitor",
			Attributes: []AttributeDefinition{
				attribute("capacitance", "critical", percentage(0.05)),
				attribute("voltage_rating", "critical", minimum()),
				attribute("dielectric", "critical", exact()),
				attribute("tolerance", "high", maximum(1)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "inductor",
			Attributes: []AttributeDefinition{
				attribute("inductance", "critical", percentage(0.05)),
				attribute("current_rating", "high", minimum()),
				attribute("dc_resistance", "medium", maximum(1.1)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "diode",
			Attributes: []AttributeDefinition{
				attribute("type", "critical", exact()),
				attribute("reverse_voltage", "critical", minimum()),
				attribute("forward_current", "high", minimum()),
				attribute("forward_voltage", "medium", maximum(1.1)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "mosfet",
			Attributes: []AttributeDefinition{
				attribute("channel", "critical", exact()),
				attribute("vds_max", "critical", minimum()),
				attribute("id_max", "high", minimum()),
				attribute("rds_on", "high", maximum(1.2)),
				attribute("vgs_threshold", "medium", between(0.8, 1.2)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "bjt",
			Attributes: []AttributeDefinition{
				attribute("polarity", "critical", exact()),
				attribute("vceo_max", "critical", minimum()),
				attribute("ic_max", "high", minimum()),
				attribute("hfe", "medium", between(0.5, 2)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "led",
			Attributes: []AttributeDefinition{
				attribute("color", "critical", exact()),
				attribute("forward_voltage", "high", between(0.9, 1.1)),
				attribute("luminous_intensity", "medium", between(0.8, 1.5)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "crystal",
			Attributes: []AttributeDefinition{
				attribute("frequency", "critical", exact()),
				attribute("load_capacitance", "high", exact()),
				attribute("frequency_tolerance", "high", maximum(1)),
				attribute("package", "medium", exact()),
			},
		},
		{
			ComponentType: "voltage_regulator",
			Attributes: []AttributeDefinition{
				attribute("output_voltage", "critical", percentage(0.01)),
				attribute("topology", "critical", exact()),
				attribute("output_current", "high", minimum()),
				attribute("input_voltage_max", "high", minimum()),
				attribute("dropout_voltage", "medium", maximum(1.2)),
				attribute("package", "medium", exact()),
			},
		},
	}
}

// looseDefinitions relaxes the strict catalog: packages drop to low importance
// and value tolerances widen.
func looseDefinitions() []Definition {
	return []Definition{
		{
			ComponentType: "resistor",
			Attributes: []AttributeDefinition{
				attribute("resistance", "critical", percentage(0.05)),
				attribute("tolerance", "medium", maximum(5)),
				attribute("power_rating", "high", minimum()),
				attribute("package", "low", exact()),
				attribute("temperature_coefficient", "low", maximum(2)),
			},
		},
		{
			ComponentType: "capacitor",
			Attributes: []AttributeDefinition{
				attribute("capacitance", "critical", percentage(0.1)),
				attribute("voltage_rating", "critical", minimum()),
				attribute("dielectric", "high", exact()),
				attribute("tolerance", "medium", maximum(2)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "inductor",
			Attributes: []AttributeDefinition{
				attribute("inductance", "critical", percentage(0.1)),
				attribute("current_rating", "high", minimum()),
				attribute("dc_resistance", "medium", maximum(1.5)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "diode",
			Attributes: []AttributeDefinition{
				attribute("type", "critical", exact()),
				attribute("reverse_voltage", "critical", minimum()),
				attribute("forward_current", "high", minimum()),
				attribute("forward_voltage", "low", maximum(1.3)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "mosfet",
			Attributes: []AttributeDefinition{
				attribute("channel", "critical", exact()),
				attribute("vds_max", "critical", minimum()),
				attribute("id_max", "high", minimum()),
				attribute("rds_on", "medium", maximum(1.5)),
				attribute("vgs_threshold", "medium", between(0.6, 1.4)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "bjt",
			Attributes: []AttributeDefinition{
				attribute("polarity", "critical", exact()),
				attribute("vceo_max", "critical", minimum()),
				attribute("ic_max", "high", minimum()),
				attribute("hfe", "low", between(0.25, 4)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "led",
			Attributes: []AttributeDefinition{
				attribute("color", "critical", exact()),
				attribute("forward_voltage", "medium", between(0.8, 1.2)),
				attribute("luminous_intensity", "low", between(0.5, 2)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "crystal",
			Attributes: []AttributeDefinition{
				attribute("frequency", "critical", exact()),
				attribute("load_capacitance", "medium", between(0.8, 1.2)),
				attribute("frequency_tolerance", "medium", maximum(2)),
				attribute("package", "low", exact()),
			},
		},
		{
			ComponentType: "voltage_regulator",
			Attributes: []AttributeDefinition{
				attribute("output_voltage", "critical", percentage(0.02)),
				attribute("topology", "high", exact()),
				attribute("output_current", "high", minimum()),
				attribute("input_voltage_max", "high", minimum()),
				attribute("dropout_voltage", "low", maximum(1.5)),
				attribute("package", "low", exact()),
			},
		},
	}
}
