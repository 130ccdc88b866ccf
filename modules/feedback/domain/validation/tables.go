package validation

import (
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

// Sector rule tables. Kept declarative so regulation changes are data edits,
// not code changes.

var observationBeforeRepair = TemporalRule{
	Name:    "observation-before-repair",
	Earlier: "plume.observation_timestamp",
	Later:   "repair.repair_timestamp",
}

var sectorRules = map[schemadef.Sector]RuleSet{
	schemadef.SectorLandfill: {
		Sector: schemadef.SectorLandfill,
		Requirements: []RequirementRule{
			{
				Name: "emission-finding-details",
				When: []Condition{
					{Field: "plume.emission_identified_flag_fk", AnyOf: []string{"No leak was detected"}},
				},
				Require: []string{
					"plume.emission_type_fk",
					"plume.emission_location",
					"plume.emission_cause",
				},
			},
			{
				Name: "leak-detected-details",
				When: []Condition{
					{Field: "plume.emission_identified_flag_fk", AnyOf: []string{"Leak was detected"}},
				},
				Require: []string{
					"plume.emission_type_fk",
					"plume.emission_location",
					"plume.emission_cause",
					"repair.repair_timestamp",
				},
			},
			{
				Name: "venting-exclusion-method21",
				When: []Condition{
					{Field: "inspection.venting_exclusion", AnyOf: []string{"Yes"}},
					{Field: "inspection.ogi_result", AnyOf: []string{"Unintentional-leak"}},
				},
				Require: []string{"inspection.method21_performed"},
			},
			{
				Name: "method21-date",
				When: []Condition{
					{Field: "inspection.method21_performed", AnyOf: []string{"Yes"}},
				},
				Require: []string{"inspection.method21_date"},
			},
		},
		Temporal: []TemporalRule{
			observationBeforeRepair,
			{
				Name:    "observation-before-method21",
				Earlier: "plume.observation_timestamp",
				Later:   "inspection.method21_date",
			},
		},
	},
	schemadef.SectorOilAndGas: {
		Sector: schemadef.SectorOilAndGas,
		Requirements: []RequirementRule{
			{
				Name: "emission-finding-details",
				When: []Condition{
					{Field: "plume.emission_identified_flag_fk", AnyOf: []string{"No leak was detected"}},
				},
				Require: []string{
					"plume.emission_type_fk",
					"plume.emission_location",
					"plume.emission_cause",
				},
			},
			{
				Name: "leak-detected-details",
				When: []Condition{
					{Field: "plume.emission_identified_flag_fk", AnyOf: []string{"Leak was detected"}},
				},
				Require: []string{
					"plume.emission_type_fk",
					"plume.emission_location",
					"plume.emission_cause",
					"component.component_type_fk",
					"repair.repair_timestamp",
				},
			},
			{
				Name: "component-other-description",
				When: []Condition{
					{Field: "component.component_type_fk", AnyOf: []string{"Other"}},
				},
				Require: []string{"component.other_description"},
			},
			{
				Name: "venting-exclusion-method21",
				When: []Condition{
					{Field: "inspection.venting_exclusion", AnyOf: []string{"Yes"}},
					{Field: "inspection.ogi_result", AnyOf: []string{"Unintentional-leak"}},
				},
				Require: []string{"inspection.method21_performed"},
			},
			{
				Name: "method21-date",
				When: []Condition{
					{Field: "inspection.method21_performed", AnyOf: []string{"Yes"}},
				},
				Require: []string{"inspection.method21_date"},
			},
		},
		Temporal: []TemporalRule{
			observationBeforeRepair,
			{
				Name:    "observation-before-method21",
				Earlier: "plume.observation_timestamp",
				Later:   "inspection.method21_date",
			},
		},
	},
	schemadef.SectorDairyDigester: {
		Sector:   schemadef.SectorDairyDigester,
		Temporal: []TemporalRule{observationBeforeRepair},
	},
	schemadef.SectorEnergy: {
		Sector:   schemadef.SectorEnergy,
		Temporal: []TemporalRule{observationBeforeRepair},
	},
	schemadef.SectorGeneric: {
		Sector: schemadef.SectorGeneric,
	},
}

// ForSector returns the rule table for a sector. Unknown sectors get an
// empty table, not an error: validation never blocks parsing.
func ForSector(sector schemadef.Sector) RuleSet {
	if rs, ok := sectorRules[sector]; ok {
		return rs
	}
	return RuleSet{Sector: sector}
}
