package schemadef

// Published spreadsheet template schemas. These mirror the operator feedback
// workbook templates; a new template version registers a new identifier here
// and an alias from the superseded one where the field set is compatible.

const (
	LandfillV070      = "landfill_operator_feedback_v070"
	OilAndGasV070     = "oil_and_gas_operator_feedback_v070"
	DairyDigesterV006 = "dairy_digester_operator_feedback_v006"
	EnergyV003        = "energy_operator_feedback_v003"
	GenericV002       = "generic_operator_feedback_v002"
)

var yesNo = []string{"Yes", "No"}

var emissionIdentifiedValues = []string{
	"Leak was detected",
	"No leak was detected",
	"Unable to determine",
}

var emissionTypeValues = []string{
	"Fugitive leak",
	"Vented emission",
	"Flare inefficiency",
	"Other",
}

var ogiResultValues = []string{
	"Unintentional-leak",
	"Intentional-vent",
	"Not-found",
}

func builtinSchemas() []Schema {
	return []Schema{
		NewSchema(LandfillV070, SectorLandfill, []Field{
			{Name: "facility.id", Type: TypeInt, Required: true},
			{Name: "facility.name", Type: TypeString, Required: true},
			{Name: "contact.name", Type: TypeString, Required: true},
			{Name: "contact.phone", Type: TypeString},
			{Name: "contact.email", Type: TypeString},
			{Name: "plume.observation_timestamp", Type: TypeDatetime, Required: true},
			{Name: "plume.emission_identified_flag_fk", Type: TypeEnum, Required: true, Enum: emissionIdentifiedValues, CaseInsensitive: true},
			{Name: "plume.emission_type_fk", Type: TypeEnum, Enum: emissionTypeValues, CaseInsensitive: true},
			{Name: "plume.emission_location", Type: TypeString},
			{Name: "plume.emission_cause", Type: TypeString},
			{Name: "inspection.venting_exclusion", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.ogi_performed", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.ogi_date", Type: TypeDatetime},
			{Name: "inspection.ogi_result", Type: TypeEnum, Enum: ogiResultValues, CaseInsensitive: true},
			{Name: "inspection.method21_performed", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.method21_date", Type: TypeDatetime},
			{Name: "inspection.initial_leak_concentration", Type: TypeFloat},
			{Name: "repair.repair_timestamp", Type: TypeDatetime},
			{Name: "repair.final_repair_concentration", Type: TypeFloat},
			{Name: "lmr.included_in_last_lmr", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "lmr.planned_for_next_lmr", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "notes.additional_notes", Type: TypeString},
		}),
		NewSchema(OilAndGasV070, SectorOilAndGas, []Field{
			{Name: "facility.id", Type: TypeInt, Required: true},
			{Name: "facility.name", Type: TypeString, Required: true},
			{Name: "contact.name", Type: TypeString, Required: true},
			{Name: "contact.phone", Type: TypeString},
			{Name: "contact.email", Type: TypeString},
			{Name: "plume.observation_timestamp", Type: TypeDatetime, Required: true},
			{Name: "plume.emission_identified_flag_fk", Type: TypeEnum, Required: true, Enum: emissionIdentifiedValues, CaseInsensitive: true},
			{Name: "plume.emission_type_fk", Type: TypeEnum, Enum: emissionTypeValues, CaseInsensitive: true},
			{Name: "plume.emission_location", Type: TypeString},
			{Name: "plume.emission_cause", Type: TypeString},
			{Name: "component.component_type_fk", Type: TypeEnum, Enum: []string{
				"Valve", "Connector", "Compressor seal", "Thief hatch", "Tank vent", "Other",
			}, CaseInsensitive: true},
			{Name: "component.other_description", Type: TypeString},
			{Name: "inspection.venting_exclusion", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.ogi_performed", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.ogi_date", Type: TypeDatetime},
			{Name: "inspection.ogi_result", Type: TypeEnum, Enum: ogiResultValues, CaseInsensitive: true},
			{Name: "inspection.method21_performed", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "inspection.method21_date", Type: TypeDatetime},
			{Name: "inspection.initial_leak_concentration", Type: TypeFloat},
			{Name: "repair.repair_timestamp", Type: TypeDatetime},
			{Name: "repair.final_repair_concentration", Type: TypeFloat},
			{Name: "lmr.included_in_last_lmr", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "lmr.planned_for_next_lmr", Type: TypeEnum, Enum: yesNo, CaseInsensitive: true},
			{Name: "notes.additional_notes", Type: TypeString},
		}),
		NewSchema(DairyDigesterV006, SectorDairyDigester, []Field{
			{Name: "facility.id", Type: TypeInt, Required: true},
			{Name: "facility.name", Type: TypeString, Required: true},
			{Name: "contact.name", Type: TypeString, Required: true},
			{Name: "contact.email", Type: TypeString},
			{Name: "digester.type", Type: TypeEnum, Enum: []string{"Covered lagoon", "Complete mix", "Plug flow"}, CaseInsensitive: true},
			{Name: "digester.cover_condition", Type: TypeString},
			{Name: "plume.observation_timestamp", Type: TypeDatetime, Required: true},
			{Name: "plume.emission_identified_flag_fk", Type: TypeEnum, Required: true, Enum: emissionIdentifiedValues, CaseInsensitive: true},
			{Name: "plume.emission_location", Type: TypeString},
			{Name: "plume.emission_cause", Type: TypeString},
			{Name: "repair.repair_timestamp", Type: TypeDatetime},
			{Name: "notes.additional_notes", Type: TypeString},
		}),
		NewSchema(EnergyV003, SectorEnergy, []Field{
			{Name: "facility.id", Type: TypeInt, Required: true},
			{Name: "facility.name", Type: TypeString, Required: true},
			{Name: "contact.name", Type: TypeString, Required: true},
			{Name: "contact.email", Type: TypeString},
			{Name: "plume.observation_timestamp", Type: TypeDatetime, Required: true},
			{Name: "plume.emission_identified_flag_fk", Type: TypeEnum, Required: true, Enum: emissionIdentifiedValues, CaseInsensitive: true},
			{Name: "plume.emission_location", Type: TypeString},
			{Name: "plume.emission_cause", Type: TypeString},
			{Name: "repair.repair_timestamp", Type: TypeDatetime},
			{Name: "notes.additional_notes", Type: TypeString},
		}),
		NewSchema(GenericV002, SectorGeneric, []Field{
			{Name: "facility.id", Type: TypeInt, Required: true},
			{Name: "facility.name", Type: TypeString, Required: true},
			{Name: "contact.name", Type: TypeString},
			{Name: "contact.email", Type: TypeString},
			{Name: "plume.observation_timestamp", Type: TypeDatetime, Required: true},
			{Name: "plume.emission_identified_flag_fk", Type: TypeEnum, Required: true, Enum: emissionIdentifiedValues, CaseInsensitive: true},
			{Name: "plume.description", Type: TypeString},
			{Name: "notes.additional_notes", Type: TypeString},
		}),
	}
}

// Deprecated identifier -> current identifier. Used only during parsing to
// keep old template files loadable.
func builtinAliases() map[string]string {
	return map[string]string{
		"landfill_operator_feedback_v060":       LandfillV070,
		"landfill_operator_feedback_v061":       LandfillV070,
		"oil_and_gas_operator_feedback_v060":    OilAndGasV070,
		"oil_and_gas_operator_feedback_v062":    OilAndGasV070,
		"dairy_digester_operator_feedback_v005": DairyDigesterV006,
		"energy_operator_feedback_v002":         EnergyV003,
		"generic_operator_feedback_v001":        GenericV002,
	}
}
