package dimension

// Tag names identify a dimension table for locking and logging. They
// replace the source's per-table lock names ("admission_source_lock",
// "lab_result_lock", ...) with a compile-time constant set.
const (
	TagAdmissionSource  = "admission_source"
	TagAssignedLocation = "assigned_location"
	TagAdmitReason      = "admit_reason"
	TagChiefComplaint   = "chief_complaint"
	TagDisposition      = "disposition"
	TagFacility         = "facility"
	TagLocation         = "location"
	TagRace             = "race"
	TagServiceArea      = "service_area"
	TagAdmissionTemp    = "admission_temp"
	TagAdmissionO2sat   = "admission_o2sat"
	TagFluVaccine       = "flu_vaccine"
	TagH1N1Vaccine      = "h1n1_vaccine"
	TagPregnancy        = "pregnancy"
	TagDiagnosis        = "diagnosis"
	TagLabResult        = "lab_result"
	TagLabFlag          = "lab_flag"
	TagOrderNumber      = "order_number"
	TagPerformingLab    = "performing_lab"
	TagReferenceRange   = "reference_range"
	TagSpecimenSource   = "specimen_source"
	TagNote             = "note"
)

// MaxResultLen bounds lab_result.result and note.note, mirroring the
// source's MAX_RESULT_LEN.
const MaxResultLen = 500

// Descriptor is a single dimension row awaiting select-or-insert
// resolution. IdentifyingColumns/IdentifyingValues narrow the SELECT
// (and the uniqueness constraint the schema carries); InsertColumns/
// InsertValues is the full row written on a miss, always a superset of
// the identifying columns.
type Descriptor struct {
	Tag                string
	Table              string
	IdentifyingColumns []string
	IdentifyingValues  []any
	InsertColumns      []string
	InsertValues       []any
}

func truncate(s string) string {
	if len(s) > MaxResultLen {
		return s[:MaxResultLen]
	}
	return s
}

// NewAdmissionSource describes an admission_source dimension row.
func NewAdmissionSource(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagAdmissionSource,
		Table:              "dim_admission_source",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewAssignedLocation describes an assigned_location dimension row.
func NewAssignedLocation(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagAssignedLocation,
		Table:              "dim_assigned_location",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewAdmitReason describes an admit_reason (admission diagnosis)
// dimension row.
func NewAdmitReason(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagAdmitReason,
		Table:              "dim_admit_reason",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewChiefComplaint describes a chief_complaint dimension row.
func NewChiefComplaint(text string) Descriptor {
	return Descriptor{
		Tag:                TagChiefComplaint,
		Table:              "dim_chief_complaint",
		IdentifyingColumns: []string{"text"},
		IdentifyingValues:  []any{text},
		InsertColumns:      []string{"text"},
		InsertValues:       []any{text},
	}
}

// NewDisposition describes a disposition dimension row.
func NewDisposition(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagDisposition,
		Table:              "dim_disposition",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewFacility describes a facility dimension row, identified by NPI.
func NewFacility(npi int64, name string) Descriptor {
	return Descriptor{
		Tag:                TagFacility,
		Table:              "dim_facility",
		IdentifyingColumns: []string{"npi"},
		IdentifyingValues:  []any{npi},
		InsertColumns:      []string{"npi", "name"},
		InsertValues:       []any{npi, name},
	}
}

// NewLocation describes a demographic Location dimension row: the
// zip/country/state/county tuple a visit's patient resides in.
func NewLocation(zip, country, state, county string) Descriptor {
	return Descriptor{
		Tag:                TagLocation,
		Table:              "dim_location",
		IdentifyingColumns: []string{"zip", "country", "state", "county"},
		IdentifyingValues:  []any{zip, country, state, county},
		InsertColumns:      []string{"zip", "country", "state", "county"},
		InsertValues:       []any{zip, country, state, county},
	}
}

// NewRace describes a race dimension row.
func NewRace(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagRace,
		Table:              "dim_race",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewServiceArea describes a service_area dimension row.
func NewServiceArea(code, description string) Descriptor {
	return Descriptor{
		Tag:                TagServiceArea,
		Table:              "dim_service_area",
		IdentifyingColumns: []string{"code", "description"},
		IdentifyingValues:  []any{code, description},
		InsertColumns:      []string{"code", "description"},
		InsertValues:       []any{code, description},
	}
}

// NewAdmissionTemp describes an admission_temp clinical-observation
// satellite row: the admission body temperature, already formatted to
// one decimal place in degrees Fahrenheit.
func NewAdmissionTemp(degreeFahrenheit string) Descriptor {
	return Descriptor{
		Tag:                TagAdmissionTemp,
		Table:              "dim_admission_temp",
		IdentifyingColumns: []string{"degree_fahrenheit"},
		IdentifyingValues:  []any{degreeFahrenheit},
		InsertColumns:      []string{"degree_fahrenheit"},
		InsertValues:       []any{degreeFahrenheit},
	}
}

// NewAdmissionO2sat describes an admission_o2sat satellite row: the
// admission oxygen saturation, as a whole percentage.
func NewAdmissionO2sat(percentage int) Descriptor {
	return Descriptor{
		Tag:                TagAdmissionO2sat,
		Table:              "dim_admission_o2sat",
		IdentifyingColumns: []string{"o2sat_percentage"},
		IdentifyingValues:  []any{percentage},
		InsertColumns:      []string{"o2sat_percentage"},
		InsertValues:       []any{percentage},
	}
}

// NewFluVaccine describes a flu_vaccine satellite row.
func NewFluVaccine(status string) Descriptor {
	return Descriptor{
		Tag:                TagFluVaccine,
		Table:              "dim_flu_vaccine",
		IdentifyingColumns: []string{"status"},
		IdentifyingValues:  []any{status},
		InsertColumns:      []string{"status"},
		InsertValues:       []any{status},
	}
}

// NewH1N1Vaccine describes an h1n1_vaccine satellite row.
func NewH1N1Vaccine(status string) Descriptor {
	return Descriptor{
		Tag:                TagH1N1Vaccine,
		Table:              "dim_h1n1_vaccine",
		IdentifyingColumns: []string{"status"},
		IdentifyingValues:  []any{status},
		InsertColumns:      []string{"status"},
		InsertValues:       []any{status},
	}
}

// NewPregnancy describes a pregnancy satellite row.
func NewPregnancy(status string) Descriptor {
	return Descriptor{
		Tag:                TagPregnancy,
		Table:              "dim_pregnancy",
		IdentifyingColumns: []string{"status"},
		IdentifyingValues:  []any{status},
		InsertColumns:      []string{"status"},
		InsertValues:       []any{status},
	}
}

// NewDiagnosis describes a diagnosis dimension row, identified by
// icd9 alone -- status belongs to the visit_dx association, not the
// dimension, so an icd9 reported under two different statuses resolves
// to the same dim_diagnosis row.
func NewDiagnosis(icd9, description, status string) Descriptor {
	return Descriptor{
		Tag:                TagDiagnosis,
		Table:              "dim_diagnosis",
		IdentifyingColumns: []string{"icd9"},
		IdentifyingValues:  []any{icd9},
		InsertColumns:      []string{"icd9", "description", "status"},
		InsertValues:       []any{icd9, description, status},
	}
}

// NewLabResult describes a lab_result dimension row, identified by the
// (test_code, test_text, coding, result, units, status) tuple the
// source hashes a SurrogateLab on. Result is truncated to MaxResultLen.
func NewLabResult(testCode, testText, coding, result, units, status string) Descriptor {
	result = truncate(result)
	return Descriptor{
		Tag:   TagLabResult,
		Table: "dim_lab_result",
		IdentifyingColumns: []string{
			"test_code", "test_text", "coding", "result", "units", "status",
		},
		IdentifyingValues: []any{testCode, testText, coding, result, units, status},
		InsertColumns: []string{
			"test_code", "test_text", "coding", "result", "units", "status",
		},
		InsertValues: []any{testCode, testText, coding, result, units, status},
	}
}

// NewLabFlag describes a lab_flag (abnormality) satellite row,
// identified by (id, coding) -- text (e.g. "High"/"Low") is a
// human-readable label that varies independently of identity and is
// insert-only.
func NewLabFlag(id, text, coding string) Descriptor {
	return Descriptor{
		Tag:                TagLabFlag,
		Table:              "dim_lab_flag",
		IdentifyingColumns: []string{"id", "coding"},
		IdentifyingValues:  []any{id, coding},
		InsertColumns:      []string{"id", "text", "coding"},
		InsertValues:       []any{id, text, coding},
	}
}

// NewOrderNumber describes an order_number satellite row.
func NewOrderNumber(fillerOrderNo string) Descriptor {
	return Descriptor{
		Tag:                TagOrderNumber,
		Table:              "dim_order_number",
		IdentifyingColumns: []string{"filler_order_no"},
		IdentifyingValues:  []any{fillerOrderNo},
		InsertColumns:      []string{"filler_order_no"},
		InsertValues:       []any{fillerOrderNo},
	}
}

// NewPerformingLab describes a performing_lab satellite row.
func NewPerformingLab(code string) Descriptor {
	return Descriptor{
		Tag:                TagPerformingLab,
		Table:              "dim_performing_lab",
		IdentifyingColumns: []string{"code"},
		IdentifyingValues:  []any{code},
		InsertColumns:      []string{"code"},
		InsertValues:       []any{code},
	}
}

// NewReferenceRange describes a reference_range satellite row.
func NewReferenceRange(rangeText string) Descriptor {
	return Descriptor{
		Tag:                TagReferenceRange,
		Table:              "dim_reference_range",
		IdentifyingColumns: []string{"range_text"},
		IdentifyingValues:  []any{rangeText},
		InsertColumns:      []string{"range_text"},
		InsertValues:       []any{rangeText},
	}
}

// NewSpecimenSource describes a specimen_source satellite row.
func NewSpecimenSource(source string) Descriptor {
	return Descriptor{
		Tag:                TagSpecimenSource,
		Table:              "dim_specimen_source",
		IdentifyingColumns: []string{"source"},
		IdentifyingValues:  []any{source},
		InsertColumns:      []string{"source"},
		InsertValues:       []any{source},
	}
}

// NewNote describes a note satellite row, truncated to MaxResultLen.
func NewNote(note string) Descriptor {
	note = truncate(note)
	return Descriptor{
		Tag:                TagNote,
		Table:              "dim_note",
		IdentifyingColumns: []string{"note"},
		IdentifyingValues:  []any{note},
		InsertColumns:      []string{"note"},
		InsertValues:       []any{note},
	}
}
