package surrogate

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/pbugni/pheme.longitudinal/internal/dimension"
	"github.com/pbugni/pheme.longitudinal/internal/mart"
)

// Visit accumulates the best available data for one (visit_id,
// patient_class) pair as its contributing messages are merged. Each
// scalar setter keeps the latest non-empty value seen, matching the
// source's "simply keeps the latest, provided it has a value" fields.
type Visit struct {
	Mart *mart.Visit

	admissionSource  string
	assignedLocation string
	admitReason      string
	chiefComplaintField string
	disposition      string
	serviceArea      string
	race             string
	location         *dimension.Descriptor

	ChiefComplaint          string
	Age                     *int
	FluVaccineStatus        string
	H1N1VaccineStatus       string
	AdmissionO2satPercent   *int
	AdmissionTempFahrenheit *string
	PregnancyStatus         string

	clinicalSeen map[string]bool

	Diagnoses *DiagnosisSet
	Labs      *LabSet
}

// NewVisit wraps an existing (or about-to-be-inserted) mart.Visit row.
func NewVisit(mv *mart.Visit) *Visit {
	return &Visit{
		Mart:         mv,
		clinicalSeen: make(map[string]bool),
		Diagnoses:    NewDiagnosisSet(),
		Labs:         NewLabSet(),
	}
}

func nonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// SetAdmissionSource keeps the latest non-empty admission_source code
// seen (HL7 PV1.14.1).
func (v *Visit) SetAdmissionSource(code string) {
	if nonEmpty(code) {
		v.admissionSource = code
	}
}

// SetAssignedLocation keeps the latest non-empty assigned_patient_
// location seen (HL7 PV1.3.1), flagging EverInICU the first time a
// qualifying location is observed.
func (v *Visit) SetAssignedLocation(location string) {
	if !nonEmpty(location) {
		return
	}
	if strings.HasSuffix(location, "ICU") || strings.HasSuffix(location, "ACU") || location == "ACUI" {
		v.Mart.EverInICU = true
	}
	v.assignedLocation = location
}

// SetAdmitReason keeps the latest non-empty admit_reason seen
// (HL7 PV2.3.2 or PV2.3.5).
func (v *Visit) SetAdmitReason(code string) {
	if nonEmpty(code) {
		v.admitReason = code
	}
}

// SetChiefComplaintField keeps the latest non-empty chief_complaint
// seen directly on the admit message, distinct from the clinical-
// observation pathway which writes v.ChiefComplaint.
func (v *Visit) SetChiefComplaintField(text string) {
	if nonEmpty(text) {
		v.chiefComplaintField = text
	}
}

// SetDisposition keeps the latest non-empty disposition code seen
// (HL7 PV1.36).
func (v *Visit) SetDisposition(code string) {
	if nonEmpty(code) {
		v.disposition = code
	}
}

// SetServiceArea keeps the latest non-empty service_code seen
// (HL7 PV1.10.1), flagging EverInICU for the intensive/progressive
// service areas.
func (v *Visit) SetServiceArea(area string) {
	if !nonEmpty(area) {
		return
	}
	if area == "INT" || area == "PIN" {
		v.Mart.EverInICU = true
	}
	v.serviceArea = area
}

// SetRace keeps the latest non-empty race/ethnicity string seen (HL7
// PID.22.2 or PID.10.2).
func (v *Visit) SetRace(race string) {
	if nonEmpty(race) {
		v.race = race
	}
}

// SetLocation keeps the latest demographic location seen (zip/country/
// state/county) in which at least one part is non-empty; the incoming
// parts replace the prior location as a whole.
func (v *Visit) SetLocation(zip, country, state, county string) {
	if !nonEmpty(zip + country + state + county) {
		return
	}
	d := dimension.NewLocation(zip, country, state, county)
	v.location = &d
}

// AddClinicalObservation records a clinical-interest OBX reading. Only
// the first observation seen for a given LOINC code on this visit is
// kept; later ones are ignored, matching add_clinical_info.
func (v *Visit) AddClinicalObservation(code, result, units string) error {
	if v.clinicalSeen[code] {
		return nil
	}
	result = StripResult(result)
	if !nonEmpty(result) {
		return nil
	}
	handler, ok := clinicalHandlers[code]
	if !ok {
		return nil
	}
	v.clinicalSeen[code] = true
	return handler(v, ClinicalObservation{Code: code, Result: result, Units: units})
}

// Establish resolves every pending attribute against its dimension
// table and writes the resulting foreign keys onto v.Mart, then binds
// any newly accumulated diagnoses and labs. It mirrors
// establish_associations's fixed dispatch over associate_* methods,
// run here in the same order dir() would yield them alphabetically so
// that a clinical-observation-derived chief complaint overrides one
// set directly from the message, exactly as it does in the original.
//
// It returns whether any change was made that isn't reflected by a
// direct field write to v.Mart (i.e. new diagnosis/lab associations),
// information the caller needs to decide whether last_updated should
// bump even when no scalar field changed.
func (v *Visit) Establish(ctx context.Context, resolver *dimension.Resolver, store mart.Store) (bool, error) {
	if err := v.associateAdmissionSource(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateAdmitReason(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateAssignedLocation(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateChiefComplaintField(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateClinicalInfo(ctx, resolver); err != nil {
		return false, err
	}
	dxChanged, err := v.associateDiagnoses(ctx, resolver, store)
	if err != nil {
		return false, err
	}
	if err := v.associateDisposition(ctx, resolver); err != nil {
		return false, err
	}
	labChanged, err := v.associateLabs(ctx, resolver, store)
	if err != nil {
		return false, err
	}
	if err := v.associateLocation(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateRace(ctx, resolver); err != nil {
		return false, err
	}
	if err := v.associateServiceArea(ctx, resolver); err != nil {
		return false, err
	}
	return dxChanged || labChanged, nil
}

func (v *Visit) associateAdmissionSource(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.admissionSource) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewAdmissionSource(v.admissionSource, ""))
	if err != nil {
		return errors.Wrap(err, "resolving admission source")
	}
	v.Mart.AdmissionSourcePK = &pk
	return nil
}

func (v *Visit) associateAdmitReason(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.admitReason) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewAdmitReason(v.admitReason, ""))
	if err != nil {
		return errors.Wrap(err, "resolving admit reason")
	}
	v.Mart.AdmitReasonPK = &pk
	return nil
}

func (v *Visit) associateAssignedLocation(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.assignedLocation) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewAssignedLocation(v.assignedLocation, ""))
	if err != nil {
		return errors.Wrap(err, "resolving assigned location")
	}
	v.Mart.AssignedLocationPK = &pk
	return nil
}

func (v *Visit) associateChiefComplaintField(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.chiefComplaintField) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewChiefComplaint(v.chiefComplaintField))
	if err != nil {
		return errors.Wrap(err, "resolving chief complaint field")
	}
	v.Mart.ChiefComplaintPK = &pk
	return nil
}

func (v *Visit) associateClinicalInfo(ctx context.Context, r *dimension.Resolver) error {
	if nonEmpty(v.ChiefComplaint) {
		pk, err := r.Fetch(ctx, dimension.NewChiefComplaint(v.ChiefComplaint))
		if err != nil {
			return errors.Wrap(err, "resolving clinical chief complaint")
		}
		v.Mart.ChiefComplaintPK = &pk
	}
	if v.Age != nil {
		v.Mart.Age = v.Age
	}
	if nonEmpty(v.FluVaccineStatus) {
		pk, err := r.Fetch(ctx, dimension.NewFluVaccine(v.FluVaccineStatus))
		if err != nil {
			return errors.Wrap(err, "resolving flu vaccine")
		}
		v.Mart.FluVaccinePK = &pk
	}
	if nonEmpty(v.H1N1VaccineStatus) {
		pk, err := r.Fetch(ctx, dimension.NewH1N1Vaccine(v.H1N1VaccineStatus))
		if err != nil {
			return errors.Wrap(err, "resolving h1n1 vaccine")
		}
		v.Mart.H1N1VaccinePK = &pk
	}
	if v.AdmissionO2satPercent != nil {
		pk, err := r.Fetch(ctx, dimension.NewAdmissionO2sat(*v.AdmissionO2satPercent))
		if err != nil {
			return errors.Wrap(err, "resolving admission o2 saturation")
		}
		v.Mart.AdmissionO2satPK = &pk
	}
	if v.AdmissionTempFahrenheit != nil {
		pk, err := r.Fetch(ctx, dimension.NewAdmissionTemp(*v.AdmissionTempFahrenheit))
		if err != nil {
			return errors.Wrap(err, "resolving admission temp")
		}
		v.Mart.AdmissionTempPK = &pk
	}
	if nonEmpty(v.PregnancyStatus) {
		pk, err := r.Fetch(ctx, dimension.NewPregnancy(v.PregnancyStatus))
		if err != nil {
			return errors.Wrap(err, "resolving pregnancy")
		}
		v.Mart.PregnancyPK = &pk
	}
	return nil
}

func (v *Visit) associateDiagnoses(ctx context.Context, r *dimension.Resolver, store mart.Store) (bool, error) {
	if v.Diagnoses.Len() == 0 {
		return false, nil
	}
	existingRows, err := store.ExistingDiagnoses(ctx, v.Mart.PK)
	if err != nil {
		return false, errors.Wrap(err, "loading existing diagnoses")
	}

	existing := make([]Diagnosis, 0, len(existingRows))
	for _, row := range existingRows {
		existing = append(existing, Diagnosis{ICD9: row.ICD9, Status: row.Status})
	}

	newOnes := v.Diagnoses.New(existing)
	if len(newOnes) == 0 {
		return false, nil
	}

	var rows []mart.VisitDx
	for _, dx := range newOnes {
		pk, err := r.Fetch(ctx, dimension.NewDiagnosis(dx.ICD9, dx.Description, dx.Status))
		if err != nil {
			return false, errors.Wrap(err, "resolving diagnosis")
		}
		rows = append(rows, mart.VisitDx{
			VisitPK: v.Mart.PK, DxPK: pk, Status: dx.Status,
			DxDatetime: dx.DxDatetime, Rank: dx.Rank,
		})
	}
	if err := store.InsertDiagnoses(ctx, rows); err != nil {
		return false, errors.Wrap(err, "inserting diagnoses")
	}
	return true, nil
}

func (v *Visit) associateDisposition(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.disposition) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewDisposition(v.disposition, ""))
	if err != nil {
		return errors.Wrap(err, "resolving disposition")
	}
	v.Mart.DispositionPK = &pk
	return nil
}

func (v *Visit) associateLabs(ctx context.Context, r *dimension.Resolver, store mart.Store) (bool, error) {
	if v.Labs.Len() == 0 {
		return false, nil
	}
	existingRows, err := store.ExistingLabs(ctx, v.Mart.PK)
	if err != nil {
		return false, errors.Wrap(err, "loading existing labs")
	}
	existing := make([]Lab, 0, len(existingRows))
	for _, row := range existingRows {
		existing = append(existing, Lab{
			TestCode: row.TestCode, TestText: row.TestText, Coding: row.Coding,
			Result: row.Result, Units: row.Units, Status: row.Status,
		})
	}

	newOnes := v.Labs.New(existing)
	if len(newOnes) == 0 {
		return false, nil
	}

	var rows []mart.VisitLab
	for _, lab := range newOnes {
		resultPK, err := r.Fetch(ctx, dimension.NewLabResult(
			lab.TestCode, lab.TestText, lab.Coding, lab.Result, lab.Units, lab.Status))
		if err != nil {
			return false, errors.Wrap(err, "resolving lab result")
		}

		row := mart.VisitLab{
			VisitPK: v.Mart.PK, LabResultPK: resultPK, Status: lab.Status,
			CollectionDatetime: lab.CollectionDatetime, ReportDatetime: lab.ReportDatetime,
		}
		if lab.Flag.Present {
			pk, err := r.Fetch(ctx, dimension.NewLabFlag(lab.Flag.Code, lab.Flag.Text, lab.Flag.Coding))
			if err != nil {
				return false, errors.Wrap(err, "resolving lab flag")
			}
			row.LabFlagPK = &pk
		}
		if nonEmpty(lab.PerformingLab) {
			pk, err := r.Fetch(ctx, dimension.NewPerformingLab(lab.PerformingLab))
			if err != nil {
				return false, errors.Wrap(err, "resolving performing lab")
			}
			row.PerformingLabPK = &pk
		}
		if nonEmpty(lab.SpecimenSource) {
			pk, err := r.Fetch(ctx, dimension.NewSpecimenSource(lab.SpecimenSource))
			if err != nil {
				return false, errors.Wrap(err, "resolving specimen source")
			}
			row.SpecimenSourcePK = &pk
		}
		if nonEmpty(lab.OrderNumber) {
			pk, err := r.Fetch(ctx, dimension.NewOrderNumber(lab.OrderNumber))
			if err != nil {
				return false, errors.Wrap(err, "resolving order number")
			}
			row.OrderNumberPK = &pk
		}
		if nonEmpty(lab.ReferenceRange) {
			pk, err := r.Fetch(ctx, dimension.NewReferenceRange(lab.ReferenceRange))
			if err != nil {
				return false, errors.Wrap(err, "resolving reference range")
			}
			row.ReferenceRangePK = &pk
		}
		if lab.Note != nil && nonEmpty(*lab.Note) {
			pk, err := r.Fetch(ctx, dimension.NewNote(*lab.Note))
			if err != nil {
				return false, errors.Wrap(err, "resolving note")
			}
			row.NotePK = &pk
		}
		rows = append(rows, row)
	}
	if err := store.InsertLabs(ctx, rows); err != nil {
		return false, errors.Wrap(err, "inserting labs")
	}
	return true, nil
}

func (v *Visit) associateLocation(ctx context.Context, r *dimension.Resolver) error {
	if v.location == nil {
		return nil
	}
	pk, err := r.Fetch(ctx, *v.location)
	if err != nil {
		return errors.Wrap(err, "resolving location")
	}
	v.Mart.LocationPK = &pk
	return nil
}

func (v *Visit) associateRace(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.race) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewRace(v.race, ""))
	if err != nil {
		return errors.Wrap(err, "resolving race")
	}
	v.Mart.RacePK = &pk
	return nil
}

func (v *Visit) associateServiceArea(ctx context.Context, r *dimension.Resolver) error {
	if !nonEmpty(v.serviceArea) {
		return nil
	}
	pk, err := r.Fetch(ctx, dimension.NewServiceArea(v.serviceArea, ""))
	if err != nil {
		return errors.Wrap(err, "resolving service area")
	}
	v.Mart.ServiceAreaPK = &pk
	return nil
}
