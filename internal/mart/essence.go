package mart

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pbugni/pheme.longitudinal/internal/util/msort"
)

// EssenceRow is one projected row of the essence view: a visit joined
// with its dimension tables into the flat, denormalized shape the
// downstream surveillance report consumes.
type EssenceRow struct {
	VisitPK            int64
	FacilityNPI        int64
	Hospital           string
	VisitDate          time.Time
	VisitTime          string
	Gender             string
	Age                *int
	ChiefComplaint     string
	Zip                string
	Diagnosis          string
	GipseDisposition   string
	OdinDisposition    string
	PatientID          string
	VisitID            string
	PatientClass       string
	MeasuredTemp       string
	O2Saturation       string
	InfluenzaVaccine   string
	H1N1Vaccine        string
}

// EssenceQuery narrows the rows EssenceRows returns.
type EssenceQuery struct {
	StartDate    time.Time
	EndDate      time.Time
	Region       string
	PatientClass string
}

const essenceSelectColumns = `e.visit_pk, e.facility_npi, e.hospital, e.visit_date, e.visit_time,
	e.gender, e.age, e.chief_complaint, e.zip, e.gipse_disposition,
	e.odin_disposition, e.patient_id, e.visit_id, e.patient_class,
	e.measured_temperature, e.o2_saturation, e.influenza_vaccine,
	e.h1n1_vaccine`

// EssenceRows queries the essence view for visits admitted in
// [q.StartDate, q.EndDate], optionally restricted to a reportable
// region and/or a single patient class. Diagnoses are filled in
// separately by the caller (report.Generate), matching the spec's
// note that diagnosis text is "bastardized" into a later join rather
// than computed in SQL.
func (s *PGStore) EssenceRows(ctx context.Context, q EssenceQuery) ([]EssenceRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + essenceSelectColumns + ` FROM essence e`)
	args := []interface{}{q.StartDate, q.EndDate.Add(24 * time.Hour)}
	if q.Region != "" {
		b.WriteString(` JOIN reportable_region rr ON rr.facility_npi = e.facility_npi AND rr.region_name = $3`)
		args = append(args, q.Region)
	}
	b.WriteString(` WHERE e.admit_datetime BETWEEN $1 AND $2`)
	if q.PatientClass != "" {
		args = append(args, q.PatientClass)
		b.WriteString(` AND e.patient_class = $` + strconv.Itoa(len(args)))
	}

	rows, err := s.Pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying essence view")
	}
	defer rows.Close()

	var out []EssenceRow
	for rows.Next() {
		var r EssenceRow
		if err := rows.Scan(&r.VisitPK, &r.FacilityNPI, &r.Hospital, &r.VisitDate, &r.VisitTime,
			&r.Gender, &r.Age, &r.ChiefComplaint, &r.Zip, &r.GipseDisposition,
			&r.OdinDisposition, &r.PatientID, &r.VisitID, &r.PatientClass,
			&r.MeasuredTemp, &r.O2Saturation, &r.InfluenzaVaccine,
			&r.H1N1Vaccine); err != nil {
			return nil, errors.Wrap(err, "scanning essence row")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterating essence rows")
}

// VisitDiagnoses returns the ICD9 codes for visitPK, most recently
// changed first, matching the source's _select_diagnosis ordering
// (dx_datetime DESC); rank does not affect the order. Duplicate icd9
// codes are collapsed to their first (most recent) occurrence.
func (s *PGStore) VisitDiagnoses(ctx context.Context, visitPK int64) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT dim_dx.icd9 FROM assoc_visit_dx
		JOIN dim_dx ON dim_dx_pk = dim_dx.pk
		WHERE fact_visit_pk = $1
		ORDER BY assoc_visit_dx.dx_datetime DESC`, visitPK)
	if err != nil {
		return nil, errors.Wrap(err, "querying visit diagnoses")
	}
	defer rows.Close()

	var icd9s []string
	for rows.Next() {
		var icd9 string
		if err := rows.Scan(&icd9); err != nil {
			return nil, errors.Wrap(err, "scanning visit diagnosis")
		}
		icd9s = append(icd9s, icd9)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating visit diagnoses")
	}

	unique := msort.UniqueByKey(icd9s, func(icd9 string) string { return icd9 })
	return unique, nil
}
