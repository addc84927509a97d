package mart

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PGStore is a Store backed by a pgxpool.Pool against the mart
// database.
type PGStore struct {
	Pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

const loadVisitsQuery = `
SELECT pk, visit_id, patient_class, patient_id, admit_datetime,
       first_message, last_message, discharge_datetime, age, dob, gender,
       ever_in_icu, influenza_test_summary, last_updated,
       dim_facility_pk, dim_admission_source_pk, dim_assigned_location_pk,
       dim_ar_pk, dim_cc_pk, dim_disposition_pk, dim_location_pk,
       dim_race_pk, dim_service_area_pk, dim_admission_temp_pk,
       dim_admission_o2sat_pk, dim_flu_vaccine_pk, dim_h1n1_vaccine_pk,
       dim_pregnancy_pk
FROM visit WHERE visit_id = $1`

func (s *PGStore) LoadVisits(ctx context.Context, visitID string) ([]Visit, error) {
	rows, err := s.Pool.Query(ctx, loadVisitsQuery, visitID)
	if err != nil {
		return nil, errors.Wrap(err, "loading visits")
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.PK, &v.VisitID, &v.PatientClass, &v.PatientID, &v.AdmitDatetime,
			&v.FirstMessage, &v.LastMessage, &v.DischargeDatetime, &v.Age, &v.DOB, &v.Gender,
			&v.EverInICU, &v.InfluenzaTestSummary, &v.LastUpdated,
			&v.FacilityPK, &v.AdmissionSourcePK, &v.AssignedLocationPK,
			&v.AdmitReasonPK, &v.ChiefComplaintPK, &v.DispositionPK, &v.LocationPK,
			&v.RacePK, &v.ServiceAreaPK, &v.AdmissionTempPK,
			&v.AdmissionO2satPK, &v.FluVaccinePK, &v.H1N1VaccinePK,
			&v.PregnancyPK,
		); err != nil {
			return nil, errors.Wrap(err, "scanning visit")
		}
		out = append(out, v)
	}
	return out, errors.Wrap(rows.Err(), "iterating visits")
}

const insertVisitStmt = `
INSERT INTO visit (visit_id, patient_class, patient_id, admit_datetime,
    first_message, last_message, discharge_datetime, age, dob, gender,
    ever_in_icu, last_updated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING pk`

func (s *PGStore) InsertVisit(ctx context.Context, v *Visit) error {
	v.LastUpdated = time.Now()
	row := s.Pool.QueryRow(ctx, insertVisitStmt,
		v.VisitID, v.PatientClass, v.PatientID, v.AdmitDatetime,
		v.FirstMessage, v.LastMessage, v.DischargeDatetime, v.Age, v.DOB, v.Gender,
		v.EverInICU, v.LastUpdated)
	return errors.Wrap(row.Scan(&v.PK), "inserting visit")
}

const commitVisitStmt = `
UPDATE visit SET
    admit_datetime = $2, first_message = $3, last_message = $4,
    discharge_datetime = $5, age = $6, dob = $7, gender = $8,
    ever_in_icu = $9, last_updated = $10,
    dim_facility_pk = $11, dim_admission_source_pk = $12,
    dim_assigned_location_pk = $13, dim_ar_pk = $14, dim_cc_pk = $15,
    dim_disposition_pk = $16, dim_location_pk = $17, dim_race_pk = $18,
    dim_service_area_pk = $19, dim_admission_temp_pk = $20,
    dim_admission_o2sat_pk = $21, dim_flu_vaccine_pk = $22,
    dim_h1n1_vaccine_pk = $23, dim_pregnancy_pk = $24
WHERE pk = $1`

func (s *PGStore) CommitVisit(ctx context.Context, v *Visit) error {
	v.LastUpdated = time.Now()
	_, err := s.Pool.Exec(ctx, commitVisitStmt,
		v.PK, v.AdmitDatetime, v.FirstMessage, v.LastMessage,
		v.DischargeDatetime, v.Age, v.DOB, v.Gender,
		v.EverInICU, v.LastUpdated,
		v.FacilityPK, v.AdmissionSourcePK, v.AssignedLocationPK, v.AdmitReasonPK,
		v.ChiefComplaintPK, v.DispositionPK, v.LocationPK, v.RacePK,
		v.ServiceAreaPK, v.AdmissionTempPK, v.AdmissionO2satPK, v.FluVaccinePK,
		v.H1N1VaccinePK, v.PregnancyPK)
	return errors.Wrap(err, "committing visit")
}

func (s *PGStore) ExistingDiagnoses(ctx context.Context, visitPK int64) ([]VisitDx, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT visit_dx.visit_pk, visit_dx.dx_pk, dim_diagnosis.icd9, visit_dx.status,
       visit_dx.dx_datetime, visit_dx.rank
FROM visit_dx
JOIN dim_diagnosis ON dim_diagnosis.pk = visit_dx.dx_pk
WHERE visit_dx.visit_pk = $1`, visitPK)
	if err != nil {
		return nil, errors.Wrap(err, "querying existing diagnoses")
	}
	defer rows.Close()

	var out []VisitDx
	for rows.Next() {
		var d VisitDx
		if err := rows.Scan(&d.VisitPK, &d.DxPK, &d.ICD9, &d.Status, &d.DxDatetime, &d.Rank); err != nil {
			return nil, errors.Wrap(err, "scanning existing diagnosis")
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "iterating existing diagnoses")
}

func (s *PGStore) InsertDiagnoses(ctx context.Context, rows []VisitDx) error {
	for _, d := range rows {
		if _, err := s.Pool.Exec(ctx, `
INSERT INTO visit_dx (visit_pk, dx_pk, status, dx_datetime, rank)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (visit_pk, dx_pk, status, dx_datetime) DO NOTHING`,
			d.VisitPK, d.DxPK, d.Status, d.DxDatetime, d.Rank); err != nil {
			return errors.Wrap(err, "inserting diagnosis association")
		}
	}
	return nil
}

func (s *PGStore) ExistingLabs(ctx context.Context, visitPK int64) ([]VisitLab, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT visit_lab.visit_pk, visit_lab.lab_result_pk,
       dim_lab_result.test_code, dim_lab_result.test_text, dim_lab_result.coding,
       dim_lab_result.result, dim_lab_result.units,
       visit_lab.status, visit_lab.collection_datetime, visit_lab.report_datetime,
       visit_lab.lab_flag_pk, visit_lab.order_number_pk, visit_lab.reference_range_pk,
       visit_lab.note_pk, visit_lab.performing_lab_pk, visit_lab.specimen_source_pk
FROM visit_lab
JOIN dim_lab_result ON dim_lab_result.pk = visit_lab.lab_result_pk
WHERE visit_lab.visit_pk = $1`, visitPK)
	if err != nil {
		return nil, errors.Wrap(err, "querying existing labs")
	}
	defer rows.Close()

	var out []VisitLab
	for rows.Next() {
		var l VisitLab
		if err := rows.Scan(&l.VisitPK, &l.LabResultPK, &l.TestCode, &l.TestText, &l.Coding,
			&l.Result, &l.Units, &l.Status, &l.CollectionDatetime,
			&l.ReportDatetime, &l.LabFlagPK, &l.OrderNumberPK, &l.ReferenceRangePK,
			&l.NotePK, &l.PerformingLabPK, &l.SpecimenSourcePK,
		); err != nil {
			return nil, errors.Wrap(err, "scanning existing lab")
		}
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "iterating existing labs")
}

func (s *PGStore) InsertLabs(ctx context.Context, rows []VisitLab) error {
	for _, l := range rows {
		if _, err := s.Pool.Exec(ctx, `
INSERT INTO visit_lab (visit_pk, lab_result_pk, status, collection_datetime,
    report_datetime, lab_flag_pk, order_number_pk, reference_range_pk,
    note_pk, performing_lab_pk, specimen_source_pk)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (visit_pk, lab_result_pk, status) DO NOTHING`,
			l.VisitPK, l.LabResultPK, l.Status, l.CollectionDatetime, l.ReportDatetime,
			l.LabFlagPK, l.OrderNumberPK, l.ReferenceRangePK, l.NotePK,
			l.PerformingLabPK, l.SpecimenSourcePK); err != nil {
			return errors.Wrap(err, "inserting lab association")
		}
	}
	return nil
}

func (s *PGStore) MaxProcessedMSHID(ctx context.Context) (int64, error) {
	var max *int64
	err := s.Pool.QueryRow(ctx, `SELECT max(msh_id) FROM message_processed`).Scan(&max)
	if err != nil {
		return 0, errors.Wrap(err, "querying max processed msh_id")
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (s *PGStore) InsertMessageProcessedBatch(ctx context.Context, rows []MessageProcessed) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
INSERT INTO message_processed (msh_id, message_datetime, visit_id, processed_datetime)
VALUES ($1, $2, $3, NULL)
ON CONFLICT (msh_id) DO NOTHING`, r.MSHID, r.MessageDatetime, r.VisitID)
	}
	br := s.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return errors.Wrap(err, "inserting message_processed batch")
		}
	}
	return nil
}

func (s *PGStore) DistinctUnprocessedVisitIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT DISTINCT visit_id FROM message_processed WHERE processed_datetime IS NULL`)
	if err != nil {
		return nil, errors.Wrap(err, "querying unprocessed visit ids")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning unprocessed visit id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterating unprocessed visit ids")
}

func (s *PGStore) UnprocessedVisitIDsIn(ctx context.Context, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, `
SELECT DISTINCT visit_id FROM message_processed
WHERE processed_datetime IS NULL AND visit_id = ANY($1)`, candidates)
	if err != nil {
		return nil, errors.Wrap(err, "querying unprocessed visit ids in candidates")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning unprocessed visit id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterating unprocessed visit ids")
}

func (s *PGStore) UnprocessedMessageIDs(ctx context.Context, visitID string) ([]int64, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT msh_id FROM message_processed
WHERE visit_id = $1 AND processed_datetime IS NULL`, visitID)
	if err != nil {
		return nil, errors.Wrap(err, "querying unprocessed message ids")
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning unprocessed message id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterating unprocessed message ids")
}

func (s *PGStore) MarkVisitProcessed(ctx context.Context, visitID string, now time.Time) error {
	_, err := s.Pool.Exec(ctx, `
UPDATE message_processed SET processed_datetime = $2
WHERE processed_datetime IS NULL AND visit_id = $1`, visitID, now)
	return errors.Wrap(err, "marking visit processed")
}

func (s *PGStore) ReportableRegions(ctx context.Context) ([]ReportableRegion, error) {
	rows, err := s.Pool.Query(ctx, `SELECT region_name, facility_npi FROM reportable_region`)
	if err != nil {
		return nil, errors.Wrap(err, "querying reportable regions")
	}
	defer rows.Close()

	var out []ReportableRegion
	for rows.Next() {
		var r ReportableRegion
		if err := rows.Scan(&r.RegionName, &r.FacilityNPI); err != nil {
			return nil, errors.Wrap(err, "scanning reportable region")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterating reportable regions")
}
