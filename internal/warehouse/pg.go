package warehouse

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// chunkSize is the number of rows pulled per round trip when streaming
// new messages, matching the source's `many = 500`.
const chunkSize = 500

// PGStore is a Store backed by a pgxpool.Pool against the warehouse
// database.
type PGStore struct {
	Pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

const messagesSinceQuery = `
SELECT hl7_msh_id, message_datetime, visit_id
FROM hl7_msh JOIN hl7_visit USING (hl7_msh_id)
WHERE hl7_msh_id > $1
ORDER BY hl7_msh_id`

func (s *PGStore) MessagesSince(ctx context.Context, afterID int64, fn func([]NewMessage) error) error {
	rows, err := s.Pool.Query(ctx, messagesSinceQuery, afterID)
	if err != nil {
		return errors.Wrap(err, "querying messages since")
	}
	defer rows.Close()

	batch := make([]NewMessage, 0, chunkSize)
	for rows.Next() {
		var m NewMessage
		if err := rows.Scan(&m.MSHID, &m.MessageDatetime, &m.VisitID); err != nil {
			return errors.Wrap(err, "scanning new message")
		}
		batch = append(batch, m)
		if len(batch) == chunkSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterating new messages")
	}
	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

const visitIDsBetweenQuery = `
SELECT DISTINCT visit_id FROM hl7_visit
WHERE admit_datetime >= $1 AND admit_datetime < $2`

func (s *PGStore) VisitIDsAdmittedBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	rows, err := s.Pool.Query(ctx, visitIDsBetweenQuery, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "querying visit ids by admit date")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning visit id")
		}
		out = append(out, id)
	}
	return out, errors.Wrap(rows.Err(), "iterating visit ids")
}

// messagesByIDQuery returns the message header/visit columns for the
// given hl7_msh_ids. Dx and Obx rows are fetched with follow-up queries
// keyed by msh_id, mirroring the relational shape of FullMessage in the
// source.
const messagesByIDQuery = `
SELECT m.hl7_msh_id, m.message_datetime, m.message_type, m.message_control_id,
       m.facility,
       v.visit_id, v.patient_class, v.patient_id, v.admit_datetime,
       v.discharge_datetime, v.gender, v.dob, v.zip, v.country, v.state,
       v.county, v.admission_source, v.assigned_patient_location,
       v.chief_complaint, v.disposition, v.race, v.service_code
FROM hl7_msh m JOIN hl7_visit v USING (hl7_msh_id)
WHERE m.hl7_msh_id = ANY($1)
ORDER BY m.message_datetime`

func (s *PGStore) MessagesByID(ctx context.Context, mshIDs []int64) ([]Message, error) {
	if len(mshIDs) == 0 {
		return nil, nil
	}

	rows, err := s.Pool.Query(ctx, messagesByIDQuery, mshIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages by id")
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MSHID, &m.MessageDatetime, &m.MessageType, &m.MessageControlID,
			&m.Facility,
			&m.Visit.VisitID, &m.Visit.PatientClass, &m.Visit.PatientID, &m.Visit.AdmitDatetime,
			&m.Visit.DischargeDatetime, &m.Visit.Gender, &m.Visit.DOB, &m.Visit.Zip, &m.Visit.Country,
			&m.Visit.State, &m.Visit.County, &m.Visit.AdmissionSource, &m.Visit.AssignedPatientLocation,
			&m.Visit.ChiefComplaint, &m.Visit.Disposition, &m.Visit.Race, &m.Visit.ServiceCode,
		); err != nil {
			return nil, errors.Wrap(err, "scanning message")
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating messages")
	}

	if err := s.attachDxesAndObxes(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

const dxQuery = `
SELECT hl7_msh_id, rank, dx_code, dx_description, dx_type
FROM hl7_dx WHERE hl7_msh_id = ANY($1) ORDER BY hl7_msh_id, rank`

const obxQuery = `
SELECT hl7_msh_id, hl7_obx_id, observation_id, observation_text, coding,
       alt_id, alt_text, alt_coding, observation_result, units, sequence,
       result_status, reference_range, performing_lab_code,
       abnorm_id, abnorm_text, abnorm_coding,
       alt_abnorm_id, alt_abnorm_text, alt_abnorm_coding
FROM hl7_obx WHERE hl7_msh_id = ANY($1) ORDER BY hl7_msh_id, hl7_obx_id`

func (s *PGStore) attachDxesAndObxes(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	byID := make(map[int64]*Message, len(msgs))
	ids := make([]int64, 0, len(msgs))
	for i := range msgs {
		byID[msgs[i].MSHID] = &msgs[i]
		ids = append(ids, msgs[i].MSHID)
	}

	dxRows, err := s.Pool.Query(ctx, dxQuery, ids)
	if err != nil {
		return errors.Wrap(err, "querying diagnoses")
	}
	defer dxRows.Close()
	for dxRows.Next() {
		var mshID int64
		var d Dx
		if err := dxRows.Scan(&mshID, &d.Rank, &d.DxCode, &d.DxDescription, &d.DxType); err != nil {
			return errors.Wrap(err, "scanning diagnosis")
		}
		if m, ok := byID[mshID]; ok {
			m.Dxes = append(m.Dxes, d)
		}
	}
	if err := dxRows.Err(); err != nil {
		return errors.Wrap(err, "iterating diagnoses")
	}

	obxRows, err := s.Pool.Query(ctx, obxQuery, ids)
	if err != nil {
		return errors.Wrap(err, "querying observations")
	}
	defer obxRows.Close()
	for obxRows.Next() {
		var mshID int64
		var o Obx
		if err := obxRows.Scan(&mshID, &o.OBXID, &o.ObservationID, &o.ObservationText, &o.Coding,
			&o.AltID, &o.AltText, &o.AltCoding, &o.ObservationResult, &o.Units, &o.Sequence,
			&o.ResultStatus, &o.ReferenceRange, &o.PerformingLabCode,
			&o.AbnormID, &o.AbnormText, &o.AbnormCoding,
			&o.AltAbnormID, &o.AltAbnormText, &o.AltAbnormCoding,
		); err != nil {
			return errors.Wrap(err, "scanning observation")
		}
		if m, ok := byID[mshID]; ok {
			m.Obxes = append(m.Obxes, o)
		}
	}
	return errors.Wrap(obxRows.Err(), "iterating observations")
}

const observationsByMessageQuery = `
SELECT o.hl7_msh_id, o.hl7_obr_id, o.observation_datetime, o.report_datetime,
       o.status, o.loinc_code, o.loinc_text, o.alt_code, o.alt_text,
       o.coding, o.alt_coding, o.specimen_source, o.filler_order_no
FROM hl7_obr o
WHERE o.hl7_msh_id = ANY($1)
  AND (o.loinc_code IS DISTINCT FROM '43140-3')
ORDER BY o.hl7_msh_id, o.hl7_obr_id`

func (s *PGStore) ObservationsByMessage(ctx context.Context, mshIDs []int64) ([]ObservationData, error) {
	if len(mshIDs) == 0 {
		return nil, nil
	}

	rows, err := s.Pool.Query(ctx, observationsByMessageQuery, mshIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying observation requests")
	}
	defer rows.Close()

	var obrs []ObservationData
	obrIdx := make(map[int64]int)
	for rows.Next() {
		var o ObservationData
		if err := rows.Scan(&o.MSHID, &o.OBRID, &o.ObservationDatetime, &o.ReportDatetime,
			&o.Status, &o.LoincCode, &o.LoincText, &o.AltCode, &o.AltText,
			&o.Coding, &o.AltCoding, &o.SpecimenSource, &o.FillerOrderNo,
		); err != nil {
			return nil, errors.Wrap(err, "scanning observation request")
		}
		obrIdx[o.OBRID] = len(obrs)
		obrs = append(obrs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating observation requests")
	}
	if len(obrs) == 0 {
		return nil, nil
	}

	obrIDs := make([]int64, 0, len(obrs))
	for _, o := range obrs {
		obrIDs = append(obrIDs, o.OBRID)
	}

	obxRows, err := s.Pool.Query(ctx, `
SELECT hl7_obr_id, hl7_obx_id, observation_id, observation_text, coding,
       alt_id, alt_text, alt_coding, observation_result, units, sequence,
       result_status, reference_range, performing_lab_code,
       abnorm_id, abnorm_text, abnorm_coding,
       alt_abnorm_id, alt_abnorm_text, alt_abnorm_coding
FROM hl7_obx_obr o WHERE hl7_obr_id = ANY($1) ORDER BY hl7_obr_id, hl7_obx_id`, obrIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying observation results")
	}
	defer obxRows.Close()
	for obxRows.Next() {
		var obrID int64
		var o Obx
		if err := obxRows.Scan(&obrID, &o.OBXID, &o.ObservationID, &o.ObservationText, &o.Coding,
			&o.AltID, &o.AltText, &o.AltCoding, &o.ObservationResult, &o.Units, &o.Sequence,
			&o.ResultStatus, &o.ReferenceRange, &o.PerformingLabCode,
			&o.AbnormID, &o.AbnormText, &o.AbnormCoding,
			&o.AltAbnormID, &o.AltAbnormText, &o.AltAbnormCoding,
		); err != nil {
			return nil, errors.Wrap(err, "scanning observation result")
		}
		if idx, ok := obrIdx[obrID]; ok {
			obrs[idx].Obxes = append(obrs[idx].Obxes, o)
		}
	}
	if err := obxRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating observation results")
	}

	return obrs, nil
}

func (s *PGStore) NotesFor(ctx context.Context, obrIDs, obxIDs []int64) ([]Note, error) {
	if len(obrIDs) == 0 && len(obxIDs) == 0 {
		return nil, nil
	}

	rows, err := s.Pool.Query(ctx, `
SELECT hl7_obr_id, hl7_obx_id, sequence_number, note
FROM hl7_nte
WHERE hl7_obr_id = ANY($1) OR hl7_obx_id = ANY($2)
ORDER BY hl7_obr_id, hl7_obx_id, sequence_number`, obrIDs, obxIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.OBRID, &n.OBXID, &n.SequenceNumber, &n.Note); err != nil {
			return nil, errors.Wrap(err, "scanning note")
		}
		notes = append(notes, n)
	}
	return notes, errors.Wrap(rows.Err(), "iterating notes")
}
