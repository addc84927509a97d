// Package warehousetest seeds hl7_msh/hl7_visit fixture rows for
// integration-style tests against a real warehouse database, adapted
// from the teacher's HTTP changefeed-ingestion Sink: instead of
// upserting CDC row changes, it accepts newline-delimited JSON
// warehouse.Message bodies and inserts them directly. The CDC
// resolved-timestamp bookkeeping (sink.go's UpdateRows/deleteRow/
// upsertRow, resolved_table.go in full) has no analogue against an
// append-only HL7 feed and is dropped rather than adapted -- see
// DESIGN.md.
package warehousetest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// Seeder accepts HL7 fixture messages over HTTP and inserts them into
// a warehouse database, the test-only replacement for the teacher's
// per-table CDC Sink.
type Seeder struct {
	Pool *pgxpool.Pool
}

// HandleRequest reads one warehouse.Message per line from the request
// body and inserts each, mirroring the teacher's line-at-a-time
// scanning in Sink.HandleRequest.
func (s *Seeder) HandleRequest(w http.ResponseWriter, r *http.Request) {
	scanner := bufio.NewScanner(r.Body)
	defer r.Body.Close()

	for scanner.Scan() {
		var msg warehouse.Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			log.WithError(err).Warn("decoding seed message")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Insert(r.Context(), msg); err != nil {
			log.WithError(err).Warn("inserting seed message")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// Insert writes one fixture message's hl7_msh and hl7_visit rows.
func (s *Seeder) Insert(ctx context.Context, msg warehouse.Message) error {
	v := msg.Visit
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO hl7_msh (hl7_msh_id, message_datetime, message_type, message_control_id, facility)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hl7_msh_id) DO NOTHING`,
		msg.MSHID, msg.MessageDatetime, msg.MessageType, msg.MessageControlID, msg.Facility)
	if err != nil {
		return errors.Wrapf(err, "seeding hl7_msh %d", msg.MSHID)
	}

	_, err = s.Pool.Exec(ctx, `
		INSERT INTO hl7_visit (hl7_msh_id, visit_id, patient_class, patient_id,
			admit_datetime, discharge_datetime, gender, dob, zip, country, state,
			county, admission_source, assigned_patient_location, chief_complaint,
			disposition, race, service_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (hl7_msh_id) DO NOTHING`,
		msg.MSHID, v.VisitID, v.PatientClass, v.PatientID, v.AdmitDatetime,
		v.DischargeDatetime, v.Gender, v.DOB, v.Zip, v.Country, v.State, v.County,
		v.AdmissionSource, v.AssignedPatientLocation, v.ChiefComplaint, v.Disposition,
		v.Race, v.ServiceCode)
	return errors.Wrapf(err, "seeding hl7_visit for msh %d", msg.MSHID)
}

// Handler returns an http.Handler wrapping HandleRequest, for use in
// httptest.Server-backed integration tests.
func (s *Seeder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, fmt.Sprintf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
			return
		}
		s.HandleRequest(w, r)
	})
}
