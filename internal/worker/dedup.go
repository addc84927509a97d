package worker

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/pbugni/pheme.longitudinal/internal/dimension"
	"github.com/pbugni/pheme.longitudinal/internal/labstate"
	"github.com/pbugni/pheme.longitudinal/internal/mart"
	"github.com/pbugni/pheme.longitudinal/internal/surrogate"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

const (
	msgTypeOrder = "ORM^O01^ORM_O01"
	msgTypeORU   = "ORU^R01^ORU_R01"
)

// patientClassHasOwnVisit holds the patient classes an ORU message's
// lack thereof is used to distinguish lab data (carries no class) from
// clinical observations reported against a known class.
var patientClassHasOwnVisit = map[string]bool{"E": true, "I": true, "O": true}

// dedupVisit merges every unprocessed message for visit_id into one
// surrogate.Visit per patient_class, persists the result, and marks
// the contributing messages processed. It is the Go counterpart of the
// source's dedupVisit/_load_surrogates/_handle_new_visit/_commit_visit
// trio, restructured around explicit Outcome values instead of
// string-matched log lines.
func (w *Worker) dedupVisit(ctx context.Context, visitID string) (Outcome, error) {
	surrogates, err := w.loadSurrogates(ctx, visitID)
	if err != nil {
		return OutcomeMerged, errors.Wrap(err, "loading existing surrogates")
	}

	// Snapshot each loaded row before any message is merged so the
	// commit-time dirty check sees every change made during this run.
	loaded := make(map[string]mart.Visit, len(surrogates))
	for pc, sv := range surrogates {
		loaded[pc] = *sv.Mart
	}

	messages, err := w.messagesToMerge(ctx, visitID)
	if err != nil {
		return OutcomeMerged, errors.Wrap(err, "loading messages to merge")
	}

	var observationMessages, clinicalMessages []warehouse.Message
	var noClassMin, noClassMax time.Time

	for _, message := range messages {
		if message.MessageType == msgTypeOrder {
			continue
		}

		if message.MessageType == msgTypeORU {
			if noClassMax.IsZero() || message.MessageDatetime.After(noClassMax) {
				noClassMax = message.MessageDatetime
			}
			if noClassMin.IsZero() || message.MessageDatetime.Before(noClassMin) {
				noClassMin = message.MessageDatetime
			}
			if patientClassHasOwnVisit[message.Visit.PatientClass] {
				clinicalMessages = append(clinicalMessages, message)
			} else {
				observationMessages = append(observationMessages, message)
			}
			continue
		}

		pc := message.Visit.PatientClass
		if pc == "U" {
			if len(surrogates) != 1 {
				log.WithError(ErrAmbiguousPatientClass).Errorf("message '%s' for visit '%s'",
					message.MessageControlID, visitID)
				continue
			}
			for k := range surrogates {
				pc = k
			}
		}

		sv := surrogates[pc]
		if sv == nil {
			sv, err = w.newSurrogate(ctx, message)
			if err != nil {
				return OutcomeMerged, errors.Wrap(err, "handling new visit")
			}
			surrogates[pc] = sv
		}

		// Reject stale messages before first_message/last_message are
		// extended, not after: checking post-update (as the source
		// does) compares last_message to itself and can never trigger.
		if message.MessageDatetime.Before(sv.Mart.LastMessage) {
			log.WithError(ErrStaleMessage).Warnf("skipping message '%s' for visit '%s'",
				message.MessageControlID, visitID)
			continue
		}
		if sv.Mart.FirstMessage.IsZero() || message.MessageDatetime.Before(sv.Mart.FirstMessage) {
			sv.Mart.FirstMessage = message.MessageDatetime
		}
		if message.MessageDatetime.After(sv.Mart.LastMessage) {
			sv.Mart.LastMessage = message.MessageDatetime
		}

		mergeScalarFields(sv.Mart, message.Visit)

		if anyNonEmpty(message.Visit.Zip, message.Visit.Country, message.Visit.State, message.Visit.County) {
			sv.SetLocation(message.Visit.Zip, message.Visit.Country, message.Visit.State, message.Visit.County)
		}
		if message.Visit.AdmissionSource != "" {
			sv.SetAdmissionSource(message.Visit.AdmissionSource)
		}
		if message.Visit.AssignedPatientLocation != "" {
			sv.SetAssignedLocation(message.Visit.AssignedPatientLocation)
		}
		if cc := strings.TrimSpace(message.Visit.ChiefComplaint); cc != "" {
			sv.SetAdmitReason(message.Visit.ChiefComplaint)
			sv.SetChiefComplaintField(message.Visit.ChiefComplaint)
		}
		if message.Visit.Disposition != "" {
			sv.SetDisposition(message.Visit.Disposition)
		}
		if message.Visit.Race != "" {
			sv.SetRace(message.Visit.Race)
		}
		if message.Visit.ServiceCode != "" {
			sv.SetServiceArea(message.Visit.ServiceCode)
		}

		for _, dx := range message.Dxes {
			if strings.TrimSpace(dx.DxCode) == "" {
				continue
			}
			sv.Diagnoses.Add(surrogate.Diagnosis{
				Rank:        dx.Rank,
				ICD9:        dx.DxCode,
				Description: dx.DxDescription,
				Status:      dx.DxType,
				DxDatetime:  message.MessageDatetime,
			})
		}
		for _, obx := range message.Obxes {
			if !surrogate.IsClinicalCode(obx.ObservationID) {
				continue
			}
			if err := sv.AddClinicalObservation(obx.ObservationID, obx.ObservationResult, obx.Units); err != nil {
				return OutcomeMerged, errors.Wrap(err, "adding clinical observation")
			}
		}
	}

	canceled := false
	for pc, sv := range surrogates {
		if sv.Mart.AdmitDatetime == nil {
			log.WithError(ErrCanceledVisit).Warnf("visit %s : %s", visitID, pc)
			canceled = true
			continue
		}
		if sv.Mart.PK == 0 {
			if err := w.Mart.InsertVisit(ctx, sv.Mart); err != nil {
				return OutcomeMerged, errors.Wrap(err, "inserting new visit")
			}
			log.Debugf("%s: new visit added '%s'", w.Name, sv.Mart.VisitID)
		}
	}
	if canceled {
		if err := w.Mart.MarkVisitProcessed(ctx, visitID, time.Now()); err != nil {
			return OutcomeCanceled, errors.Wrap(err, "marking canceled visit processed")
		}
		return OutcomeCanceled, nil
	}

	// Lab data carries no patient class and must be associated with
	// every surrogate regardless of patient_class.
	if len(observationMessages) > 0 && len(surrogates) > 0 {
		if err := w.attachLabs(ctx, observationMessages, surrogates); err != nil {
			return OutcomeMerged, err
		}
	}

	// The patient class reported on observation messages isn't
	// reliable; clinical data is likewise associated with every
	// surrogate regardless of patient_class.
	if len(clinicalMessages) > 0 && len(surrogates) > 0 {
		for _, message := range clinicalMessages {
			for _, obx := range message.Obxes {
				if !surrogate.IsClinicalCode(obx.ObservationID) {
					continue
				}
				for _, sv := range surrogates {
					if err := sv.AddClinicalObservation(obx.ObservationID, obx.ObservationResult, obx.Units); err != nil {
						return OutcomeMerged, errors.Wrap(err, "adding clinical observation")
					}
				}
			}
		}
	}

	for pc, sv := range surrogates {
		// A surrogate created during this run has no snapshot; its zero
		// Visit always differs from the row, so it is committed.
		before := loaded[pc]

		relatedChanges, err := sv.Establish(ctx, w.Resolver, w.Mart)
		if err != nil {
			return OutcomeMerged, errors.Wrap(err, "establishing dimension associations")
		}

		if !noClassMin.IsZero() && noClassMin.Before(sv.Mart.FirstMessage) {
			sv.Mart.FirstMessage = noClassMin
		}
		if !noClassMax.IsZero() && noClassMax.After(sv.Mart.LastMessage) {
			sv.Mart.LastMessage = noClassMax
		}
		calculateAge(sv.Mart)

		if err := w.commitVisit(ctx, sv.Mart, before, relatedChanges); err != nil {
			return OutcomeMerged, err
		}
	}

	if err := w.Mart.MarkVisitProcessed(ctx, visitID, time.Now()); err != nil {
		return OutcomeMerged, errors.Wrap(err, "marking visit processed")
	}
	return OutcomeMerged, nil
}

// commitVisit persists visit only if forced (new associations were
// added) or something about the row actually changed since before was
// snapshotted, the hand-rolled equivalent of the source's
// session.is_modified() dirty check.
func (w *Worker) commitVisit(ctx context.Context, visit *mart.Visit, before mart.Visit, forced bool) error {
	beforeCmp, afterCmp := before, *visit
	beforeCmp.LastUpdated, afterCmp.LastUpdated = time.Time{}, time.Time{}
	if !forced && reflect.DeepEqual(beforeCmp, afterCmp) {
		log.Debugf("%s: skipped commit(), '%s' doesn't look dirty", w.Name, visit.VisitID)
		return nil
	}
	start := time.Now()
	err := w.Mart.CommitVisit(ctx, visit)
	visitCommitDurations.WithLabelValues(visit.PatientClass).Observe(time.Since(start).Seconds())
	if err != nil {
		return errors.Wrap(err, "committing visit")
	}
	log.Infof("%s: commit merged ER visit %s with admit_datetime %v", w.Name, visit.VisitID, visit.AdmitDatetime)
	return nil
}

func (w *Worker) loadSurrogates(ctx context.Context, visitID string) (map[string]*surrogate.Visit, error) {
	rows, err := w.Mart.LoadVisits(ctx, visitID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*surrogate.Visit, len(rows))
	for i := range rows {
		v := rows[i]
		out[v.PatientClass] = surrogate.NewVisit(&v)
	}
	return out, nil
}

func (w *Worker) messagesToMerge(ctx context.Context, visitID string) ([]warehouse.Message, error) {
	mshIDs, err := w.Mart.UnprocessedMessageIDs(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if len(mshIDs) == 0 {
		return nil, nil
	}
	return w.Warehouse.MessagesByID(ctx, mshIDs)
}

// newSurrogate builds the first visit row for a (visit_id,
// patient_class) pair just surfaced by message, mirroring
// _handle_new_visit. Facility is resolved eagerly since fact_visit.
// dim_facility_pk is not nullable.
func (w *Worker) newSurrogate(ctx context.Context, message warehouse.Message) (*surrogate.Visit, error) {
	npi, err := strconv.ParseInt(message.Facility, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing facility NPI %q", message.Facility)
	}
	facilityPK, err := w.Resolver.Fetch(ctx, dimension.NewFacility(npi, ""))
	if err != nil {
		return nil, errors.Wrap(err, "resolving facility")
	}

	mv := &mart.Visit{
		VisitID:       message.Visit.VisitID,
		PatientClass:  message.Visit.PatientClass,
		PatientID:     message.Visit.PatientID,
		AdmitDatetime: message.Visit.AdmitDatetime,
		FirstMessage:  message.MessageDatetime,
		LastMessage:   message.MessageDatetime,
		FacilityPK:    &facilityPK,
	}
	return surrogate.NewVisit(mv), nil
}

// mergeScalarFields applies "last non-empty wins" to the fact_visit
// columns carried directly on the message, matching the source's loop
// over admit_datetime/discharge_datetime/gender/dob (disposition is
// deliberately excluded: fact_visit has no raw disposition column, so
// the source's corresponding assignment is inert and not worth
// reproducing — disposition is resolved via SetDisposition instead).
func mergeScalarFields(v *mart.Visit, vi warehouse.VisitInfo) {
	if vi.AdmitDatetime != nil && (v.AdmitDatetime == nil || !vi.AdmitDatetime.Equal(*v.AdmitDatetime)) {
		v.AdmitDatetime = vi.AdmitDatetime
	}
	if vi.DischargeDatetime != nil && (v.DischargeDatetime == nil || !vi.DischargeDatetime.Equal(*v.DischargeDatetime)) {
		v.DischargeDatetime = vi.DischargeDatetime
	}
	if vi.Gender != "" && vi.Gender != v.Gender {
		v.Gender = vi.Gender
	}
	if vi.DOB != "" && vi.DOB != v.DOB {
		v.DOB = vi.DOB
	}
}

func anyNonEmpty(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// attachLabs reconstructs discrete lab results from observationMessages
// and binds them to every surrogate, labs carrying no patient_class of
// their own.
func (w *Worker) attachLabs(ctx context.Context, observationMessages []warehouse.Message, surrogates map[string]*surrogate.Visit) error {
	mshIDs := make([]int64, 0, len(observationMessages))
	for _, m := range observationMessages {
		mshIDs = append(mshIDs, m.MSHID)
	}

	obrs, err := w.Warehouse.ObservationsByMessage(ctx, mshIDs)
	if err != nil {
		return errors.Wrap(err, "loading observation data")
	}
	labs := labstate.BuildLabs(obrs)
	if len(labs) == 0 {
		return nil
	}

	obrIDs := make([]int64, 0, len(labs))
	var obxIDs []int64
	for _, lab := range labs {
		obrIDs = append(obrIDs, lab.OBRID)
		obxIDs = append(obxIDs, lab.OBXIDs...)
	}
	notes, err := w.Warehouse.NotesFor(ctx, obrIDs, obxIDs)
	if err != nil {
		return errors.Wrap(err, "loading notes")
	}
	labstate.AttachNotes(labs, notes)

	for _, sv := range surrogates {
		for _, lab := range labs {
			sv.Labs.Add(surrogate.FromResult(lab))
		}
	}
	return nil
}
