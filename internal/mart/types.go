// Package mart models the downstream star schema the longitudinal
// engine owns: one "visit" fact row per (visit_id, patient_class),
// its dimension foreign keys, the diagnosis/lab association tables,
// and the message_processed bookkeeping table that makes runs
// resumable.
package mart

import "time"

// Visit is the fact row for one (visit_id, patient_class).
type Visit struct {
	PK                int64
	VisitID           string
	PatientClass      string
	PatientID         string
	AdmitDatetime     *time.Time
	FirstMessage      time.Time
	LastMessage       time.Time
	DischargeDatetime *time.Time
	Age               *int
	DOB               string
	Gender            string
	EverInICU         bool
	// InfluenzaTestSummary carries the schema default of 99. The
	// engine never sets this column; it is surfaced read-only.
	InfluenzaTestSummary int
	LastUpdated          time.Time

	FacilityPK        *int64
	AdmissionSourcePK *int64
	AssignedLocationPK *int64
	AdmitReasonPK     *int64
	ChiefComplaintPK  *int64
	DispositionPK     *int64
	LocationPK        *int64
	RacePK            *int64
	ServiceAreaPK     *int64
	AdmissionTempPK   *int64
	AdmissionO2satPK  *int64
	FluVaccinePK      *int64
	H1N1VaccinePK     *int64
	PregnancyPK       *int64
}

// VisitDx associates a Visit with a Diagnosis dimension row. ICD9 is
// populated by ExistingDiagnoses (joined from dim_diagnosis) so
// callers can recover the dimension's real identity without a second
// round trip; it isn't a visit_dx column and InsertDiagnoses ignores
// it.
type VisitDx struct {
	VisitPK    int64
	DxPK       int64
	ICD9       string
	Status     string
	DxDatetime time.Time
	Rank       int
}

// VisitLab associates a Visit with a LabResult dimension row and its
// optional satellite dimensions. TestCode/TestText/Coding/Result/Units
// are populated by ExistingLabs (joined from dim_lab_result) so callers
// can recover the dimension's real identity without a second round
// trip; they aren't visit_lab columns and InsertLabs ignores them.
type VisitLab struct {
	VisitPK            int64
	LabResultPK        int64
	TestCode           string
	TestText           string
	Coding             string
	Result             string
	Units              string
	Status             string
	CollectionDatetime time.Time
	ReportDatetime     time.Time
	LabFlagPK          *int64
	OrderNumberPK      *int64
	ReferenceRangePK   *int64
	NotePK             *int64
	PerformingLabPK    *int64
	SpecimenSourcePK   *int64
}

// MessageProcessed tracks whether a warehouse message has contributed
// to the mart yet. ProcessedDatetime is nil until the owning worker
// finishes merging the visit.
type MessageProcessed struct {
	MSHID             int64
	MessageDatetime   time.Time
	VisitID           string
	ProcessedDatetime *time.Time
}

// ReportableRegion is a read-only association between a named region
// and a facility, consumed by the downstream report generator.
type ReportableRegion struct {
	RegionName   string
	FacilityNPI  int64
}
