// Package warehouse models the read-only, append-only HL7 v2 message
// store that feeds the longitudinal deduplication engine. The engine
// never writes to the warehouse; it only queries it.
package warehouse

import "time"

// VisitInfo is the visit-shaped portion of a message: demographics and
// encounter data as reported on that particular message.
type VisitInfo struct {
	VisitID                   string
	PatientClass              string // single character: E, I, O, U, ...
	PatientID                 string
	AdmitDatetime             *time.Time
	DischargeDatetime         *time.Time
	Gender                    string
	DOB                       string // HL7 date, e.g. "19720615" or "197206"
	Zip                       string
	Country                   string
	State                     string
	County                    string
	AdmissionSource           string
	AssignedPatientLocation   string
	ChiefComplaint            string
	Disposition               string
	Race                      string
	ServiceCode               string
}

// Dx is one diagnosis line on a message.
type Dx struct {
	Rank           int
	DxCode         string
	DxDescription  string
	DxType         string // status
}

// Obx is one observation-result segment embedded directly on a
// Message (used for clinical observations, not lab results — lab
// results come from ObservationData).
type Obx struct {
	ObservationID    string
	ObservationText  string
	Coding           string
	AltID            string
	AltText          string
	AltCoding        string
	ObservationResult string
	Units            string
	Sequence         string
	ResultStatus     string
	ReferenceRange   string
	PerformingLabCode string

	AbnormID      string
	AbnormText    string
	AbnormCoding  string
	AltAbnormID     string
	AltAbnormText   string
	AltAbnormCoding string

	OBXID int64
}

// Message is one immutable HL7 message as read from the warehouse.
type Message struct {
	MSHID            int64
	MessageDatetime  time.Time
	MessageType      string
	MessageControlID string
	Visit            VisitInfo
	Facility         string
	Dxes             []Dx
	Obxes            []Obx
}

// ObservationData is one OBR (observation request) with its
// associated OBX (observation result) rows, used to reconstruct lab
// results.
type ObservationData struct {
	MSHID               int64
	OBRID               int64
	ObservationDatetime time.Time
	ReportDatetime      time.Time
	Status              string
	LoincCode           string
	LoincText           string
	AltCode             string
	AltText             string
	Coding              string
	AltCoding           string
	SpecimenSource      string
	FillerOrderNo       string
	Obxes               []Obx
}

// Note is one NTE segment, attributable to either an OBR or an OBX.
type Note struct {
	OBRID          int64
	OBXID          *int64
	SequenceNumber int
	Note           string
}
