package labstate

import (
	"time"

	"github.com/pbugni/pheme.longitudinal/internal/hl7xml"
	"github.com/pbugni/pheme.longitudinal/internal/warehouse"
)

// Result is one reconstructed lab result, accumulated from one or more
// OBX segments under a single OBR.
type Result struct {
	OBRID  int64
	OBXIDs []int64

	TestCode, TestText, Coding string
	Result                     string
	Units                      string
	Status                     string
	Flag                       Flag

	SpecimenSource  string
	PerformingLab   string
	OrderNumber     string
	ReferenceRange  string
	Note            *string

	CollectionDatetime, ReportDatetime time.Time
}

// appendResult concatenates a continuation value onto r.Result,
// truncating to MaxResultLen the way the source's append_result does.
func (r *Result) appendResult(value string, obxID int64) {
	r.OBXIDs = append(r.OBXIDs, obxID)
	if value == "" {
		return
	}
	combined := value
	if r.Result != "" {
		combined = r.Result + " " + value
	}
	if len(combined) > MaxResultLen {
		combined = combined[:MaxResultLen]
	}
	r.Result = combined
}

// MaxResultLen mirrors dimension.MaxResultLen; duplicated here to keep
// labstate free of a dependency on the dimension package.
const MaxResultLen = 500

// BuildLabs chunks a stream of observation requests and their OBX
// children into discrete Result values, using a NextLabState to decide
// where one lab result ends and the next begins.
func BuildLabs(obrs []warehouse.ObservationData) []Result {
	var labs []Result
	state := &NextLabState{}

	for _, obr := range obrs {
		state.TransitionNewOBR()
		for _, obx := range obr.Obxes {
			code, text, coding, err := PreferredCode(
				OBRCodes{
					LoincCode: obr.LoincCode, LoincText: obr.LoincText, Coding: obr.Coding,
					AltCode: obr.AltCode, AltText: obr.AltText, AltCoding: obr.AltCoding,
				},
				OBXCodes{
					ObservationID: obx.ObservationID, ObservationText: obx.ObservationText, Coding: obx.Coding,
					AltID: obx.AltID, AltText: obx.AltText, AltCoding: obx.AltCoding,
					AbnormID: obx.AbnormID, AbnormText: obx.AbnormText, AbnormCoding: obx.AbnormCoding,
					AltAbnormID: obx.AltAbnormID, AltAbnormText: obx.AltAbnormText, AltAbnormCoding: obx.AltAbnormCoding,
				},
			)
			if err != nil {
				obxSkipped.Inc()
				continue
			}

			result := hl7xml.Strip(obx.ObservationResult)
			state.TransitionNewOBX(obx.Sequence, code)

			if state.Index() == len(labs) {
				labs = append(labs, Result{
					OBRID:              obr.OBRID,
					OBXIDs:             []int64{obx.OBXID},
					TestCode:           code,
					TestText:           text,
					Coding:             coding,
					Result:             result,
					Units:              obx.Units,
					Status:             obr.Status,
					Flag: PreferredFlag(OBXCodes{
						AbnormID: obx.AbnormID, AbnormText: obx.AbnormText, AbnormCoding: obx.AbnormCoding,
						AltAbnormID: obx.AltAbnormID, AltAbnormText: obx.AltAbnormText, AltAbnormCoding: obx.AltAbnormCoding,
					}),
					SpecimenSource:     obr.SpecimenSource,
					PerformingLab:      obx.PerformingLabCode,
					OrderNumber:        obr.FillerOrderNo,
					ReferenceRange:     obx.ReferenceRange,
					CollectionDatetime: obr.ObservationDatetime,
					ReportDatetime:     obr.ReportDatetime,
				})
				continue
			}

			labs[state.Index()].appendResult(result, obx.OBXID)
		}
	}
	labsBuilt.Add(float64(len(labs)))
	return labs
}

// AttachNotes stitches free-text NTE segments onto the Result they
// belong to, matching on either the owning OBR or one of the
// constituent OBX ids. Multiple note segments for the same lab are
// joined in sequence_number order.
func AttachNotes(labs []Result, notes []warehouse.Note) {
	byOBR := make(map[int64]*Result, len(labs))
	byOBX := make(map[int64]*Result)
	for i := range labs {
		byOBR[labs[i].OBRID] = &labs[i]
		for _, id := range labs[i].OBXIDs {
			byOBX[id] = &labs[i]
		}
	}

	for _, n := range notes {
		var target *Result
		if n.OBXID != nil {
			target = byOBX[*n.OBXID]
		}
		if target == nil {
			target = byOBR[n.OBRID]
		}
		if target == nil {
			continue
		}
		if target.Note == nil {
			target.Note = new(string)
		}
		if *target.Note == "" {
			*target.Note = n.Note
		} else {
			*target.Note = *target.Note + " " + n.Note
		}
	}
}
