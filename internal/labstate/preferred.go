package labstate

import "github.com/pkg/errors"

// ErrNoCode is returned when neither the OBX nor its OBR carry any
// usable code, text, or coding system.
var ErrNoCode = errors.New("labstate: no valid codes found for OBX or OBR")

// OBRCodes is the subset of an observation request's code fields
// PreferredCode falls back to when the OBX doesn't carry one.
type OBRCodes struct {
	LoincCode, LoincText, Coding string
	AltCode, AltText, AltCoding  string
}

// OBXCodes is the subset of an observation result's code fields
// PreferredCode and PreferredFlag read from.
type OBXCodes struct {
	ObservationID, ObservationText, Coding string
	AltID, AltText, AltCoding              string
	AbnormID, AbnormText, AbnormCoding     string
	AltAbnormID, AltAbnormText, AltAbnormCoding string
}

// PreferredCode picks the best (code, text, coding) triple for a lab
// result, preferring the OBX's standardized coding, then its local
// coding, then falling back to the owning OBR's equivalents.
func PreferredCode(obr OBRCodes, obx OBXCodes) (code, text, coding string, err error) {
	switch {
	case obx.ObservationID != "":
		return obx.ObservationID, obx.ObservationText, obx.Coding, nil
	case obx.AltID != "":
		return obx.AltID, obx.AltText, obx.AltCoding, nil
	case obr.LoincCode != "":
		return obr.LoincCode, obr.LoincText, obr.Coding, nil
	case obr.AltCode != "":
		return obr.AltCode, obr.AltText, obr.AltCoding, nil
	default:
		return "", "", "", ErrNoCode
	}
}

// Flag is the identifying data for an abnormality flag on a lab
// result, or the zero value if the OBX carries none.
type Flag struct {
	Present bool
	Code    string
	Text    string
	Coding  string
}

// PreferredFlag extracts the best available abnormality flag data from
// an OBX, preferring the primary abnorm_* fields over the alt_abnorm_*
// ones. Flag.Present is false when the OBX carries no flag data at
// all.
func PreferredFlag(obx OBXCodes) Flag {
	if obx.AbnormID == "" && obx.AbnormText == "" && obx.AbnormCoding == "" &&
		obx.AltAbnormID == "" && obx.AltAbnormText == "" && obx.AltAbnormCoding == "" {
		return Flag{}
	}
	if obx.AbnormID != "" || obx.AbnormText != "" || obx.AbnormCoding != "" {
		return Flag{Present: true, Code: obx.AbnormID, Text: obx.AbnormText, Coding: obx.AbnormCoding}
	}
	return Flag{Present: true, Code: obx.AltAbnormID, Text: obx.AltAbnormText, Coding: obx.AltAbnormCoding}
}
