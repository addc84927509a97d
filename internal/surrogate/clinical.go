package surrogate

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pbugni/pheme.longitudinal/internal/hl7xml"
)

// Clinical LOINC codes the engine tracks as satellite visit attributes.
// TODO(43137-9): Clinical Finding - CONDITION OF INTEREST PRESENT is not
// yet wired to a handler.
const (
	LoincChiefComplaint    = "8661-1"
	LoincPatientAge        = "29553-5"
	LoincInfluenzaVaccine  = "46077-4"
	LoincH1N1Vaccine       = "29544-4"
	LoincO2Saturation1     = "20564-1"
	LoincO2Saturation2     = "59408-5"
	LoincBodyTemp          = "8310-5"
	LoincPregnancy         = "11449-6"
)

// ClinicalObservation is one clinical-interest OBX reading, stripped
// of its XML wrapper and ready for dispatch.
type ClinicalObservation struct {
	Code   string
	Result string
	Units  string
}

// clinicalHandler applies one ClinicalObservation's result to a Visit
// accumulator. Replaces the source's per-LOINC ClinicalInfo subclass
// hierarchy with a table-driven dispatch over a tagged value.
type clinicalHandler func(v *Visit, obs ClinicalObservation) error

var clinicalHandlers = map[string]clinicalHandler{
	LoincChiefComplaint:   handleChiefComplaint,
	LoincPatientAge:       handlePatientAge,
	LoincInfluenzaVaccine: handleInfluenzaVaccine,
	LoincH1N1Vaccine:      handleH1N1Vaccine,
	LoincO2Saturation1:    handleO2Saturation,
	LoincO2Saturation2:    handleO2Saturation,
	LoincBodyTemp:         handleBodyTemp,
	LoincPregnancy:        handlePregnancy,
}

// IsClinicalCode reports whether code has a registered handler.
func IsClinicalCode(code string) bool {
	_, ok := clinicalHandlers[code]
	return ok
}

// ErrInvalidUnits is returned when a clinical observation's reported
// units don't match what its handler expects, replacing the source's
// bare ValueError with a sentinel callers can check via errors.Is.
var ErrInvalidUnits = errors.New("surrogate: invalid clinical observation units")

func handleChiefComplaint(v *Visit, obs ClinicalObservation) error {
	v.ChiefComplaint = obs.Result
	return nil
}

func handlePatientAge(v *Visit, obs ClinicalObservation) error {
	if obs.Units != "Years" {
		// Schema only holds whole years; let the admit/dob based
		// fallback calculation take over instead.
		return nil
	}
	age, err := strconv.Atoi(obs.Result)
	if err != nil {
		return errors.Wrapf(err, "parsing patient age %q", obs.Result)
	}
	v.Age = &age
	return nil
}

func handleInfluenzaVaccine(v *Visit, obs ClinicalObservation) error {
	v.FluVaccineStatus = obs.Result
	return nil
}

func handleH1N1Vaccine(v *Visit, obs ClinicalObservation) error {
	v.H1N1VaccineStatus = obs.Result
	return nil
}

func handleO2Saturation(v *Visit, obs ClinicalObservation) error {
	if obs.Units != "Percent" && obs.Units != "PercentOxygen[Volume Fraction Units]" {
		return errors.Wrapf(ErrInvalidUnits, "unexpected o2 saturation units %q", obs.Units)
	}
	result := strings.TrimSuffix(obs.Result, ".")
	pct, err := strconv.Atoi(result)
	if err != nil {
		return errors.Wrapf(err, "parsing o2 saturation %q", obs.Result)
	}
	v.AdmissionO2satPercent = &pct
	return nil
}

func handleBodyTemp(v *Visit, obs ClinicalObservation) error {
	if obs.Units != "Degree Fahrenheit [Temperature]" {
		return errors.Wrapf(ErrInvalidUnits, "unexpected body temp units %q", obs.Units)
	}
	f, err := strconv.ParseFloat(obs.Result, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing body temp %q", obs.Result)
	}
	degree := strconv.FormatFloat(f, 'f', 1, 64)
	v.AdmissionTempFahrenheit = &degree
	return nil
}

func handlePregnancy(v *Visit, obs ClinicalObservation) error {
	// A CE-typed OBX value; the status we care about lives in the
	// second caret-delimited subcomponent (e.g. "A^pos^B" -> "pos").
	segments := strings.Split(obs.Result, "^")
	if len(segments) < 2 {
		return errors.Errorf("malformed pregnancy observation %q", obs.Result)
	}
	v.PregnancyStatus = segments[1]
	return nil
}

// StripResult removes Mirth's XML wrapper around a free-text OBX-5
// value, as the source does before constructing any ClinicalInfo.
func StripResult(raw string) string {
	return hl7xml.Strip(raw)
}
