package surrogate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddClinicalObservationIgnoresRepeatCode(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincInfluenzaVaccine, "Y", ""))
	require.NoError(t, v.AddClinicalObservation(LoincInfluenzaVaccine, "N", ""))
	assert.Equal(t, "Y", v.FluVaccineStatus)
}

func TestAddClinicalObservationIgnoresEmptyResult(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincInfluenzaVaccine, "   ", ""))
	assert.Empty(t, v.FluVaccineStatus)
}

func TestAddClinicalObservationUnknownCodeIsNoop(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation("99999-9", "x", ""))
}

func TestPatientAgeSkippedForNonYearUnits(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincPatientAge, "45", "Months"))
	assert.Nil(t, v.Age)
}

func TestPatientAgeParsedForYears(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincPatientAge, "45", "Years"))
	require.NotNil(t, v.Age)
	assert.Equal(t, 45, *v.Age)
}

func TestO2SaturationStripsTrailingPeriod(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincO2Saturation1, "97.", "Percent"))
	require.NotNil(t, v.AdmissionO2satPercent)
	assert.Equal(t, 97, *v.AdmissionO2satPercent)
}

func TestO2SaturationRejectsUnexpectedUnits(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	err := v.AddClinicalObservation(LoincO2Saturation1, "97", "bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUnits))
}

func TestBodyTempRoundsToOneDecimal(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincBodyTemp, "98.6001", "Degree Fahrenheit [Temperature]"))
	require.NotNil(t, v.AdmissionTempFahrenheit)
	assert.Equal(t, "98.6", *v.AdmissionTempFahrenheit)
}

func TestPregnancyTakesSecondCaretSegment(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincPregnancy, "A^pos^B", ""))
	assert.Equal(t, "pos", v.PregnancyStatus)
}

func TestChiefComplaintFromClinicalObservation(t *testing.T) {
	v := NewVisit(emptyMartVisit())
	require.NoError(t, v.AddClinicalObservation(LoincChiefComplaint, "abdominal pain", ""))
	assert.Equal(t, "abdominal pain", v.ChiefComplaint)
}
