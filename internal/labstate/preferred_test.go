package labstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferredCodePrefersOBXObservationID(t *testing.T) {
	obr := OBRCodes{LoincCode: "2160-0", LoincText: "Creatinine", Coding: "LN"}
	obx := OBXCodes{ObservationID: "2160-0", ObservationText: "Creat", Coding: "LN"}

	code, text, coding, err := PreferredCode(obr, obx)
	require.NoError(t, err)
	assert.Equal(t, "2160-0", code)
	assert.Equal(t, "Creat", text)
	assert.Equal(t, "LN", coding)
}

func TestPreferredCodeFallsBackToOBRWhenOBXEmpty(t *testing.T) {
	obr := OBRCodes{LoincCode: "2160-0", LoincText: "Creatinine", Coding: "LN"}
	code, text, coding, err := PreferredCode(obr, OBXCodes{})
	require.NoError(t, err)
	assert.Equal(t, "2160-0", code)
	assert.Equal(t, "Creatinine", text)
	assert.Equal(t, "LN", coding)
}

func TestPreferredCodeFallsBackToAltFields(t *testing.T) {
	obx := OBXCodes{AltID: "local-1", AltText: "Local test", AltCoding: "LOCAL"}
	code, text, coding, err := PreferredCode(OBRCodes{}, obx)
	require.NoError(t, err)
	assert.Equal(t, "local-1", code)
	assert.Equal(t, "Local test", text)
	assert.Equal(t, "LOCAL", coding)
}

func TestPreferredCodeErrorsWhenNothingAvailable(t *testing.T) {
	_, _, _, err := PreferredCode(OBRCodes{}, OBXCodes{})
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestPreferredFlagAbsentWhenNoFieldsSet(t *testing.T) {
	flag := PreferredFlag(OBXCodes{})
	assert.False(t, flag.Present)
}

func TestPreferredFlagPrefersPrimaryFields(t *testing.T) {
	obx := OBXCodes{AbnormID: "H", AbnormText: "High", AltAbnormID: "alt"}
	flag := PreferredFlag(obx)
	assert.True(t, flag.Present)
	assert.Equal(t, "H", flag.Code)
	assert.Equal(t, "High", flag.Text)
}

func TestPreferredFlagFallsBackToAltFields(t *testing.T) {
	obx := OBXCodes{AltAbnormID: "L", AltAbnormText: "Low"}
	flag := PreferredFlag(obx)
	assert.True(t, flag.Present)
	assert.Equal(t, "L", flag.Code)
	assert.Equal(t, "Low", flag.Text)
}
