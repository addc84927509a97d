package worker

import (
	"strconv"
	"time"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
)

// dobDatetime interprets an HL7 DOB string of varying precision
// ("19720615", "197206", or "1972") as a calendar date, defaulting an
// unknown day-of-month to the 15th, matching the approximation the
// source's age calculation was built against.
func dobDatetime(dob string) (time.Time, bool) {
	if len(dob) < 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(dob[:4])
	if err != nil {
		return time.Time{}, false
	}
	month := 6
	if len(dob) >= 6 {
		if m, err := strconv.Atoi(dob[4:6]); err == nil {
			month = m
		}
	}
	day := 15
	if len(dob) >= 8 {
		if d, err := strconv.Atoi(dob[6:8]); err == nil {
			day = d
		}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// yearDiff is a birthday-aware whole-year difference between dob and
// asOf, the way a person's age is normally reported.
func yearDiff(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	dobAnniversary := time.Date(asOf.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	if asOf.Before(dobAnniversary) {
		years--
	}
	return years
}

// calculateAge fills visit.Age from dob/admit_datetime when the
// clinical-observation pathway (LOINC 29553-5) didn't already supply
// it. Negative results — a newborn admitted before the mid-month day
// assumed above — clamp to 0.
func calculateAge(visit *mart.Visit) {
	if visit.Age != nil {
		return
	}
	if visit.DOB == "" {
		return
	}
	if visit.AdmitDatetime == nil {
		return
	}
	dob, ok := dobDatetime(visit.DOB)
	if !ok {
		return
	}
	age := yearDiff(dob, *visit.AdmitDatetime)
	if age < 0 {
		age = 0
	}
	visit.Age = &age
}
