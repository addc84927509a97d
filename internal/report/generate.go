package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
)

// Store is the narrow slice of mart.Store Generate needs, satisfied by
// *mart.PGStore. Keeping it local (rather than widening mart.Store
// itself) avoids forcing every mart.Store fake in the codebase to grow
// report-only methods.
type Store interface {
	RegionValidator
	EssenceRows(ctx context.Context, q mart.EssenceQuery) ([]mart.EssenceRow, error)
	VisitDiagnoses(ctx context.Context, visitPK int64) ([]string, error)
}

var columnHeaders = []string{
	"Hosp", "Reg Date", "Time", "Sex", "Age", "Reason For Visit",
	"Zip Code", "Diagnosis", "Admit Status", "Medical Record No.",
	"Visit Record No.", "Service Area",
}

// Header returns the pipe-delimited column header line. When
// Criteria.PatientClass is set the "Service Area" column is omitted,
// matching the source's _prepare_columns splitting on
// patient_class_column_index.
func Header(c Criteria) string {
	headers := columnHeaders
	if c.PatientClass != "" {
		headers = headers[:len(headers)-1]
	}
	return strings.Join(headers, "|")
}

// Generate writes the pipe-delimited surveillance report for c to w:
// a header line followed by one data row per matching visit. Criteria
// must already have been validated via Criteria.Validate.
func Generate(ctx context.Context, store Store, c Criteria, w io.Writer) error {
	if _, err := fmt.Fprintln(w, Header(c)); err != nil {
		return errors.Wrap(err, "writing report header")
	}

	rows, err := store.EssenceRows(ctx, mart.EssenceQuery{
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Region:       c.Region,
		PatientClass: c.PatientClass,
	})
	if err != nil {
		return errors.Wrap(err, "querying essence rows")
	}

	for _, row := range rows {
		dx, err := store.VisitDiagnoses(ctx, row.VisitPK)
		if err != nil {
			return errors.Wrapf(err, "loading diagnoses for visit_pk %d", row.VisitPK)
		}
		if err := writeRow(w, c, row, dx); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, c Criteria, row mart.EssenceRow, dx []string) error {
	fields := []string{
		row.Hospital,
		row.VisitDate.Format("2006-01-02"),
		row.VisitTime,
		row.Gender,
		ageString(row.Age),
		row.ChiefComplaint,
		row.Zip,
		strings.Join(dx, " "),
		row.GipseDisposition,
		row.PatientID,
		row.VisitID,
	}
	if c.PatientClass == "" {
		fields = append(fields, row.PatientClass)
	}
	_, err := fmt.Fprintln(w, strings.Join(fields, "|"))
	return errors.Wrap(err, "writing report row")
}

func ageString(age *int) string {
	if age == nil {
		return ""
	}
	return strconv.Itoa(*age)
}

// dateRange turns a single report date into the [start, end] pair
// Criteria expects, the 24-hour window described in spec.md's
// "Generates a daily report ... includes the 24 hour period".
func dateRange(reportDate time.Time) (time.Time, time.Time) {
	day := truncateToDay(reportDate)
	return day, day
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
