package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pbugni/pheme.longitudinal/internal/mart"
)

// RegionValidator checks a reportable-region name against the mart's
// read-only association table, the Go replacement for the source's
// db-validating reportable_region property setter.
type RegionValidator interface {
	ReportableRegions(ctx context.Context) ([]mart.ReportableRegion, error)
}

// Criteria defines one report run: the date range, and optional
// restrictions to a reportable region and/or a single patient class.
// Construction never touches the database; call Validate once the
// database is reachable.
type Criteria struct {
	StartDate     time.Time
	EndDate       time.Time
	Region        string
	PatientClass  string
	IncludeVitals bool
}

// Validate checks Criteria against the database and the supported
// patient-class values, returning ErrUnknownRegion or
// ErrVitalsNotImplemented as appropriate. It must be called before
// Generate.
func (c Criteria) Validate(ctx context.Context, regions RegionValidator) error {
	if c.PatientClass != "" {
		switch c.PatientClass {
		case "E", "I", "O":
		default:
			return errors.Errorf("patient_class limited to one of [E,I,O], got %q", c.PatientClass)
		}
	}
	if c.IncludeVitals {
		return ErrVitalsNotImplemented
	}
	if c.Region == "" {
		return nil
	}
	rows, err := regions.ReportableRegions(ctx)
	if err != nil {
		return errors.Wrap(err, "validating reportable region")
	}
	for _, r := range rows {
		if r.RegionName == c.Region {
			return nil
		}
	}
	return errors.Wrapf(ErrUnknownRegion, "%q not found in reportable_region", c.Region)
}

// ReportMethod is persisted as internal_report.report_method, uniquely
// identifying a report definition so "include updates" runs can find
// the last like report. Unlike the source, there's no duplicate
// dead-code property definition to carry forward -- Region is defined
// exactly once above.
func (c Criteria) ReportMethod() string {
	method := "essence_report:" + version
	method += ":" + c.Region
	method += ":" + c.PatientClass
	return method
}

const version = "0.2"
