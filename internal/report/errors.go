// Package report generates the flat surveillance file the mart's
// essence view feeds to the public-health agency, grounded on
// generate_daily_essence_report.py.
package report

import "github.com/pkg/errors"

// ErrUnknownRegion is returned when Criteria.Region names a region
// absent from reportable_region, replacing the source's
// error_callback-driven parser.error exit.
var ErrUnknownRegion = errors.New("report: unknown reportable region")

// ErrVitalsNotImplemented is returned by Criteria.Validate when
// IncludeVitals is requested. _build_vitals_join_table was never
// finished in the source (it unconditionally raised
// ValueError('not ported yet')); the core report surface carries the
// same restriction rather than silently ignoring the option.
var ErrVitalsNotImplemented = errors.New("report: vitals columns are not implemented")

// ErrNotImplemented names the source's difference-transport path.
// _transmit_differences's non-trivial-date-range branch unconditionally
// raised ValueError("RemoveDuplicates not ported"). Generate has no
// difference-transport mode, and no function in this package returns
// this error.
var ErrNotImplemented = errors.New("report: difference transport is not implemented")
