// Package dimension implements the select-or-insert primitive shared by
// every reference table the mart schema hangs off the visit fact row,
// and the catalog of concrete dimensions it operates over.
package dimension

import "github.com/pkg/errors"

// ErrAmbiguous is returned when a select-or-insert lookup matches more
// than one row on its identifying columns. The dimension tables are
// expected to carry a uniqueness constraint over those columns; seeing
// this means that constraint is missing or has been violated.
var ErrAmbiguous = errors.New("dimension: identifying columns matched more than one row")
