// Package datefile persists the manager's last-processed report date
// across runs, grounded on longitudinal_manager.py's Datefile /
// --countdown {forwards,backwards} behavior.
package datefile

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Direction selects how BumpDate advances the persisted date between
// runs. The empty Direction disables persistence entirely: an explicit
// --date always wins and nothing is written back.
type Direction string

const (
	Forwards  Direction = "forwards"
	Backwards Direction = "backwards"
)

const layout = "2006-01-02"

// Datefile tracks the report date a manager run should use, and how
// it moves for the next run.
type Datefile struct {
	path      string
	direction Direction
	date      time.Time
	hasDate   bool
}

// New resolves the report date for this run. If initial is non-nil
// (the user passed --date), it is used directly and the persisted
// file is left untouched by Date, though BumpDate will still seed it
// when direction is set. Otherwise, when direction is set, the date is
// read from path (defaulting to today if the file doesn't exist yet).
// With neither initial nor direction, Date reports "whole database"
// mode.
func New(initial *time.Time, path string, direction Direction) (*Datefile, error) {
	d := &Datefile{path: path, direction: direction}

	switch {
	case initial != nil:
		d.date = truncateToDay(*initial)
		d.hasDate = true
	case direction != "":
		persisted, err := readDate(path)
		if err != nil {
			return nil, err
		}
		d.date = persisted
		d.hasDate = true
	}
	return d, nil
}

// Date returns the resolved report date, and false if the manager
// should process the entire database instead of one day.
func (d *Datefile) Date() (time.Time, bool) {
	return d.date, d.hasDate
}

// BumpDate advances the persisted date by one day in Direction and
// writes it back, a no-op if Direction is unset.
func (d *Datefile) BumpDate() error {
	if d.direction == "" {
		return nil
	}
	delta := 24 * time.Hour
	if d.direction == Backwards {
		delta = -delta
	}
	next := d.date.Add(delta)
	if err := writeDate(d.path, next); err != nil {
		return err
	}
	d.date = next
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func readDate(path string) (time.Time, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return truncateToDay(time.Now()), nil
	}
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "reading datefile %q", path)
	}
	t, err := time.Parse(layout, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing datefile %q contents", path)
	}
	return t, nil
}

func writeDate(path string, t time.Time) error {
	return errors.Wrapf(
		os.WriteFile(path, []byte(t.Format(layout)+"\n"), 0o644),
		"writing datefile %q", path,
	)
}
