// Package staticdata exports and imports the small set of install-
// specific dimension tables (admission_source, disposition, facility,
// reportable_region) as YAML, grounded on static_data.py.
package staticdata

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AdmissionSource is dim_admission_source's single-character code plus
// its free-text description.
type AdmissionSource struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// Disposition is dim_disposition's numeric code plus the two mapping
// columns downstream reports join against.
type Disposition struct {
	Code          int    `yaml:"code"`
	GipseMapping  string `yaml:"gipse_mapping"`
	OdinMapping   string `yaml:"odin_mapping"`
	Description   string `yaml:"description"`
}

// Facility is dim_facility, keyed by NPI.
type Facility struct {
	NPI              int64  `yaml:"npi"`
	LocalCode        string `yaml:"local_code"`
	OrganizationName string `yaml:"organization_name"`
	Zip              string `yaml:"zip"`
	County           string `yaml:"county"`
}

// ReportableRegion associates a named region with a facility. It must
// be loaded after the Facility rows it references: see Load.
type ReportableRegion struct {
	RegionName  string `yaml:"region_name"`
	FacilityNPI int64  `yaml:"facility_npi"`
}

// Dataset is the full exportable/importable static-data set, the
// structural equivalent of the source's objects list tagged by !DAO
// type.
type Dataset struct {
	AdmissionSources  []AdmissionSource  `yaml:"admission_sources,omitempty"`
	Dispositions      []Disposition      `yaml:"dispositions,omitempty"`
	Facilities        []Facility         `yaml:"facilities,omitempty"`
	ReportableRegions []ReportableRegion `yaml:"reportable_regions,omitempty"`
}

// Store is the subset of mart access Dump/Load need. A real
// implementation talks to the dim_* and internal_reportable_region
// tables directly; it intentionally lives outside mart.Store since
// static-data maintenance is an occasional, operator-driven action,
// not part of the hot deduplication path.
type Store interface {
	LoadAdmissionSources(ctx context.Context) ([]AdmissionSource, error)
	LoadDispositions(ctx context.Context) ([]Disposition, error)
	LoadFacilities(ctx context.Context) ([]Facility, error)
	LoadReportableRegions(ctx context.Context) ([]ReportableRegion, error)

	SaveFacilities(ctx context.Context, rows []Facility) error
	SaveAdmissionSources(ctx context.Context, rows []AdmissionSource) error
	SaveDispositions(ctx context.Context, rows []Disposition) error
	SaveReportableRegions(ctx context.Context, rows []ReportableRegion) error
}

// Dump reads every supported dimension table from store and writes it
// to w as YAML, the Go equivalent of static_data.py's dump().
func Dump(ctx context.Context, store Store, w io.Writer) error {
	var ds Dataset
	var err error

	if ds.AdmissionSources, err = store.LoadAdmissionSources(ctx); err != nil {
		return errors.Wrap(err, "loading admission sources")
	}
	if ds.Dispositions, err = store.LoadDispositions(ctx); err != nil {
		return errors.Wrap(err, "loading dispositions")
	}
	if ds.Facilities, err = store.LoadFacilities(ctx); err != nil {
		return errors.Wrap(err, "loading facilities")
	}
	if ds.ReportableRegions, err = store.LoadReportableRegions(ctx); err != nil {
		return errors.Wrap(err, "loading reportable regions")
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return errors.Wrap(enc.Encode(ds), "encoding static data")
}

// Load reads a Dataset from r and writes it to store, committing
// Facilities before ReportableRegions so the foreign key from
// reportable_region to dim_facility is always satisfied, matching
// static_data.py's load_file comment: "Foreign key constraints require
// we commit the Facilities before the ReportableRegions".
func Load(ctx context.Context, store Store, r io.Reader) error {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&ds); err != nil {
		return errors.Wrap(err, "decoding static data")
	}

	if err := store.SaveFacilities(ctx, ds.Facilities); err != nil {
		return errors.Wrap(err, "saving facilities")
	}
	if err := store.SaveAdmissionSources(ctx, ds.AdmissionSources); err != nil {
		return errors.Wrap(err, "saving admission sources")
	}
	if err := store.SaveDispositions(ctx, ds.Dispositions); err != nil {
		return errors.Wrap(err, "saving dispositions")
	}
	if err := store.SaveReportableRegions(ctx, ds.ReportableRegions); err != nil {
		return errors.Wrap(err, "saving reportable regions")
	}
	return nil
}
