package staticdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PGStore is a Store backed by a pgxpool.Pool against the mart
// database's dimension tables.
type PGStore struct {
	Pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) LoadAdmissionSources(ctx context.Context) ([]AdmissionSource, error) {
	rows, err := s.Pool.Query(ctx, `SELECT pk, description FROM dim_admission_source`)
	if err != nil {
		return nil, errors.Wrap(err, "querying admission sources")
	}
	defer rows.Close()

	var out []AdmissionSource
	for rows.Next() {
		var a AdmissionSource
		if err := rows.Scan(&a.Code, &a.Description); err != nil {
			return nil, errors.Wrap(err, "scanning admission source")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "iterating admission sources")
}

func (s *PGStore) LoadDispositions(ctx context.Context) ([]Disposition, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT code, gipse_mapping, odin_mapping, description FROM dim_disposition`)
	if err != nil {
		return nil, errors.Wrap(err, "querying dispositions")
	}
	defer rows.Close()

	var out []Disposition
	for rows.Next() {
		var d Disposition
		if err := rows.Scan(&d.Code, &d.GipseMapping, &d.OdinMapping, &d.Description); err != nil {
			return nil, errors.Wrap(err, "scanning disposition")
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "iterating dispositions")
}

func (s *PGStore) LoadFacilities(ctx context.Context) ([]Facility, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT npi, local_code, organization_name, zip, county FROM dim_facility`)
	if err != nil {
		return nil, errors.Wrap(err, "querying facilities")
	}
	defer rows.Close()

	var out []Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.NPI, &f.LocalCode, &f.OrganizationName, &f.Zip, &f.County); err != nil {
			return nil, errors.Wrap(err, "scanning facility")
		}
		out = append(out, f)
	}
	return out, errors.Wrap(rows.Err(), "iterating facilities")
}

func (s *PGStore) LoadReportableRegions(ctx context.Context) ([]ReportableRegion, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT region_name, dim_facility_pk FROM internal_reportable_region`)
	if err != nil {
		return nil, errors.Wrap(err, "querying reportable regions")
	}
	defer rows.Close()

	var out []ReportableRegion
	for rows.Next() {
		var r ReportableRegion
		if err := rows.Scan(&r.RegionName, &r.FacilityNPI); err != nil {
			return nil, errors.Wrap(err, "scanning reportable region")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterating reportable regions")
}

func (s *PGStore) SaveFacilities(ctx context.Context, rows []Facility) error {
	for _, f := range rows {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO dim_facility (npi, local_code, organization_name, zip, county)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (npi) DO UPDATE SET
				local_code = EXCLUDED.local_code,
				organization_name = EXCLUDED.organization_name,
				zip = EXCLUDED.zip,
				county = EXCLUDED.county`,
			f.NPI, f.LocalCode, f.OrganizationName, f.Zip, f.County)
		if err != nil {
			return errors.Wrapf(err, "saving facility npi %d", f.NPI)
		}
	}
	return nil
}

func (s *PGStore) SaveAdmissionSources(ctx context.Context, rows []AdmissionSource) error {
	for _, a := range rows {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO dim_admission_source (pk, description)
			VALUES ($1, $2)
			ON CONFLICT (pk) DO UPDATE SET description = EXCLUDED.description`,
			a.Code, a.Description)
		if err != nil {
			return errors.Wrapf(err, "saving admission source %q", a.Code)
		}
	}
	return nil
}

func (s *PGStore) SaveDispositions(ctx context.Context, rows []Disposition) error {
	for _, d := range rows {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO dim_disposition (code, gipse_mapping, odin_mapping, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET
				gipse_mapping = EXCLUDED.gipse_mapping,
				odin_mapping = EXCLUDED.odin_mapping,
				description = EXCLUDED.description`,
			d.Code, d.GipseMapping, d.OdinMapping, d.Description)
		if err != nil {
			return errors.Wrapf(err, "saving disposition %d", d.Code)
		}
	}
	return nil
}

func (s *PGStore) SaveReportableRegions(ctx context.Context, rows []ReportableRegion) error {
	for _, r := range rows {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO internal_reportable_region (region_name, dim_facility_pk)
			VALUES ($1, $2)
			ON CONFLICT (region_name) DO UPDATE SET dim_facility_pk = EXCLUDED.dim_facility_pk`,
			r.RegionName, r.FacilityNPI)
		if err != nil {
			return errors.Wrapf(err, "saving reportable region %q", r.RegionName)
		}
	}
	return nil
}
