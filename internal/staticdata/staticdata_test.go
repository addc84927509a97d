package staticdata

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeStore struct {
	admissionSources  []AdmissionSource
	dispositions      []Disposition
	facilities        []Facility
	reportableRegions []ReportableRegion

	saveOrder []string
}

func (f *fakeStore) LoadAdmissionSources(context.Context) ([]AdmissionSource, error) {
	return f.admissionSources, nil
}
func (f *fakeStore) LoadDispositions(context.Context) ([]Disposition, error) {
	return f.dispositions, nil
}
func (f *fakeStore) LoadFacilities(context.Context) ([]Facility, error) { return f.facilities, nil }
func (f *fakeStore) LoadReportableRegions(context.Context) ([]ReportableRegion, error) {
	return f.reportableRegions, nil
}

func (f *fakeStore) SaveFacilities(_ context.Context, rows []Facility) error {
	f.saveOrder = append(f.saveOrder, "facilities")
	f.facilities = rows
	return nil
}
func (f *fakeStore) SaveAdmissionSources(_ context.Context, rows []AdmissionSource) error {
	f.saveOrder = append(f.saveOrder, "admission_sources")
	f.admissionSources = rows
	return nil
}
func (f *fakeStore) SaveDispositions(_ context.Context, rows []Disposition) error {
	f.saveOrder = append(f.saveOrder, "dispositions")
	f.dispositions = rows
	return nil
}
func (f *fakeStore) SaveReportableRegions(_ context.Context, rows []ReportableRegion) error {
	f.saveOrder = append(f.saveOrder, "reportable_regions")
	f.reportableRegions = rows
	return nil
}

func TestDumpLoadRoundTrip(t *testing.T) {
	src := &fakeStore{
		facilities:        []Facility{{NPI: 10987, LocalCode: "RMC", OrganizationName: "Reason Medical Center", Zip: "12345", County: "KING"}},
		reportableRegions: []ReportableRegion{{RegionName: "test_region", FacilityNPI: 10987}},
	}

	var buf bytes.Buffer
	require.NoError(t, Dump(context.Background(), src, &buf))

	dst := &fakeStore{}
	require.NoError(t, Load(context.Background(), dst, &buf))

	assert.Equal(t, src.facilities, dst.facilities)
	assert.Equal(t, src.reportableRegions, dst.reportableRegions)
}

func TestLoadSavesFacilitiesBeforeReportableRegions(t *testing.T) {
	dst := &fakeStore{}
	in := Dataset{
		Facilities:        []Facility{{NPI: 1}},
		ReportableRegions: []ReportableRegion{{RegionName: "r", FacilityNPI: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, yaml.NewEncoder(&buf).Encode(in))
	require.NoError(t, Load(context.Background(), dst, &buf))

	facIdx, regionIdx := -1, -1
	for i, step := range dst.saveOrder {
		if step == "facilities" {
			facIdx = i
		}
		if step == "reportable_regions" {
			regionIdx = i
		}
	}
	require.NotEqual(t, -1, facIdx)
	require.NotEqual(t, -1, regionIdx)
	assert.Less(t, facIdx, regionIdx)
}
