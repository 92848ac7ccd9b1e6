package registers

import (
	"errors"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/models"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

const locationsFile = `<Locations>
	<Regions>
		<Region><RegionCode>R1</RegionCode><RegionName>Region 1</RegionName></Region>
	</Regions>
	<Districts>
		<District><RegionCode>R1</RegionCode><DistrictCode>R1D1</DistrictCode><DistrictName>District 1</DistrictName></District>
	</Districts>
	<Municipalities>
		<Municipality><DistrictCode>R1D1</DistrictCode><MunicipalityCode>R1D1M1</MunicipalityCode><MunicipalityName>Municipality 1</MunicipalityName></Municipality>
	</Municipalities>
	<Villages>
		<Village>
			<MunicipalityCode>R1D1M1</MunicipalityCode>
			<VillageCode>R1D1M1V1</VillageCode>
			<VillageName>Village 1</VillageName>
			<MalePopulation>100</MalePopulation>
			<FemalePopulation>120</FemalePopulation>
			<OtherPopulation>3</OtherPopulation>
			<Families>50</Families>
		</Village>
	</Villages>
</Locations>`

func TestParseLocationsXML(t *testing.T) {
	entries, parseErrors, err := ParseLocationsXML(strings.NewReader(locationsFile))
	if err != nil {
		t.Fatalf("ParseLocationsXML failed: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("errors = %v", parseErrors)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %v", entries)
	}

	// Parents come before children so a single file can introduce a whole
	// hierarchy.
	wantTypes := []string{
		models.LocationTypeRegion,
		models.LocationTypeDistrict,
		models.LocationTypeMunicipality,
		models.LocationTypeVillage,
	}
	for i, wantType := range wantTypes {
		if entries[i].Type != wantType {
			t.Fatalf("entries[%d].Type = %s, want %s", i, entries[i].Type, wantType)
		}
	}

	village := entries[3]
	if village.ParentCode != "R1D1M1" {
		t.Fatalf("village parent = %s", village.ParentCode)
	}
	if village.MalePopulation == nil || *village.MalePopulation != 100 {
		t.Fatalf("male population = %v", village.MalePopulation)
	}
	if village.Families == nil || *village.Families != 50 {
		t.Fatalf("families = %v", village.Families)
	}
}

func TestParseLocationsXMLMissingContainerIsFatal(t *testing.T) {
	file := `<Locations><Regions></Regions></Locations>`
	_, _, err := ParseLocationsXML(strings.NewReader(file))
	if !errors.Is(err, utils.ErrorInvalidXML) {
		t.Fatalf("err = %v, want ErrorInvalidXML", err)
	}
}

func TestParseLocationsXMLMissingField(t *testing.T) {
	file := `<Locations>
		<Regions><Region><RegionCode>R1</RegionCode></Region></Regions>
		<Districts><District><DistrictCode>R1D1</DistrictCode><DistrictName>No region</DistrictName></District></Districts>
		<Municipalities></Municipalities>
		<Villages></Villages>
	</Locations>`

	entries, parseErrors, err := ParseLocationsXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseLocationsXML failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v", entries)
	}
	want := []string{
		"A field is missing for Region",
		"A field is missing for District",
	}
	if len(parseErrors) != len(want) || parseErrors[0] != want[0] || parseErrors[1] != want[1] {
		t.Fatalf("errors = %v, want %v", parseErrors, want)
	}
}

func TestParseLocationsXMLDuplicateCodeAcrossLevels(t *testing.T) {
	file := `<Locations>
		<Regions><Region><RegionCode>L1</RegionCode><RegionName>Region</RegionName></Region></Regions>
		<Districts><District><RegionCode>L1</RegionCode><DistrictCode>L1</DistrictCode><DistrictName>District</DistrictName></District></Districts>
		<Municipalities></Municipalities>
		<Villages></Villages>
	</Locations>`

	entries, parseErrors, err := ParseLocationsXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseLocationsXML failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != models.LocationTypeRegion {
		t.Fatalf("entries = %v", entries)
	}
	if len(parseErrors) != 1 || parseErrors[0] != "Code 'L1' already exists in the list" {
		t.Fatalf("errors = %v", parseErrors)
	}
}

func TestParseLocationsXMLBadPopulation(t *testing.T) {
	file := `<Locations>
		<Regions></Regions>
		<Districts></Districts>
		<Municipalities></Municipalities>
		<Villages>
			<Village>
				<MunicipalityCode>M1</MunicipalityCode>
				<VillageCode>V1</VillageCode>
				<VillageName>Village</VillageName>
				<MalePopulation>many</MalePopulation>
				<FemalePopulation>120</FemalePopulation>
				<OtherPopulation>3</OtherPopulation>
				<Families>50</Families>
			</Village>
		</Villages>
	</Locations>`

	entries, parseErrors, err := ParseLocationsXML(strings.NewReader(file))
	if err != nil {
		t.Fatalf("ParseLocationsXML failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v", entries)
	}
	if len(parseErrors) != 1 || parseErrors[0] != "Village 'V1': population values must be integers" {
		t.Fatalf("errors = %v", parseErrors)
	}
}
