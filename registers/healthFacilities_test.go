package registers

import (
	"errors"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

const healthFacilitiesFile = `<HealthFacilities>
	<HealthFacilityDetails>
		<HealthFacility>
			<LegalForm>G</LegalForm>
			<Level>H</Level>
			<SubLevel></SubLevel>
			<Code>HF0001</Code>
			<Name>Regional Hospital</Name>
			<Address>1 Main Street</Address>
			<DistrictCode>R1D1</DistrictCode>
			<Phone>555-0001</Phone>
			<CareType>B</CareType>
			<AccountCode>ACC01</AccountCode>
			<ItemsPricelistName>Hospital items</ItemsPricelistName>
			<ServicesPricelistName>Hospital services</ServicesPricelistName>
		</HealthFacility>
	</HealthFacilityDetails>
</HealthFacilities>`

func TestParseHealthFacilitiesXML(t *testing.T) {
	entries, parseErrors, err := ParseHealthFacilitiesXML(strings.NewReader(healthFacilitiesFile))
	if err != nil {
		t.Fatalf("ParseHealthFacilitiesXML failed: %v", err)
	}
	if len(parseErrors) != 0 {
		t.Fatalf("errors = %v", parseErrors)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}

	hf := entries[0]
	if hf.Code != "HF0001" || hf.Name != "Regional Hospital" {
		t.Fatalf("entry = %+v", hf)
	}
	if hf.LegalForm != "G" || hf.Level != "H" || hf.CareType != "B" {
		t.Fatalf("entry = %+v", hf)
	}
	if hf.DistrictCode != "R1D1" {
		t.Fatalf("district = %s", hf.DistrictCode)
	}
	// Blank elements stay unset so updates only touch carried fields.
	if hf.SubLevel != nil {
		t.Fatalf("sub level = %v, want nil", hf.SubLevel)
	}
	if hf.Phone == nil || *hf.Phone != "555-0001" {
		t.Fatalf("phone = %v", hf.Phone)
	}
	if hf.ItemsPricelistName == nil || *hf.ItemsPricelistName != "Hospital items" {
		t.Fatalf("items pricelist = %v", hf.ItemsPricelistName)
	}
	if hf.Fax != nil || hf.Email != nil {
		t.Fatalf("absent fields must stay nil: %+v", hf)
	}
}

func TestParseHealthFacilitiesXMLMissingDetailsIsFatal(t *testing.T) {
	_, _, err := ParseHealthFacilitiesXML(strings.NewReader("<HealthFacilities></HealthFacilities>"))
	if !errors.Is(err, utils.ErrorInvalidXML) {
		t.Fatalf("err = %v, want ErrorInvalidXML", err)
	}
}

func TestParseHealthFacilitiesXMLRequiredFields(t *testing.T) {
	cases := []struct {
		name     string
		facility string
		want     string
	}{
		{
			name:     "no code or name",
			facility: "<HealthFacility><Code>HF0001</Code></HealthFacility>",
			want:     "Health facility has no code or no name defined",
		},
		{
			name: "no legal form",
			facility: "<HealthFacility><Code>HF0001</Code><Name>Hospital</Name>" +
				"<Level>H</Level><CareType>B</CareType></HealthFacility>",
			want: "Health facility 'HF0001' has no legal form defined",
		},
		{
			name: "no level",
			facility: "<HealthFacility><Code>HF0001</Code><Name>Hospital</Name>" +
				"<LegalForm>G</LegalForm><CareType>B</CareType></HealthFacility>",
			want: "Health facility 'HF0001' has no level defined",
		},
		{
			name: "no care type",
			facility: "<HealthFacility><Code>HF0001</Code><Name>Hospital</Name>" +
				"<LegalForm>G</LegalForm><Level>H</Level></HealthFacility>",
			want: "Health facility 'HF0001' has no care type defined",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			file := "<HealthFacilities><HealthFacilityDetails>" + tc.facility + "</HealthFacilityDetails></HealthFacilities>"
			entries, parseErrors, err := ParseHealthFacilitiesXML(strings.NewReader(file))
			if err != nil {
				t.Fatalf("ParseHealthFacilitiesXML failed: %v", err)
			}
			if len(entries) != 0 {
				t.Fatalf("entries = %v, want none", entries)
			}
			if len(parseErrors) != 1 || parseErrors[0] != tc.want {
				t.Fatalf("errors = %v, want [%q]", parseErrors, tc.want)
			}
		})
	}
}
