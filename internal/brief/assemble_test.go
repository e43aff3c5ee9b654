package brief

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/wizard"
)

func draft(kind domain.Kind, t domain.BriefType, actions ...wizard.Action) *domain.Draft {
	return wizard.Apply(domain.NewDraft(kind, t), actions...)
}

var contact = []wizard.Action{
	wizard.SetField(wizard.FieldFullName, " Ada Obi "),
	wizard.SetField(wizard.FieldEmail, "ada@example.com"),
	wizard.SetField(wizard.FieldPhone, "+234 803 123 4567"),
}

func TestAssembleSellBuilding(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeSell, append([]wizard.Action{
		wizard.SetField(wizard.FieldCategory, domain.CategoryResidential),
		wizard.SetField(wizard.FieldState, "Lagos"),
		wizard.SetField(wizard.FieldLGA, "Eti-Osa"),
		wizard.SetField(wizard.FieldArea, "Ikoyi"),
		wizard.SetField(wizard.FieldPrice, "20000000"),
		wizard.SetField(wizard.FieldCondition, "Brand New"),
		wizard.SetField(wizard.FieldBuildingType, "Detached Duplex"),
		wizard.SetField(wizard.FieldBedrooms, "4"),
		wizard.SetField(wizard.FieldBathrooms, "5"),
		wizard.SetField(wizard.FieldParkingSpaces, "0"),
		wizard.SetList(wizard.FieldFeatures, []string{"Gym", "Swimming Pool"}),
		wizard.SetList(wizard.FieldDocuments, []string{"C of O"}),
		wizard.SetField(wizard.FieldLandSize, "3"),
		wizard.AddMedia(domain.Media{ID: "1", Kind: domain.MediaImage, URL: "https://cdn.test/1.jpg"}),
		wizard.AddMedia(domain.Media{ID: "2", Kind: domain.MediaImage, Failed: true}),
		wizard.SetField(wizard.FieldLegalOwner, "true"),
	}, contact...)...)

	got, err := Assemble(d)
	require.NoError(t, err)

	want := &Listing{
		BriefType:         "Outright Sales",
		PropertyType:      "Residential",
		PropertyCondition: "Brand New",
		TypeOfBuilding:    "Detached Duplex",
		Price:             20000000,
		Location:          Location{State: "Lagos", LocalGovernment: "Eti-Osa", Area: "Ikoyi"},
		AdditionalFeatures: &AdditionalFeatures{
			NoOfBedroom:  4,
			NoOfBathroom: 5,
		},
		Features:       []Feature{{FeatureName: "Gym"}, {FeatureName: "Swimming Pool"}},
		DocsOnProperty: []Document{{DocName: "C of O", IsProvided: true}},
		Pictures:       []string{"https://cdn.test/1.jpg"},
		Owner:          Owner{FullName: "Ada Obi", Email: "ada@example.com", PhoneNumber: "+2348031234567"},
		AreYouTheOwner: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleSellLandSendsLandSize(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeSell,
		wizard.SetField(wizard.FieldCategory, domain.CategoryLand),
		wizard.SetField(wizard.FieldPrice, "5,000,000"),
		wizard.SetField(wizard.FieldBedrooms, "3"),
		wizard.SetField(wizard.FieldLandSize, "2"),
		wizard.SetField(wizard.FieldMeasurementType, "Plot"),
	)

	got, err := Assemble(d)
	require.NoError(t, err)
	l := got.(*Listing)

	assert.Equal(t, &LandSize{Size: 2, MeasurementType: "Plot"}, l.LandSize)
	assert.Nil(t, l.AdditionalFeatures, "land briefs carry no room counts")
	assert.Equal(t, int64(5000000), l.Price)
}

func TestAssembleFractionalLandSize(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeSell,
		wizard.SetField(wizard.FieldCategory, domain.CategoryLand),
		wizard.SetField(wizard.FieldPrice, "5,000,000"),
		wizard.SetField(wizard.FieldLandSize, "1.5"),
		wizard.SetField(wizard.FieldMeasurementType, "Hectares"),
	)

	got, err := Assemble(d)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"landSize":{"size":1.5,"measurementType":"Hectares"}`)
}

func TestAssembleShortletOmitsLandSize(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeShortlet,
		wizard.SetField(wizard.FieldCategory, domain.CategoryResidential),
		wizard.SetField(wizard.FieldPrice, "85000"),
		wizard.SetField(wizard.FieldLandSize, "2"),
		wizard.SetField(wizard.FieldMeasurementType, "Plot"),
		wizard.SetField(wizard.FieldMaxGuests, "4"),
		wizard.SetField(wizard.FieldCheckIn, "14:00"),
	)

	got, err := Assemble(d)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "landSize")
	assert.NotContains(t, string(raw), "docsOnProperty")

	l := got.(*Listing)
	assert.Equal(t, "Shortlet", l.BriefType)
	assert.Equal(t, &ShortletDetails{MaxGuests: 4, CheckIn: "14:00"}, l.ShortletDetails)
}

func TestAssembleRentLease(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeRent,
		wizard.SetField(wizard.FieldRentalType, domain.RentalTypeLease),
		wizard.SetField(wizard.FieldLeaseHold, "5 years"),
		wizard.SetField(wizard.FieldPrice, "3500000"),
		wizard.SetList(wizard.FieldDocuments, []string{"C of O"}),
	)
	got, err := Assemble(d)
	require.NoError(t, err)
	l := got.(*Listing)

	assert.Equal(t, "Lease", l.RentalType)
	assert.Equal(t, "5 years", l.LeaseHold)
	assert.Nil(t, l.DocsOnProperty, "rent briefs do not render title documents")

	plain := wizard.Apply(d, wizard.SetField(wizard.FieldRentalType, domain.RentalTypeRent))
	got, err = Assemble(plain)
	require.NoError(t, err)
	assert.Empty(t, got.(*Listing).LeaseHold)
}

func TestAssembleJV(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeJV,
		wizard.SetField(wizard.FieldCategory, domain.CategoryLand),
		wizard.SetField(wizard.FieldInvestmentType, "Land"),
		wizard.SetField(wizard.FieldSharingRatio, "60:40"),
		wizard.SetField(wizard.FieldPrice, "100000000"),
	)
	got, err := Assemble(d)
	require.NoError(t, err)
	assert.Equal(t, &JVConditions{InvestmentType: "Land", SharingRatio: "60:40"}, got.(*Listing).JVConditions)
}

func TestAssemblePreferences(t *testing.T) {
	buy := draft(domain.KindPreference, domain.TypeBuy, append([]wizard.Action{
		wizard.SetField(wizard.FieldState, "FCT"),
		wizard.SetField(wizard.FieldLGA, "Bwari"),
		wizard.SetField(wizard.FieldBudgetMin, "0"),
		wizard.SetField(wizard.FieldBudgetMax, "45000000"),
		wizard.SetField(wizard.FieldCategory, domain.CategoryResidential),
		wizard.SetField(wizard.FieldBuildingType, "Bungalow"),
		wizard.SetField(wizard.FieldBedrooms, "3"),
		wizard.SetList(wizard.FieldDocuments, []string{"Governor's Consent"}),
		wizard.SetField(wizard.FieldDescription, "Close to school"),
	}, contact...)...)

	got, err := Assemble(buy)
	require.NoError(t, err)
	want := &Preference{
		PreferenceType: "buy",
		Location:       Location{State: "FCT", LocalGovernment: "Bwari"},
		Budget:         Budget{MinPrice: 0, MaxPrice: 45000000, Currency: "NGN"},
		PropertyDetails: &PropertyDetails{
			PropertyType: "Residential",
			BuildingType: "Bungalow",
			MinBedrooms:  3,
		},
		Features:        []Feature{},
		Documents:       []Document{{DocName: "Governor's Consent", IsProvided: true}},
		AdditionalNotes: "Close to school",
		ContactInfo:     Owner{FullName: "Ada Obi", Email: "ada@example.com", PhoneNumber: "+2348031234567"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}

	stay := draft(domain.KindPreference, domain.TypeShortlet,
		wizard.SetField(wizard.FieldBudgetMax, "70000"),
		wizard.SetField(wizard.FieldCheckInDate, "2026-12-20"),
		wizard.SetField(wizard.FieldCheckOutDate, "2026-12-24"),
		wizard.SetField(wizard.FieldMaxGuests, "2"),
	)
	got, err = Assemble(stay)
	require.NoError(t, err)
	p := got.(*Preference)
	assert.Nil(t, p.PropertyDetails)
	assert.Equal(t, &BookingDetails{CheckInDate: "2026-12-20", CheckOutDate: "2026-12-24", NumberOfGuests: 2}, p.BookingDetails)

	jv := draft(domain.KindPreference, domain.TypeJointVenture,
		wizard.SetField(wizard.FieldCompanyName, "Brickline Ltd"),
		wizard.SetField(wizard.FieldInvestmentType, "Land"),
		wizard.SetField(wizard.FieldCategory, domain.CategoryLand),
		wizard.SetField(wizard.FieldLandSize, "4"),
		wizard.SetField(wizard.FieldMeasurementType, "Acres"),
	)
	got, err = Assemble(jv)
	require.NoError(t, err)
	p = got.(*Preference)
	assert.Equal(t, &DeveloperDetails{CompanyName: "Brickline Ltd", InvestmentType: "Land"}, p.DeveloperDetails)
	assert.Equal(t, &LandSize{Size: 4, MeasurementType: "Acres"}, p.PropertyDetails.LandSize)
}

func TestAssembleRejectsMalformedNumbers(t *testing.T) {
	d := draft(domain.KindListing, domain.TypeSell,
		wizard.SetField(wizard.FieldCategory, domain.CategoryResidential),
		wizard.SetField(wizard.FieldBedrooms, "four"),
	)
	_, err := Assemble(d)
	assert.ErrorContains(t, err, "invalid bedrooms")
}

func TestAssembleUnknownVariant(t *testing.T) {
	_, err := Assemble(domain.NewDraft(domain.KindListing, domain.TypeBuy))
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
