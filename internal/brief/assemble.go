// Package brief maps a finished draft onto the JSON body the backend expects
// for its transaction type.
package brief

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
	"github.com/vbonduro/briefdesk/internal/wizard"
)

var ErrUnknownVariant = errors.New("no form layout for draft type")

var listingBriefTypes = map[domain.BriefType]string{
	domain.TypeSell:     "Outright Sales",
	domain.TypeRent:     "Rent",
	domain.TypeJV:       "Joint Venture",
	domain.TypeShortlet: "Shortlet",
}

// Assemble returns the request body for d: a *Listing or a *Preference.
// Only fields rendered by the draft's variant are sent.
func Assemble(d *domain.Draft) (any, error) {
	v := wizard.Resolve(d)
	if v == nil {
		return nil, ErrUnknownVariant
	}
	a := &assembler{d: d, fields: fieldSet(v)}

	var out any
	switch d.Kind {
	case domain.KindListing:
		out = a.listing()
	case domain.KindPreference:
		out = a.preference()
	default:
		return nil, ErrUnknownVariant
	}
	if err := errors.Join(a.errs...); err != nil {
		return nil, err
	}
	return out, nil
}

type assembler struct {
	d      *domain.Draft
	fields map[wizard.Field]bool
	errs   []error
}

func fieldSet(v *wizard.Variant) map[wizard.Field]bool {
	out := map[wizard.Field]bool{}
	for _, s := range v.Steps {
		for _, f := range s.Fields {
			out[f] = true
		}
	}
	return out
}

func (a *assembler) has(f wizard.Field) bool {
	return a.fields[f]
}

// str returns the value of f when the variant renders it.
func (a *assembler) str(f wizard.Field, v string) string {
	if !a.has(f) {
		return ""
	}
	return strings.TrimSpace(v)
}

func (a *assembler) amount(f wizard.Field, v string) int64 {
	if !a.has(f) || strings.TrimSpace(v) == "" {
		return 0
	}
	n, err := format.ParseCurrency(v)
	if err != nil {
		a.errs = append(a.errs, fmt.Errorf("invalid %s: %w", f, err))
	}
	return n
}

func (a *assembler) count(f wizard.Field, v string) int {
	if !a.has(f) || strings.TrimSpace(v) == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		a.errs = append(a.errs, fmt.Errorf("invalid %s: %w", f, err))
	}
	return n
}

func (a *assembler) measure(f wizard.Field, v string) float64 {
	if !a.has(f) || strings.TrimSpace(v) == "" {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		a.errs = append(a.errs, fmt.Errorf("invalid %s: %w", f, err))
	}
	return n
}

func (a *assembler) location() Location {
	return Location{
		State:           a.str(wizard.FieldState, a.d.State),
		LocalGovernment: a.str(wizard.FieldLGA, a.d.LGA),
		Area:            a.str(wizard.FieldArea, a.d.Area),
	}
}

func (a *assembler) landSize() *LandSize {
	if !a.has(wizard.FieldLandSize) {
		return nil
	}
	return &LandSize{
		Size:            a.measure(wizard.FieldLandSize, a.d.LandSize),
		MeasurementType: a.str(wizard.FieldMeasurementType, a.d.MeasurementType),
	}
}

func (a *assembler) features() []Feature {
	out := []Feature{}
	if !a.has(wizard.FieldFeatures) {
		return out
	}
	for _, f := range a.d.Features {
		out = append(out, Feature{FeatureName: f})
	}
	return out
}

func (a *assembler) documents() []Document {
	if !a.has(wizard.FieldDocuments) {
		return nil
	}
	var out []Document
	for _, doc := range a.d.Documents {
		out = append(out, Document{DocName: doc, IsProvided: true})
	}
	return out
}

func (a *assembler) contact() Owner {
	return Owner{
		FullName:    strings.TrimSpace(a.d.FullName),
		Email:       strings.TrimSpace(a.d.Email),
		PhoneNumber: format.NormalizePhone(a.d.Phone),
	}
}

func mediaURLs(items []domain.Media) []string {
	out := []string{}
	for _, m := range items {
		if m.Ready() {
			out = append(out, m.URL)
		}
	}
	return out
}

func (a *assembler) listing() *Listing {
	d := a.d
	l := &Listing{
		BriefType:         listingBriefTypes[d.Type],
		PropertyType:      a.str(wizard.FieldCategory, d.Category),
		PropertyCondition: a.str(wizard.FieldCondition, d.Condition),
		TypeOfBuilding:    a.str(wizard.FieldBuildingType, d.BuildingType),
		Price:             a.amount(wizard.FieldPrice, d.Price),
		RentalType:        a.str(wizard.FieldRentalType, d.RentalType),
		LeaseHold:         a.str(wizard.FieldLeaseHold, d.LeaseHold),
		Location:          a.location(),
		LandSize:          a.landSize(),
		Features:          a.features(),
		DocsOnProperty:    a.documents(),
		Pictures:          mediaURLs(d.Images),
		Description:       a.str(wizard.FieldDescription, d.Description),
		Owner:             a.contact(),
		AreYouTheOwner:    d.IsLegalOwner,
	}
	if videos := mediaURLs(d.Videos); len(videos) > 0 {
		l.Videos = videos
	}

	if a.has(wizard.FieldBedrooms) {
		l.AdditionalFeatures = &AdditionalFeatures{
			NoOfBedroom:  a.count(wizard.FieldBedrooms, d.Bedrooms),
			NoOfBathroom: a.count(wizard.FieldBathrooms, d.Bathrooms),
			NoOfToilet:   a.count(wizard.FieldToilets, d.Toilets),
			NoOfCarPark:  a.count(wizard.FieldParkingSpaces, d.ParkingSpaces),
		}
	}
	if a.has(wizard.FieldSharingRatio) {
		l.JVConditions = &JVConditions{
			InvestmentType: a.str(wizard.FieldInvestmentType, d.InvestmentType),
			SharingRatio:   a.str(wizard.FieldSharingRatio, d.SharingRatio),
		}
	}
	if a.has(wizard.FieldMaxGuests) {
		l.ShortletDetails = &ShortletDetails{
			MaxGuests:   a.count(wizard.FieldMaxGuests, d.MaxGuests),
			MinimumStay: a.count(wizard.FieldMinimumStay, d.MinimumStay),
			CheckIn:     a.str(wizard.FieldCheckIn, d.CheckIn),
			CheckOut:    a.str(wizard.FieldCheckOut, d.CheckOut),
			HouseRules:  a.str(wizard.FieldHouseRules, d.HouseRules),
		}
	}
	return l
}

func (a *assembler) preference() *Preference {
	d := a.d
	p := &Preference{
		PreferenceType: string(d.Type),
		Location:       a.location(),
		Budget: Budget{
			MinPrice: a.amount(wizard.FieldBudgetMin, d.BudgetMin),
			MaxPrice: a.amount(wizard.FieldBudgetMax, d.BudgetMax),
			Currency: "NGN",
		},
		Features:        a.features(),
		Documents:       a.documents(),
		NearbyLandmark:  a.str(wizard.FieldNearbyLandmark, d.NearbyLandmark),
		AdditionalNotes: a.str(wizard.FieldDescription, d.Description),
		ContactInfo:     a.contact(),
	}

	switch d.Type {
	case domain.TypeJointVenture:
		p.DeveloperDetails = &DeveloperDetails{
			CompanyName:    a.str(wizard.FieldCompanyName, d.CompanyName),
			InvestmentType: a.str(wizard.FieldInvestmentType, d.InvestmentType),
		}
		p.PropertyDetails = &PropertyDetails{
			PropertyType: a.str(wizard.FieldCategory, d.Category),
			BuildingType: a.str(wizard.FieldBuildingType, d.BuildingType),
			LandSize:     a.landSize(),
		}
	case domain.TypeShortlet:
		p.BookingDetails = &BookingDetails{
			CheckInDate:    a.str(wizard.FieldCheckInDate, d.CheckInDate),
			CheckOutDate:   a.str(wizard.FieldCheckOutDate, d.CheckOutDate),
			NumberOfGuests: a.count(wizard.FieldMaxGuests, d.MaxGuests),
			MinBedrooms:    a.count(wizard.FieldBedrooms, d.Bedrooms),
		}
	default:
		p.PropertyDetails = &PropertyDetails{
			PropertyType: a.str(wizard.FieldCategory, d.Category),
			BuildingType: a.str(wizard.FieldBuildingType, d.BuildingType),
			MinBedrooms:  a.count(wizard.FieldBedrooms, d.Bedrooms),
			MinBathrooms: a.count(wizard.FieldBathrooms, d.Bathrooms),
			Purpose:      a.str(wizard.FieldPurpose, d.Purpose),
			LandSize:     a.landSize(),
			MoveInDate:   a.str(wizard.FieldMoveInDate, d.MoveInDate),
		}
	}
	return p
}
