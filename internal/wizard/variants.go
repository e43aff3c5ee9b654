package wizard

import (
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
)

type StepID string

const (
	StepBasic       StepID = "basic"
	StepFeatures    StepID = "features"
	StepMedia       StepID = "media"
	StepOwnership   StepID = "ownership"
	StepLocation    StepID = "location"
	StepDetails     StepID = "details"
	StepPreferences StepID = "preferences"
	StepContact     StepID = "contact"
)

// Check is a cross-field rule attached to a step. It only runs once every
// field it reads is present.
type Check struct {
	Field   Field
	Message string
	Needs   []Field
	OK      func(d *domain.Draft) bool
}

// Step is one wizard screen: the fields it renders, in order, and which of
// them must be answered before moving past it.
type Step struct {
	ID       StepID
	Label    string
	Fields   []Field
	Required map[Field]bool
	Checks   []Check
}

// Variant is the declared step layout for one combination of kind, type,
// category and rental type.
type Variant struct {
	Name  string
	Steps []Step
}

type fieldReq struct {
	field    Field
	required bool
}

func req(fs ...Field) []fieldReq {
	out := make([]fieldReq, len(fs))
	for i, f := range fs {
		out[i] = fieldReq{field: f, required: true}
	}
	return out
}

func opt(fs ...Field) []fieldReq {
	out := make([]fieldReq, len(fs))
	for i, f := range fs {
		out[i] = fieldReq{field: f}
	}
	return out
}

func step(id StepID, label string, groups ...[]fieldReq) Step {
	s := Step{ID: id, Label: label, Required: map[Field]bool{}}
	for _, g := range groups {
		for _, fr := range g {
			s.Fields = append(s.Fields, fr.field)
			if fr.required {
				s.Required[fr.field] = true
			}
		}
	}
	return s
}

func (s Step) withChecks(checks ...Check) Step {
	s.Checks = append(s.Checks, checks...)
	return s
}

var budgetCheck = Check{
	Field:   FieldBudgetMin,
	Message: "Minimum budget cannot exceed maximum budget",
	Needs:   []Field{FieldBudgetMin, FieldBudgetMax},
	OK: func(d *domain.Draft) bool {
		lo, err1 := format.ParseCurrency(d.BudgetMin)
		hi, err2 := format.ParseCurrency(d.BudgetMax)
		return err1 != nil || err2 != nil || lo <= hi
	},
}

var stayCheck = Check{
	Field:   FieldCheckOutDate,
	Message: "Check-out date must be after check-in date",
	Needs:   []Field{FieldCheckInDate, FieldCheckOutDate},
	OK: func(d *domain.Draft) bool {
		in, err1 := format.ParseDate(d.CheckInDate)
		out, err2 := format.ParseDate(d.CheckOutDate)
		return err1 != nil || err2 != nil || out.After(in)
	},
}

var (
	locationFields = [][]fieldReq{req(FieldState, FieldLGA), opt(FieldArea)}

	listingMedia      = step(StepMedia, "Photos & videos", req(FieldImages), opt(FieldVideos))
	listingOwnership  = step(StepOwnership, "Ownership declaration", req(FieldFullName, FieldEmail, FieldPhone, FieldLegalOwner))
	preferenceContact = step(StepContact, "Contact information", req(FieldFullName, FieldEmail, FieldPhone))
)

func buildingFeatures(documents bool) Step {
	groups := [][]fieldReq{
		req(FieldCondition, FieldBuildingType, FieldBedrooms, FieldBathrooms),
		opt(FieldToilets, FieldParkingSpaces, FieldFeatures),
	}
	if documents {
		groups = append(groups, req(FieldDocuments))
	}
	groups = append(groups, opt(FieldDescription))
	return step(StepFeatures, "Features & conditions", groups...)
}

func landFeatures(documents bool) Step {
	groups := [][]fieldReq{req(FieldLandSize, FieldMeasurementType), opt(FieldFeatures)}
	if documents {
		groups = append(groups, req(FieldDocuments))
	}
	groups = append(groups, opt(FieldDescription))
	return step(StepFeatures, "Features & conditions", groups...)
}

func basic(head []fieldReq, tail ...[]fieldReq) Step {
	groups := append([][]fieldReq{head}, locationFields...)
	groups = append(groups, tail...)
	return step(StepBasic, "Basic details", groups...)
}

func prefLocation(budgetMaxRequired bool) Step {
	budget := req(FieldBudgetMax)
	if !budgetMaxRequired {
		budget = opt(FieldBudgetMax)
	}
	groups := append([][]fieldReq{}, locationFields...)
	groups = append(groups, opt(FieldBudgetMin), budget)
	return step(StepLocation, "Location & budget", groups...).withChecks(budgetCheck)
}

var variants = map[string]*Variant{}

func declare(name string, steps ...Step) {
	variants[name] = &Variant{Name: name, Steps: steps}
}

func init() {
	declare("listing/sell/building",
		basic(req(FieldCategory), req(FieldPrice)),
		buildingFeatures(true), listingMedia, listingOwnership)
	declare("listing/sell/land",
		basic(req(FieldCategory), req(FieldPrice)),
		landFeatures(true), listingMedia, listingOwnership)

	declare("listing/rent/rent",
		basic(req(FieldCategory, FieldRentalType), req(FieldPrice)),
		buildingFeatures(false), listingMedia, listingOwnership)
	declare("listing/rent/lease",
		basic(req(FieldCategory, FieldRentalType, FieldLeaseHold), req(FieldPrice)),
		buildingFeatures(false), listingMedia, listingOwnership)

	declare("listing/jv/building",
		basic(req(FieldCategory, FieldInvestmentType), req(FieldPrice, FieldSharingRatio)),
		buildingFeatures(true), listingMedia, listingOwnership)
	declare("listing/jv/land",
		basic(req(FieldCategory, FieldInvestmentType), req(FieldPrice, FieldSharingRatio)),
		landFeatures(true), listingMedia, listingOwnership)

	declare("listing/shortlet",
		basic(req(FieldCategory), req(FieldPrice)),
		step(StepFeatures, "Features & house rules",
			req(FieldBuildingType, FieldBedrooms, FieldBathrooms, FieldMaxGuests),
			opt(FieldMinimumStay, FieldCheckIn, FieldCheckOut, FieldHouseRules, FieldFeatures, FieldDescription)),
		listingMedia, listingOwnership)

	prefFeatures := step(StepPreferences, "Desired features",
		opt(FieldFeatures, FieldDocuments, FieldNearbyLandmark, FieldDescription))

	declare("preference/buy/building",
		prefLocation(true),
		step(StepDetails, "Property details", req(FieldCategory), opt(FieldPurpose), req(FieldBuildingType, FieldBedrooms), opt(FieldBathrooms)),
		prefFeatures, preferenceContact)
	declare("preference/buy/land",
		prefLocation(true),
		step(StepDetails, "Property details", req(FieldCategory), opt(FieldPurpose), req(FieldLandSize, FieldMeasurementType)),
		prefFeatures, preferenceContact)

	declare("preference/rent",
		prefLocation(true),
		step(StepDetails, "Property details", req(FieldCategory, FieldBuildingType, FieldBedrooms), opt(FieldMoveInDate)),
		step(StepPreferences, "Desired features", opt(FieldFeatures, FieldNearbyLandmark, FieldDescription)),
		preferenceContact)

	declare("preference/joint-venture/building",
		prefLocation(false),
		step(StepDetails, "Developer details", req(FieldCompanyName, FieldInvestmentType, FieldCategory), opt(FieldBuildingType)),
		prefFeatures, preferenceContact)
	declare("preference/joint-venture/land",
		prefLocation(false),
		step(StepDetails, "Developer details", req(FieldCompanyName, FieldInvestmentType, FieldCategory, FieldLandSize, FieldMeasurementType)),
		prefFeatures, preferenceContact)

	declare("preference/shortlet",
		prefLocation(true),
		step(StepDetails, "Stay details", req(FieldCheckInDate, FieldCheckOutDate, FieldMaxGuests), opt(FieldBedrooms)).withChecks(stayCheck),
		step(StepPreferences, "Desired features", opt(FieldFeatures, FieldNearbyLandmark, FieldDescription)),
		preferenceContact)
}

// VariantName picks the declared variant for the draft's current answers.
func VariantName(d *domain.Draft) string {
	shape := "building"
	if d.IsLand() {
		shape = "land"
	}
	switch d.Kind {
	case domain.KindListing:
		switch d.Type {
		case domain.TypeSell:
			return "listing/sell/" + shape
		case domain.TypeRent:
			if d.IsLease() {
				return "listing/rent/lease"
			}
			return "listing/rent/rent"
		case domain.TypeJV:
			return "listing/jv/" + shape
		case domain.TypeShortlet:
			return "listing/shortlet"
		}
	case domain.KindPreference:
		switch d.Type {
		case domain.TypeBuy:
			return "preference/buy/" + shape
		case domain.TypeRent:
			return "preference/rent"
		case domain.TypeJointVenture:
			return "preference/joint-venture/" + shape
		case domain.TypeShortlet:
			return "preference/shortlet"
		}
	}
	return ""
}

// Resolve returns the variant for d, or nil for an unknown kind/type pair.
func Resolve(d *domain.Draft) *Variant {
	return variants[VariantName(d)]
}

// Current returns the active step of d and its index, clamped to the variant.
func Current(d *domain.Draft) (Step, int) {
	v := Resolve(d)
	if v == nil || len(v.Steps) == 0 {
		return Step{}, 0
	}
	i := clamp(d.Step, len(v.Steps))
	return v.Steps[i], i
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
