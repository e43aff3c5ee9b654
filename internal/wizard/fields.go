package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
	"github.com/vbonduro/briefdesk/internal/location"
)

// Field is the form key of a draft field.
type Field string

const (
	FieldCategory        Field = "category"
	FieldState           Field = "state"
	FieldLGA             Field = "lga"
	FieldArea            Field = "area"
	FieldPrice           Field = "price"
	FieldRentalType      Field = "rentalType"
	FieldLeaseHold       Field = "leaseHold"
	FieldCondition       Field = "condition"
	FieldBuildingType    Field = "buildingType"
	FieldBedrooms        Field = "bedrooms"
	FieldBathrooms       Field = "bathrooms"
	FieldToilets         Field = "toilets"
	FieldParkingSpaces   Field = "parkingSpaces"
	FieldLandSize        Field = "landSize"
	FieldMeasurementType Field = "measurementType"
	FieldFeatures        Field = "features"
	FieldDocuments       Field = "documents"
	FieldDescription     Field = "description"
	FieldInvestmentType  Field = "investmentType"
	FieldSharingRatio    Field = "sharingRatio"
	FieldMaxGuests       Field = "maxGuests"
	FieldMinimumStay     Field = "minimumStay"
	FieldCheckIn         Field = "checkIn"
	FieldCheckOut        Field = "checkOut"
	FieldHouseRules      Field = "houseRules"
	FieldBudgetMin       Field = "budgetMin"
	FieldBudgetMax       Field = "budgetMax"
	FieldPurpose         Field = "purpose"
	FieldMoveInDate      Field = "moveInDate"
	FieldCheckInDate     Field = "checkInDate"
	FieldCheckOutDate    Field = "checkOutDate"
	FieldNearbyLandmark  Field = "nearbyLandmark"
	FieldCompanyName     Field = "companyName"
	FieldImages          Field = "images"
	FieldVideos          Field = "videos"
	FieldFullName        Field = "fullName"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldLegalOwner      Field = "isLegalOwner"
)

// Input is the widget a field renders as.
type Input string

const (
	InputText     Input = "text"
	InputTextarea Input = "textarea"
	InputNumber   Input = "number"
	InputDecimal  Input = "decimal"
	InputCurrency Input = "currency"
	InputSelect   Input = "select"
	InputTags     Input = "tags"
	InputCheckbox Input = "checkbox"
	InputEmail    Input = "email"
	InputPhone    Input = "phone"
	InputDate     Input = "date"
	InputTime     Input = "time"
	InputMedia    Input = "media"
)

// presence decides when a field counts as answered.
type presence int

const (
	presentText presence = iota
	// presentQuantity treats "0" as not provided: zero bedrooms is never an answer.
	presentQuantity
	// presentCount accepts zero, e.g. no parking spaces.
	presentCount
	// presentMeasure is a decimal where zero is not provided, e.g. 0.5 plots.
	presentMeasure
	// presentAmount treats a zero amount as not provided.
	presentAmount
	// presentAmountZero accepts zero, e.g. a minimum budget of nothing.
	presentAmountZero
	presentList
	presentFlag
	presentMedia
)

// Spec describes one draft field: how it renders and when it is answered.
type Spec struct {
	Field       Field
	Label       string
	Input       Input
	Placeholder string
	// AllowCreate lets a select accept values outside its option list.
	AllowCreate bool

	presence presence
	options  func(d *domain.Draft) []string
	str      func(d *domain.Draft) *string
	list     func(d *domain.Draft) *[]string
	flag     func(d *domain.Draft) *bool
	media    func(d *domain.Draft) *[]domain.Media
}

// Value returns the scalar value of the field ("true"/"" for flags).
func (s *Spec) Value(d *domain.Draft) string {
	switch {
	case s.str != nil:
		return *s.str(d)
	case s.flag != nil:
		if *s.flag(d) {
			return "true"
		}
	}
	return ""
}

// Values returns the selected tags of a list field.
func (s *Spec) Values(d *domain.Draft) []string {
	if s.list == nil {
		return nil
	}
	return *s.list(d)
}

// Media returns the items of a media field.
func (s *Spec) Media(d *domain.Draft) []domain.Media {
	if s.media == nil {
		return nil
	}
	return *s.media(d)
}

func (s *Spec) Options(d *domain.Draft) []string {
	if s.options == nil {
		return nil
	}
	return s.options(d)
}

func (s *Spec) IsList() bool  { return s.list != nil }
func (s *Spec) IsFlag() bool  { return s.flag != nil }
func (s *Spec) IsMedia() bool { return s.media != nil }

// Present reports whether the field has been answered.
func (s *Spec) Present(d *domain.Draft) bool {
	switch s.presence {
	case presentList:
		return len(s.Values(d)) > 0
	case presentFlag:
		return s.flag != nil && *s.flag(d)
	case presentMedia:
		for _, m := range s.Media(d) {
			if m.Ready() {
				return true
			}
		}
		return false
	}

	v := strings.TrimSpace(s.Value(d))
	if v == "" {
		return false
	}
	switch s.presence {
	case presentQuantity:
		n, err := strconv.Atoi(v)
		return err != nil || n != 0
	case presentMeasure:
		n, err := strconv.ParseFloat(v, 64)
		return err != nil || n != 0
	case presentAmount:
		n, err := format.ParseCurrency(v)
		return err != nil || n != 0
	}
	return true
}

// Problem returns a shape error for a present value, or "" when the value is
// well formed. Absence is not a problem here.
func (s *Spec) Problem(d *domain.Draft) string {
	if s.media != nil {
		for _, m := range s.Media(d) {
			if m.IsUploading {
				return "Wait for uploads to finish"
			}
			if m.Failed {
				return "Remove the failed upload and try again"
			}
		}
		return ""
	}

	v := strings.TrimSpace(s.Value(d))
	if v == "" || s.str == nil {
		return ""
	}
	switch s.Input {
	case InputEmail:
		if !format.IsEmail(v) {
			return "Enter a valid email address"
		}
	case InputPhone:
		if !format.IsPhone(v) {
			return "Enter a valid phone number"
		}
	case InputNumber:
		if n, err := strconv.Atoi(v); err != nil || n < 0 {
			return s.Label + " must be a whole number"
		}
	case InputDecimal:
		if n, err := strconv.ParseFloat(v, 64); err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
			return s.Label + " must be a number"
		}
	case InputCurrency:
		if _, err := format.ParseCurrency(v); err != nil {
			return s.Label + " must be an amount"
		}
	case InputDate:
		if _, err := format.ParseDate(v); err != nil {
			return s.Label + " must be a valid date"
		}
	}
	return ""
}

var registry = map[Field]*Spec{}

// Lookup returns the spec of a field.
func Lookup(f Field) (*Spec, bool) {
	s, ok := registry[f]
	return s, ok
}

func register(s *Spec) {
	registry[s.Field] = s
}

func strField(f Field, label string, in Input, p presence, get func(d *domain.Draft) *string) *Spec {
	return &Spec{Field: f, Label: label, Input: in, presence: p, str: get}
}

func selectField(f Field, label string, opts func(d *domain.Draft) []string, get func(d *domain.Draft) *string) *Spec {
	return &Spec{Field: f, Label: label, Input: InputSelect, presence: presentText, options: opts, str: get}
}

func fixed(opts ...string) func(*domain.Draft) []string {
	return func(*domain.Draft) []string { return opts }
}

func init() {
	catalog := location.Default()

	register(selectField(FieldCategory, "Property category", categoryOptions,
		func(d *domain.Draft) *string { return &d.Category }))

	state := selectField(FieldState, "State", func(*domain.Draft) []string { return catalog.States() },
		func(d *domain.Draft) *string { return &d.State })
	state.AllowCreate = true
	register(state)
	lga := selectField(FieldLGA, "Local government area", func(d *domain.Draft) []string { return catalog.LGAs(d.State) },
		func(d *domain.Draft) *string { return &d.LGA })
	lga.AllowCreate = true
	register(lga)
	area := selectField(FieldArea, "Area / neighbourhood", func(d *domain.Draft) []string { return catalog.Areas(d.State, d.LGA) },
		func(d *domain.Draft) *string { return &d.Area })
	area.AllowCreate = true
	register(area)

	register(strField(FieldPrice, "Price", InputCurrency, presentAmount,
		func(d *domain.Draft) *string { return &d.Price }))
	register(selectField(FieldRentalType, "Rental type", fixed(domain.RentalTypeRent, domain.RentalTypeLease),
		func(d *domain.Draft) *string { return &d.RentalType }))
	register(selectField(FieldLeaseHold, "Lease duration", fixed("1 year", "2 years", "3 years", "5 years", "10 years or more"),
		func(d *domain.Draft) *string { return &d.LeaseHold }))

	register(selectField(FieldCondition, "Property condition", fixed("Brand New", "Good Condition", "Needs Renovation"),
		func(d *domain.Draft) *string { return &d.Condition }))
	register(selectField(FieldBuildingType, "Building type",
		fixed("Detached Duplex", "Semi-Detached Duplex", "Terrace", "Bungalow", "Block of Flats", "Penthouse", "Office Space", "Shop"),
		func(d *domain.Draft) *string { return &d.BuildingType }))
	register(strField(FieldBedrooms, "Bedrooms", InputNumber, presentQuantity,
		func(d *domain.Draft) *string { return &d.Bedrooms }))
	register(strField(FieldBathrooms, "Bathrooms", InputNumber, presentQuantity,
		func(d *domain.Draft) *string { return &d.Bathrooms }))
	register(strField(FieldToilets, "Toilets", InputNumber, presentQuantity,
		func(d *domain.Draft) *string { return &d.Toilets }))
	register(strField(FieldParkingSpaces, "Parking spaces", InputNumber, presentCount,
		func(d *domain.Draft) *string { return &d.ParkingSpaces }))
	register(strField(FieldLandSize, "Land size", InputDecimal, presentMeasure,
		func(d *domain.Draft) *string { return &d.LandSize }))
	register(selectField(FieldMeasurementType, "Measurement unit", fixed("Plot", "Acres", "Square Meter", "Hectares"),
		func(d *domain.Draft) *string { return &d.MeasurementType }))

	register(&Spec{Field: FieldFeatures, Label: "Features", Input: InputTags, presence: presentList,
		options: featureOptions, list: func(d *domain.Draft) *[]string { return &d.Features }})
	register(&Spec{Field: FieldDocuments, Label: "Title documents", Input: InputTags, presence: presentList,
		options: fixed("C of O", "Governor's Consent", "Deed of Assignment", "Registered Survey", "Gazette", "Excision", "Receipt"),
		list:    func(d *domain.Draft) *[]string { return &d.Documents }})
	register(strField(FieldDescription, "Description", InputTextarea, presentText,
		func(d *domain.Draft) *string { return &d.Description }))

	register(selectField(FieldInvestmentType, "Investment type", fixed("Land", "Building", "Land and Building"),
		func(d *domain.Draft) *string { return &d.InvestmentType }))
	ratio := strField(FieldSharingRatio, "Sharing ratio", InputText, presentText,
		func(d *domain.Draft) *string { return &d.SharingRatio })
	ratio.Placeholder = "e.g. 60:40"
	register(ratio)

	register(strField(FieldMaxGuests, "Maximum guests", InputNumber, presentQuantity,
		func(d *domain.Draft) *string { return &d.MaxGuests }))
	register(strField(FieldMinimumStay, "Minimum stay (nights)", InputNumber, presentQuantity,
		func(d *domain.Draft) *string { return &d.MinimumStay }))
	register(strField(FieldCheckIn, "Check-in time", InputTime, presentText,
		func(d *domain.Draft) *string { return &d.CheckIn }))
	register(strField(FieldCheckOut, "Check-out time", InputTime, presentText,
		func(d *domain.Draft) *string { return &d.CheckOut }))
	register(strField(FieldHouseRules, "House rules", InputTextarea, presentText,
		func(d *domain.Draft) *string { return &d.HouseRules }))

	register(strField(FieldBudgetMin, "Minimum budget", InputCurrency, presentAmountZero,
		func(d *domain.Draft) *string { return &d.BudgetMin }))
	register(strField(FieldBudgetMax, "Maximum budget", InputCurrency, presentAmount,
		func(d *domain.Draft) *string { return &d.BudgetMax }))
	register(selectField(FieldPurpose, "Purpose", fixed("Personal Use", "Investment"),
		func(d *domain.Draft) *string { return &d.Purpose }))
	register(strField(FieldMoveInDate, "Move-in date", InputDate, presentText,
		func(d *domain.Draft) *string { return &d.MoveInDate }))
	register(strField(FieldCheckInDate, "Check-in date", InputDate, presentText,
		func(d *domain.Draft) *string { return &d.CheckInDate }))
	register(strField(FieldCheckOutDate, "Check-out date", InputDate, presentText,
		func(d *domain.Draft) *string { return &d.CheckOutDate }))
	register(strField(FieldNearbyLandmark, "Nearby landmark", InputText, presentText,
		func(d *domain.Draft) *string { return &d.NearbyLandmark }))
	register(strField(FieldCompanyName, "Company name", InputText, presentText,
		func(d *domain.Draft) *string { return &d.CompanyName }))

	register(&Spec{Field: FieldImages, Label: "Images", Input: InputMedia, presence: presentMedia,
		media: func(d *domain.Draft) *[]domain.Media { return &d.Images }})
	register(&Spec{Field: FieldVideos, Label: "Videos", Input: InputMedia, presence: presentMedia,
		media: func(d *domain.Draft) *[]domain.Media { return &d.Videos }})

	register(strField(FieldFullName, "Full name", InputText, presentText,
		func(d *domain.Draft) *string { return &d.FullName }))
	register(strField(FieldEmail, "Email", InputEmail, presentText,
		func(d *domain.Draft) *string { return &d.Email }))
	register(strField(FieldPhone, "Phone number", InputPhone, presentText,
		func(d *domain.Draft) *string { return &d.Phone }))
	register(&Spec{Field: FieldLegalOwner, Label: "I have the legal right to list this property", Input: InputCheckbox,
		presence: presentFlag, flag: func(d *domain.Draft) *bool { return &d.IsLegalOwner }})
}

func categoryOptions(d *domain.Draft) []string {
	switch d.Type {
	case domain.TypeRent:
		return []string{domain.CategoryResidential, domain.CategoryCommercial}
	case domain.TypeShortlet:
		return []string{domain.CategoryResidential}
	}
	return []string{domain.CategoryResidential, domain.CategoryCommercial, domain.CategoryLand}
}

func featureOptions(d *domain.Draft) []string {
	if d.Type == domain.TypeShortlet {
		return []string{"Wi-Fi", "Smart TV", "24/7 Power", "Swimming Pool", "Gym", "Kitchen", "Washing Machine", "Workspace"}
	}
	switch d.Category {
	case domain.CategoryLand:
		return []string{"Fenced", "Gated Estate", "Good Road Network", "Dry Land", "Corner Piece", "Electricity Nearby"}
	case domain.CategoryCommercial:
		return []string{"Elevator", "Power Backup", "Security", "Parking Space", "Conference Room", "Loading Bay", "Air Conditioning"}
	}
	return []string{"Swimming Pool", "Gym", "24/7 Power", "Security", "Parking Space", "Fitted Kitchen", "Boys Quarters", "Garden", "Air Conditioning", "Water Treatment"}
}
