package domain

import "time"

// Kind separates property listings (briefs) from buyer preference requests.
type Kind string

const (
	KindListing    Kind = "listing"
	KindPreference Kind = "preference"
)

// BriefType is the transaction type of a draft. Listings use sell, rent, jv
// and shortlet; preferences use buy, rent, joint-venture and shortlet.
type BriefType string

const (
	TypeSell         BriefType = "sell"
	TypeRent         BriefType = "rent"
	TypeJV           BriefType = "jv"
	TypeShortlet     BriefType = "shortlet"
	TypeBuy          BriefType = "buy"
	TypeJointVenture BriefType = "joint-venture"
)

var briefTypes = map[Kind][]BriefType{
	KindListing:    {TypeSell, TypeRent, TypeJV, TypeShortlet},
	KindPreference: {TypeBuy, TypeRent, TypeJointVenture, TypeShortlet},
}

// BriefTypes lists the types valid for kind, in menu order.
func BriefTypes(kind Kind) []BriefType {
	return briefTypes[kind]
}

// ValidBriefType reports whether t is a transaction type for kind.
func ValidBriefType(kind Kind, t BriefType) bool {
	for _, bt := range briefTypes[kind] {
		if bt == t {
			return true
		}
	}
	return false
}

const (
	CategoryResidential = "Residential"
	CategoryCommercial  = "Commercial"
	CategoryLand        = "Land"

	RentalTypeRent  = "Rent"
	RentalTypeLease = "Lease"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"

	// MediaDocument is a PDF, accepted only as review evidence.
	MediaDocument MediaKind = "document"
)

// Media is an image or video attached to a draft, or a review evidence file.
// While the file is being forwarded to the backend IsUploading is true and
// URL is empty.
type Media struct {
	ID          string
	Kind        MediaKind
	Filename    string
	URL         string
	StagingKey  string
	IsUploading bool
	Failed      bool
}

// Ready reports whether the item finished uploading and has a URL.
func (m Media) Ready() bool {
	return !m.IsUploading && !m.Failed && m.URL != ""
}

// Draft is the in-progress form state for one listing or preference. Numeric
// inputs are kept as the strings the user typed (currency display-formatted)
// and converted when the backend payload is assembled.
type Draft struct {
	ID   string
	Kind Kind
	Type BriefType

	Category   string
	State      string
	LGA        string
	Area       string
	Price      string
	RentalType string
	LeaseHold  string

	Condition       string
	BuildingType    string
	Bedrooms        string
	Bathrooms       string
	Toilets         string
	ParkingSpaces   string
	LandSize        string
	MeasurementType string
	Features        []string
	Documents       []string
	Description     string

	InvestmentType string
	SharingRatio   string

	MaxGuests   string
	MinimumStay string
	CheckIn     string
	CheckOut    string
	HouseRules  string

	BudgetMin      string
	BudgetMax      string
	Purpose        string
	MoveInDate     string
	CheckInDate    string
	CheckOutDate   string
	NearbyLandmark string
	CompanyName    string

	Images []Media
	Videos []Media

	FullName     string
	Email        string
	Phone        string
	IsLegalOwner bool

	Step        int
	ShowSummary bool
	Touched     map[string]bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDraft returns an empty draft for the given kind and type.
func NewDraft(kind Kind, t BriefType) *Draft {
	now := time.Now().UTC()
	return &Draft{
		Kind:      kind,
		Type:      t,
		Touched:   map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLand reports whether the draft describes bare land.
func (d *Draft) IsLand() bool {
	return d.Category == CategoryLand
}

// IsLease reports whether a rental draft is a lease rather than a plain rent.
func (d *Draft) IsLease() bool {
	return d.RentalType == RentalTypeLease
}

// Media returns images followed by videos.
func (d *Draft) Media() []Media {
	out := make([]Media, 0, len(d.Images)+len(d.Videos))
	out = append(out, d.Images...)
	return append(out, d.Videos...)
}

// Uploading reports whether any attached media is still being uploaded.
func (d *Draft) Uploading() bool {
	for _, m := range d.Media() {
		if m.IsUploading {
			return true
		}
	}
	return false
}

// FindMedia returns the media item with the given id.
func (d *Draft) FindMedia(id string) (Media, bool) {
	for _, m := range d.Media() {
		if m.ID == id {
			return m, true
		}
	}
	return Media{}, false
}
