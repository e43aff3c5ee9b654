package brief

// Location is the nested location object every endpoint expects.
type Location struct {
	State           string `json:"state"`
	LocalGovernment string `json:"localGovernment"`
	Area            string `json:"area,omitempty"`
}

type LandSize struct {
	Size            float64 `json:"size"`
	MeasurementType string  `json:"measurementType"`
}

type Feature struct {
	FeatureName string `json:"featureName"`
}

type Document struct {
	DocName    string `json:"docName"`
	IsProvided bool   `json:"isProvided"`
}

type Owner struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

type AdditionalFeatures struct {
	NoOfBedroom  int `json:"noOfBedroom,omitempty"`
	NoOfBathroom int `json:"noOfBathroom,omitempty"`
	NoOfToilet   int `json:"noOfToilet,omitempty"`
	NoOfCarPark  int `json:"noOfCarPark"`
}

type JVConditions struct {
	InvestmentType string `json:"investmentType"`
	SharingRatio   string `json:"sharingRatio"`
}

type ShortletDetails struct {
	MaxGuests   int    `json:"maxGuests"`
	MinimumStay int    `json:"minimumStay,omitempty"`
	CheckIn     string `json:"checkInTime,omitempty"`
	CheckOut    string `json:"checkOutTime,omitempty"`
	HouseRules  string `json:"houseRules,omitempty"`
}

// Listing is the body of a property brief creation call.
type Listing struct {
	BriefType          string              `json:"briefType"`
	PropertyType       string              `json:"propertyType"`
	PropertyCondition  string              `json:"propertyCondition,omitempty"`
	TypeOfBuilding     string              `json:"typeOfBuilding,omitempty"`
	Price              int64               `json:"price"`
	RentalType         string              `json:"rentalType,omitempty"`
	LeaseHold          string              `json:"leaseHold,omitempty"`
	Location           Location            `json:"location"`
	LandSize           *LandSize           `json:"landSize,omitempty"`
	AdditionalFeatures *AdditionalFeatures `json:"additionalFeatures,omitempty"`
	Features           []Feature           `json:"features"`
	DocsOnProperty     []Document          `json:"docsOnProperty,omitempty"`
	JVConditions       *JVConditions       `json:"jvConditions,omitempty"`
	ShortletDetails    *ShortletDetails    `json:"shortletDetails,omitempty"`
	Pictures           []string            `json:"pictures"`
	Videos             []string            `json:"videos,omitempty"`
	Description        string              `json:"description,omitempty"`
	Owner              Owner               `json:"owner"`
	AreYouTheOwner     bool                `json:"areYouTheOwner"`
}

type Budget struct {
	MinPrice int64  `json:"minPrice"`
	MaxPrice int64  `json:"maxPrice,omitempty"`
	Currency string `json:"currency"`
}

type PropertyDetails struct {
	PropertyType string    `json:"propertyType"`
	BuildingType string    `json:"buildingType,omitempty"`
	MinBedrooms  int       `json:"minBedrooms,omitempty"`
	MinBathrooms int       `json:"minBathrooms,omitempty"`
	Purpose      string    `json:"purpose,omitempty"`
	LandSize     *LandSize `json:"landSize,omitempty"`
	MoveInDate   string    `json:"moveInDate,omitempty"`
}

type DeveloperDetails struct {
	CompanyName    string `json:"companyName"`
	InvestmentType string `json:"investmentType"`
}

type BookingDetails struct {
	CheckInDate    string `json:"checkInDate"`
	CheckOutDate   string `json:"checkOutDate"`
	NumberOfGuests int    `json:"numberOfGuests"`
	MinBedrooms    int    `json:"minBedrooms,omitempty"`
}

// Preference is the body of a buyer/tenant/developer preference call.
type Preference struct {
	PreferenceType   string            `json:"preferenceType"`
	Location         Location          `json:"location"`
	Budget           Budget            `json:"budget"`
	PropertyDetails  *PropertyDetails  `json:"propertyDetails,omitempty"`
	DeveloperDetails *DeveloperDetails `json:"developerDetails,omitempty"`
	BookingDetails   *BookingDetails   `json:"bookingDetails,omitempty"`
	Features         []Feature         `json:"features"`
	Documents        []Document        `json:"documents,omitempty"`
	NearbyLandmark   string            `json:"nearbyLandmark,omitempty"`
	AdditionalNotes  string            `json:"additionalNotes,omitempty"`
	ContactInfo      Owner             `json:"contactInfo"`
}
