package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/vbonduro/briefdesk/internal/domain"
)

type PropertyLocation struct {
	State           string `json:"state"`
	LocalGovernment string `json:"localGovernment"`
	Area            string `json:"area"`
}

type PropertyFeature struct {
	FeatureName string `json:"featureName"`
}

type PropertyFeatures struct {
	NoOfBedroom  int `json:"noOfBedroom"`
	NoOfBathroom int `json:"noOfBathroom"`
	NoOfToilet   int `json:"noOfToilet"`
	NoOfCarPark  int `json:"noOfCarPark"`
}

// Property is a published listing as returned by the backend.
type Property struct {
	ID                 string            `json:"_id"`
	BriefType          string            `json:"briefType"`
	PropertyType       string            `json:"propertyType"`
	TypeOfBuilding     string            `json:"typeOfBuilding"`
	Price              int64             `json:"price"`
	Location           PropertyLocation  `json:"location"`
	AdditionalFeatures PropertyFeatures  `json:"additionalFeatures"`
	Features           []PropertyFeature `json:"features"`
	Pictures           []string          `json:"pictures"`
	Videos             []string          `json:"videos"`
	Description        string            `json:"description"`
	IsApproved         bool              `json:"isApproved"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// Cover is the first picture, or "" when the listing has none.
func (p Property) Cover() string {
	if len(p.Pictures) == 0 {
		return ""
	}
	return p.Pictures[0]
}

// PropertyPage is one page of a property listing query.
type PropertyPage struct {
	Properties []Property `json:"properties"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
}

type ListQuery struct {
	State string
	Page  int
	Limit int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.State != "" {
		v.Set("state", q.State)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) ListProperties(ctx context.Context, t domain.BriefType, q ListQuery) (*PropertyPage, error) {
	var page PropertyPage
	if err := c.Get(ctx, "/properties/"+propertySegment(t)+"/all", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) PropertyDetail(ctx context.Context, t domain.BriefType, id string) (*Property, error) {
	var p Property
	if err := c.Get(ctx, propertyPath(t, id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SimilarProperties(ctx context.Context, t domain.BriefType, id string) ([]Property, error) {
	var ps []Property
	if err := c.Get(ctx, propertyPath(t, id)+"/similar", nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Created is the record the backend returns for a new brief or preference.
type Created struct {
	ID string `json:"_id"`
}

// CreateBrief posts an assembled payload to path (see CreateBriefPath).
func (c *Client) CreateBrief(ctx context.Context, path string, payload any) (*Created, error) {
	var out Created
	if err := c.Post(ctx, path, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
