package api

import (
	"context"
	"net/url"
)

type VerifiedDocument struct {
	ID             string `json:"_id"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	URL            string `json:"documentUrl"`
}

// DocumentBundle is what an access code unlocks: the documents a buyer
// submitted for third-party review.
type DocumentBundle struct {
	ID              string             `json:"_id"`
	BuyerName       string             `json:"fullName"`
	PropertyAddress string             `json:"propertyAddress"`
	Documents       []VerifiedDocument `json:"documents"`
}

func (c *Client) VerifyAccessCode(ctx context.Context, verificationID, code string) (*DocumentBundle, error) {
	var b DocumentBundle
	body := map[string]string{"accessCode": code}
	if err := c.Post(ctx, pathDocVerification+url.PathEscape(verificationID)+"/verify-access-code", body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type DocumentFinding struct {
	DocumentID  string `json:"documentId"`
	Description string `json:"description"`
	EvidenceURL string `json:"newDocumentUrl,omitempty"`
}

type DocumentReport struct {
	AccessCode string            `json:"accessCode"`
	Findings   []DocumentFinding `json:"reports"`
}

func (c *Client) SubmitDocumentReport(ctx context.Context, verificationID string, r DocumentReport) error {
	return c.Post(ctx, pathDocVerification+url.PathEscape(verificationID)+"/report", r, nil)
}
