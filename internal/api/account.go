package api

import (
	"context"
	"net/url"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// KYC is the agent identity verification submission.
type KYC struct {
	FullName             string `json:"fullName"`
	Address              string `json:"address"`
	State                string `json:"state"`
	IDType               string `json:"idType"`
	IDNumber             string `json:"idNumber"`
	IDDocumentURL        string `json:"idDocumentUrl"`
	AgentLicenseNumber   string `json:"agentLicenseNumber,omitempty"`
	CompanyName          string `json:"companyName,omitempty"`
	RegisteredWithAgency bool   `json:"registeredWithAgency"`
}

func (c *Client) SubmitKYC(ctx context.Context, k KYC) error {
	return c.Put(ctx, pathKYC, k, nil)
}

func (c *Client) PublicSettings(ctx context.Context) (*domain.PublicAccess, error) {
	var s domain.PublicAccess
	if err := c.Get(ctx, pathPublicSettings, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdatePublicSettings(ctx context.Context, s domain.PublicAccess) (*domain.PublicAccess, error) {
	var out domain.PublicAccess
	if err := c.Put(ctx, pathPublicSettings, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type AgentProfile struct {
	FullName string     `json:"fullName"`
	Username string     `json:"username"`
	Headline string     `json:"headline"`
	Bio      string     `json:"bio"`
	Phone    string     `json:"phoneNumber"`
	Email    string     `json:"email"`
	Verified bool       `json:"isVerified"`
	Avatar   string     `json:"profilePicture"`
	Listings []Property `json:"listings"`
}

func (c *Client) PublicAgentProfile(ctx context.Context, username string) (*AgentProfile, error) {
	var p AgentProfile
	if err := c.Get(ctx, pathPublicAgent+url.PathEscape(username), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Subscribe(ctx context.Context, email string) error {
	return c.Post(ctx, pathSubscribe, map[string]string{"email": email}, nil)
}
