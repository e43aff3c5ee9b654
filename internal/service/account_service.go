package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
)

// accountBackend is the subset of api.Client for account pages.
type accountBackend interface {
	SubmitKYC(ctx context.Context, k api.KYC) error
	PublicAgentProfile(ctx context.Context, username string) (*api.AgentProfile, error)
	Subscribe(ctx context.Context, email string) error
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type AccountService struct {
	backend accountBackend
	logger  *slog.Logger
}

func NewAccountService(backend accountBackend, logger *slog.Logger) *AccountService {
	return &AccountService{backend: backend, logger: logger}
}

// KYCForm is the agent verification form as posted. IDDocument is optional
// when IDDocumentURL is already known.
type KYCForm struct {
	api.KYC
	IDDocument     io.Reader
	IDDocumentName string
}

func validateKYC(k api.KYC, hasFile bool) map[string]string {
	errs := map[string]string{}
	required := []struct{ key, val, label string }{
		{"fullName", k.FullName, "Full name"},
		{"address", k.Address, "Address"},
		{"state", k.State, "State"},
		{"idType", k.IDType, "ID type"},
		{"idNumber", k.IDNumber, "ID number"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs[r.key] = r.label + " is required"
		}
	}
	if k.IDDocumentURL == "" && !hasFile {
		errs["idDocument"] = "Upload a copy of your ID"
	}
	return errs
}

// SubmitKYC uploads the ID document if one was attached and submits the
// verification. Only agents may submit.
func (s *AccountService) SubmitKYC(ctx context.Context, user *domain.User, form KYCForm) error {
	if !user.IsAgent() {
		return ErrNotAgent
	}
	if errs := validateKYC(form.KYC, form.IDDocument != nil); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	k := form.KYC
	if form.IDDocument != nil {
		url, err := s.backend.Upload(ctx, form.IDDocumentName, form.IDDocument)
		if err != nil {
			return s.classify("kyc document upload", err)
		}
		k.IDDocumentURL = url
	}

	if err := s.backend.SubmitKYC(ctx, k); err != nil {
		return s.classify("kyc submission", err)
	}
	s.logger.Info("kyc submitted", "user_id", user.ID)
	return nil
}

func (s *AccountService) AgentProfile(ctx context.Context, username string) (*api.AgentProfile, error) {
	p, err := s.backend.PublicAgentProfile(ctx, username)
	if err != nil {
		return nil, s.classify("agent profile", err)
	}
	return p, nil
}

// Subscribe adds an email address to the newsletter.
func (s *AccountService) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !format.IsEmail(email) {
		return &ValidationError{Fields: map[string]string{"email": "Enter a valid email address"}}
	}
	if err := s.backend.Subscribe(ctx, email); err != nil {
		return s.classify("subscribe", err)
	}
	return nil
}

func (s *AccountService) classify(op string, err error) error {
	if isTransportFailure(err) {
		s.logger.Error(op+" failed", "error", err)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return err
}
