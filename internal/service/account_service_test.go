package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/briefdesk/internal/api"
	"github.com/vbonduro/briefdesk/internal/domain"
)

type stubAccountBackend struct {
	err        error
	kyc        []api.KYC
	subscribed []string
	uploaded   []string
}

func (s *stubAccountBackend) SubmitKYC(_ context.Context, k api.KYC) error {
	if s.err != nil {
		return s.err
	}
	s.kyc = append(s.kyc, k)
	return nil
}

func (s *stubAccountBackend) PublicAgentProfile(_ context.Context, username string) (*api.AgentProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.AgentProfile{Username: username, FullName: "Ada Obi"}, nil
}

func (s *stubAccountBackend) Subscribe(_ context.Context, email string) error {
	if s.err != nil {
		return s.err
	}
	s.subscribed = append(s.subscribed, email)
	return nil
}

func (s *stubAccountBackend) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	_, _ = io.ReadAll(r)
	s.uploaded = append(s.uploaded, filename)
	return "https://cdn.example.test/" + filename, nil
}

func completeKYC() api.KYC {
	return api.KYC{
		FullName: "Ada Obi",
		Address:  "12 Bourdillon Rd",
		State:    "Lagos",
		IDType:   "NIN",
		IDNumber: "12345678901",
	}
}

func TestAccountServiceKYCAgentOnly(t *testing.T) {
	backend := &stubAccountBackend{}
	svc := NewAccountService(backend, discardLogger())

	err := svc.SubmitKYC(context.Background(), &domain.User{ID: "u2", Role: domain.RoleBuyer}, KYCForm{KYC: completeKYC()})
	assert.ErrorIs(t, err, ErrNotAgent)

	err = svc.SubmitKYC(context.Background(), nil, KYCForm{KYC: completeKYC()})
	assert.ErrorIs(t, err, ErrNotAgent)
	assert.Empty(t, backend.kyc)
}

func TestAccountServiceKYCValidation(t *testing.T) {
	svc := NewAccountService(&stubAccountBackend{}, discardLogger())

	err := svc.SubmitKYC(context.Background(), agentUser, KYCForm{KYC: api.KYC{FullName: "Ada"}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "address")
	assert.Contains(t, verr.Fields, "idDocument")
	assert.NotContains(t, verr.Fields, "fullName")
}

func TestAccountServiceKYCUploadsDocument(t *testing.T) {
	backend := &stubAccountBackend{}
	svc := NewAccountService(backend, discardLogger())

	form := KYCForm{KYC: completeKYC(), IDDocument: strings.NewReader("scan"), IDDocumentName: "nin.jpg"}
	require.NoError(t, svc.SubmitKYC(context.Background(), agentUser, form))

	require.Len(t, backend.kyc, 1)
	assert.Equal(t, "https://cdn.example.test/nin.jpg", backend.kyc[0].IDDocumentURL)
	assert.Equal(t, []string{"nin.jpg"}, backend.uploaded)
}

func TestAccountServiceSubscribe(t *testing.T) {
	backend := &stubAccountBackend{}
	svc := NewAccountService(backend, discardLogger())
	ctx := context.Background()

	var verr *ValidationError
	require.True(t, errors.As(svc.Subscribe(ctx, "not-an-email"), &verr))
	assert.Empty(t, backend.subscribed)

	require.NoError(t, svc.Subscribe(ctx, " ada@example.com "))
	assert.Equal(t, []string{"ada@example.com"}, backend.subscribed)
}

func TestAccountServiceTransportFailure(t *testing.T) {
	svc := NewAccountService(&stubAccountBackend{err: errors.New("connection refused")}, discardLogger())

	_, err := svc.AgentProfile(context.Background(), "ada")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
