package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

type fakeRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*Profile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{profiles: map[uuid.UUID]*Profile{}}
}

func (r *fakeRepo) Create(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return shared.ErrConflict
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepo) Update(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	r.profiles[p.ID] = &cp
	return nil
}

func newTestService() *Service {
	return NewService(newFakeRepo(), NewTokenIssuer("test-secret", time.Hour))
}

func signupRequest() SignupRequest {
	return SignupRequest{
		Email:        "pierre@plomberie-durand.fr",
		Password:     "correct horse",
		BusinessName: "Plomberie Durand",
		BusinessType: "plumber",
	}
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestService()

	created, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.NotEqual(t, "correct horse", created.Profile.PasswordHash)

	logged, err := svc.Login(context.Background(), LoginRequest{
		Email:    "pierre@plomberie-durand.fr",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.Equal(t, created.Profile.ID, logged.Profile.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), signupRequest())
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService()

	_, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "pierre@plomberie-durand.fr",
		Password: "wrong horse",
	})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// Unknown emails fail identically.
	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.fr",
		Password: "whatever",
	})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc := newTestService()

	req := signupRequest()
	req.Password = "short"
	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService()

	created, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)

	siret := "12345678901234"
	updated, err := svc.UpdateProfile(context.Background(), created.Profile.ID, UpdateProfileRequest{
		BusinessName: "Plomberie Durand et Fils",
		BusinessType: "plumber",
		SIRET:        &siret,
	})
	require.NoError(t, err)
	require.Equal(t, "Plomberie Durand et Fils", updated.BusinessName)
	require.NotNil(t, updated.SIRET)
}
