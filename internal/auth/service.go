package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HeisenPear/saas-localBizz/internal/shared"
)

// Service implements registration and authentication.
type Service struct {
	repo   Repository
	issuer *TokenIssuer
}

// NewService constructs a Service.
func NewService(repo Repository, issuer *TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Signup registers a new profile and logs it in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	p := &Profile{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Phone:        req.Phone,
		SIRET:        req.SIRET,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(p.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, Profile: p}, nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		return nil, shared.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(p.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, Profile: p}, nil
}

// Profile returns the authenticated profile.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes the business details of the authenticated
// profile.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	if err := shared.ValidateStruct(req); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.BusinessName = req.BusinessName
	p.BusinessType = req.BusinessType
	p.Phone = req.Phone
	p.SIRET = req.SIRET
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
