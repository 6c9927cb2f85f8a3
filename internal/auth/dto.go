package auth

// SignupRequest registers a new business profile.
type SignupRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8,max=72"`
	BusinessName string  `json:"business_name" validate:"required,max=200"`
	BusinessType string  `json:"business_type" validate:"max=100"`
	Phone        string  `json:"phone" validate:"max=40"`
	SIRET        *string `json:"siret" validate:"omitempty,len=14,numeric"`
}

// LoginRequest authenticates an existing profile.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest changes the business details of a profile.
type UpdateProfileRequest struct {
	BusinessName string  `json:"business_name" validate:"required,max=200"`
	BusinessType string  `json:"business_type" validate:"max=100"`
	Phone        string  `json:"phone" validate:"max=40"`
	SIRET        *string `json:"siret" validate:"omitempty,len=14,numeric"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"profile"`
}
