package identity

// Credentials is the body of a login request.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TenantCode string `json:"tenantCode"`
}

// TokenResponse is returned from both the login and the refresh endpoints.
// The refresh endpoint may omit RefreshToken when it does not rotate it.
type TokenResponse struct {
	// AccessToken is the JWT presented as "Authorization: Bearer <token>".
	AccessToken string `json:"accessToken"`

	// RefreshToken is used only to obtain new access tokens.
	RefreshToken string `json:"refreshToken,omitempty"`

	// TokenType is normally "Bearer".
	TokenType string `json:"tokenType,omitempty"`

	// ExpiresIn is a hint in seconds; the JWT exp claim is authoritative.
	ExpiresIn int `json:"expiresIn,omitempty"`
}
