package token

import "time"

// RefreshThreshold is how close to expiry a token must be before it is
// renewed proactively.
const RefreshThreshold = 300 * time.Second

// Validation describes where a token sits in its lifetime.
// IsValid is always !IsExpired, and NeedsRefresh implies IsValid.
type Validation struct {
	IsValid          bool  `json:"isValid"`
	IsExpired        bool  `json:"isExpired"`
	SecondsRemaining int64 `json:"secondsRemaining"`
	NeedsRefresh     bool  `json:"needsRefresh"`
}

// Validate evaluates claims against now using RefreshThreshold.
func Validate(claims *Claims, now time.Time) Validation {
	return ValidateWithThreshold(claims, now, RefreshThreshold)
}

// ValidateWithThreshold evaluates claims against now. Nil claims mean there is
// no session and validate as expired without needing a refresh.
func ValidateWithThreshold(claims *Claims, now time.Time, threshold time.Duration) Validation {
	if claims == nil {
		return Validation{IsExpired: true}
	}

	remaining := claims.ExpiresAt - now.Unix()
	expired := remaining <= 0

	v := Validation{
		IsValid:      !expired,
		IsExpired:    expired,
		NeedsRefresh: !expired && remaining <= int64(threshold/time.Second),
	}
	if remaining > 0 {
		v.SecondsRemaining = remaining
	}
	return v
}
