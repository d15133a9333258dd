package token

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-session/internal/utils"
)

// Claims is the normalized view of an access token payload.
// Fields that could not be resolved from any known key are left empty.
type Claims struct {
	Subject    string   `json:"subject,omitempty"`    // User identifier
	Username   string   `json:"username,omitempty"`   // Login name
	ExpiresAt  int64    `json:"expiresAt"`            // Absolute expiry, epoch seconds
	IssuedAt   int64    `json:"issuedAt,omitempty"`   // Issued at, epoch seconds
	TenantID   string   `json:"tenantId,omitempty"`   // Tenant identifier
	TenantCode string   `json:"tenantCode,omitempty"` // Tenant code, may need a fallback
	TenantName string   `json:"tenantName,omitempty"` // Display name of the tenant
	Roles      []string `json:"roles,omitempty"`      // Role names, possibly empty
}

// Key names probed in priority order for each logical field. Identity
// providers have emitted every one of these spellings at some point.
var (
	subjectKeys    = []string{"user_id", "sub", "id"}
	usernameKeys   = []string{"username", "preferred_username", "name"}
	tenantIDKeys   = []string{"tenant_id", "tenantId"}
	tenantCodeKeys = []string{"code", "tenant_code", "tenantCode"}
	tenantNameKeys = []string{"tenant_name", "tenantName"}
	roleKeys       = []string{"roles", "authorities"}
)

// HasRole reports whether the claims carry the named role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TenantCodeOrDefault returns the tenant code, synthesizing one from the
// tenant id when the token carried no code claim.
func (c *Claims) TenantCodeOrDefault() string {
	if c.TenantCode != "" {
		return c.TenantCode
	}
	if c.TenantID != "" {
		return "T" + c.TenantID
	}
	return ""
}

// Clone returns a deep copy.
func (c *Claims) Clone() *Claims {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Roles != nil {
		cp.Roles = append([]string(nil), c.Roles...)
	}
	return &cp
}

func normalizeClaims(payload jwt.MapClaims) *Claims {
	claims := &Claims{
		Subject:    firstString(payload, subjectKeys),
		Username:   firstString(payload, usernameKeys),
		TenantID:   firstString(payload, tenantIDKeys),
		TenantCode: firstString(payload, tenantCodeKeys),
		TenantName: firstString(payload, tenantNameKeys),
		Roles:      firstRoles(payload, roleKeys),
	}

	// A malformed exp is treated like a missing one, which validates as expired.
	if exp, err := payload.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Unix()
	}
	if iat, err := payload.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Unix()
	}
	return claims
}

func firstString(payload jwt.MapClaims, keys []string) string {
	for _, k := range keys {
		if s, ok := stringValue(payload[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

func firstRoles(payload jwt.MapClaims, keys []string) []string {
	for _, k := range keys {
		if roles := roleValues(payload[k]); len(roles) > 0 {
			return roles
		}
	}
	return nil
}

func roleValues(v any) []string {
	switch val := v.(type) {
	case string:
		return strings.FieldsFunc(val, func(r rune) bool {
			return r == ',' || r == ' '
		})
	case []any:
		roles := utils.ToStringSlice(val)
		for _, item := range val {
			// Spring style authorities: [{"authority": "ROLE_ADMIN"}]
			if obj, ok := item.(map[string]any); ok {
				if s := firstString(obj, []string{"authority", "name"}); s != "" {
					roles = append(roles, s)
				}
			}
		}
		return roles
	default:
		return nil
	}
}
