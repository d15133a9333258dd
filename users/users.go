package users

import (
	"golang.org/x/crypto/bcrypt"
)

// RoleType is a role granted to a user within a tenant.
type RoleType string

const (
	RoleTenantAdmin  RoleType = "tenant_admin"  // Can manage users and settings within a tenant
	RoleTenantUser   RoleType = "tenant_user"   // Regular user within a tenant
	RoleTenantViewer RoleType = "tenant_viewer" // Read-only access within a tenant
)

// TenantMembership represents a user's membership and roles within a specific tenant
type TenantMembership struct {
	TenantID string     `json:"tenant_id"`
	Roles    []RoleType `json:"roles"`
}

type User struct {
	ID           string             `json:"id,omitempty"`       // Unique identifier for the user
	Username     string             `json:"username,omitempty"` // Unique login name
	PasswordHash string             `json:"-"`                  // Hashed password, never serialized
	Tenants      []TenantMembership `json:"tenants,omitempty"`  // Per-tenant roles and membership
	Blocked      bool               `json:"blocked,omitempty"`  // Blocked users cannot log in
}

// HashPassword hashes password with bcrypt. cost defaults to bcrypt.DefaultCost
// when zero; tests pass bcrypt.MinCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) HasTenant(tenantID string) bool {
	return u.GetTenantMembership(tenantID) != nil
}

// GetTenantMembership returns the user's membership for a specific tenant
func (u *User) GetTenantMembership(tenantID string) *TenantMembership {
	for i := range u.Tenants {
		if u.Tenants[i].TenantID == tenantID {
			return &u.Tenants[i]
		}
	}
	return nil
}

// GetRolesForTenant returns the user's role names within a specific tenant
func (u *User) GetRolesForTenant(tenantID string) []string {
	membership := u.GetTenantMembership(tenantID)
	if membership == nil {
		return nil
	}
	roles := make([]string, 0, len(membership.Roles))
	for _, r := range membership.Roles {
		roles = append(roles, string(r))
	}
	return roles
}
