package tenants

// Tenant is an organization users log in to. Code is the short identifier
// users type at login.
type Tenant struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
