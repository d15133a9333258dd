package tenants

import "errors"

var ErrNotFound = errors.New("tenant not found")

type Repo interface {
	Upsert(tenantData *Tenant) error
	Get(tenantID string) (*Tenant, error)
	GetByCode(code string) (*Tenant, error)
}
