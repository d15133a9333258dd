package tenantrepofakes

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-session/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*tenants.Tenant
	codes   map[string]string // upper-cased code to tenant id
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
		codes:   make(map[string]string),
	}
}

func (tr *FakeTenantRepo) Upsert(tenantData *tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tenantData.ID == "" {
		tenantData.ID = uuid.New().String()
	}
	cp := *tenantData
	tr.tenants[cp.ID] = &cp
	tr.codes[strings.ToUpper(cp.Code)] = cp.ID
	return nil
}

func (tr *FakeTenantRepo) Get(tenantID string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	tenant, ok := tr.tenants[tenantID]
	if !ok {
		return nil, tenants.ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

// GetByCode looks a tenant up by code, ignoring case.
func (tr *FakeTenantRepo) GetByCode(code string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	id, ok := tr.codes[strings.ToUpper(code)]
	if !ok {
		return nil, tenants.ErrNotFound
	}
	cp := *tr.tenants[id]
	return &cp, nil
}
