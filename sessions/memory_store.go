package sessions

import (
	"context"
	"sync"
)

// MemoryStore keeps the session for the lifetime of the process.
type MemoryStore struct {
	session *Session
	lock    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) Save(_ context.Context, session *Session) error {
	cp := session.Clone()
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.session = cp
	return nil
}

func (ms *MemoryStore) Load(_ context.Context) (*Session, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return ms.session.Clone(), nil
}

func (ms *MemoryStore) Clear(_ context.Context) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.session = nil
	return nil
}
