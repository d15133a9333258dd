package refreshtokens

import "sync"

var _ Repo = (*InMemoryRepo)(nil)

type InMemoryRepo struct {
	mu     sync.Mutex
	tokens map[string]*StoredRefreshToken
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens: make(map[string]*StoredRefreshToken),
	}
}

func (r *InMemoryRepo) Upsert(refreshToken *StoredRefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *refreshToken
	r.tokens[cp.Token] = &cp
	return nil
}

func (r *InMemoryRepo) Take(token string) (*StoredRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.tokens, token)
	return rt, nil
}

func (r *InMemoryRepo) DeleteByUserID(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for token, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, token)
			n++
		}
	}
	return n
}
