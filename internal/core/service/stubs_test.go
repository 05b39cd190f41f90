package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/99minutos/auth-core/internal/core/domain"
)

// stubAccountRepo enforces username/email uniqueness under a lock, the way a
// unique index would.
type stubAccountRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Account
	seq     int
	findErr error
	finds   int
	creates int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (r *stubAccountRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Create(_ context.Context, username, email, hash string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	for _, a := range r.byID {
		if a.Username == username {
			return nil, domain.ErrUsernameTaken
		}
		if a.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	now := time.Now().UTC()
	a := &domain.Account{
		ID:           fmt.Sprintf("acct-%d", r.seq),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[a.ID] = a
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Ping(context.Context) error { return nil }

// racingRepo simulates a registration that completes between the lookup and
// the insert.
type racingRepo struct {
	stubAccountRepo
	createErr error
}

func (r *racingRepo) FindByUsernameOrEmail(context.Context, string, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (r *racingRepo) Create(context.Context, string, string, string) (*domain.Account, error) {
	return nil, r.createErr
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, e domain.ActivityEvent) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) last() domain.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return domain.ActivityEvent{}
	}
	return s.events[len(s.events)-1]
}
