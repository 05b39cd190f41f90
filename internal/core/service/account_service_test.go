package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-core/internal/core/domain"
	"github.com/99minutos/auth-core/internal/infrastructure/hash"
)

func newAccountSvc(repo *stubAccountRepo, sink *recordingSink) *AccountService {
	return NewAccountService(repo, hash.NewBcrypt(bcrypt.MinCost, nil), sink, zerolog.Nop())
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	sink := &recordingSink{}
	svc := newAccountSvc(repo, sink)

	acct, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if acct.ID == "" {
		t.Fatalf("expected store-assigned id")
	}
	if acct.Username != "bob01" || acct.Email != "bob@x.com" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if acct.PasswordHash != "" {
		t.Fatalf("password hash leaked to caller")
	}
	if acct.CreatedAt.IsZero() {
		t.Fatalf("expected created_at from store")
	}

	stored := repo.byID[acct.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if e := sink.last(); e.Type != domain.ActivityAccountRegistered || e.UserID != acct.ID {
		t.Fatalf("unexpected activity: %+v", e)
	}
}

func TestAccountService_Register_HashNeverSerialised(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	acct, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stored := repo.byID[acct.ID]

	body, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), stored.PasswordHash) || strings.Contains(string(body), "password") {
		t.Fatalf("hash present in payload: %s", body)
	}
}

func TestAccountService_Register_ValidationPropagates(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	_, err := svc.Register(context.Background(), "ab", "bob@x.com", "longenough1")
	if !errors.Is(err, domain.ErrUsernameLength) {
		t.Fatalf("expected ErrUsernameLength, got %v", err)
	}
	if repo.finds != 0 || repo.creates != 0 {
		t.Fatalf("store touched on invalid input")
	}
}

func TestAccountService_Register_UsernameTaken(t *testing.T) {
	svc := newAccountSvc(newStubAccountRepo(), nil)

	if _, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob01", "other@x.com", "longenough1"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAccountService_Register_EmailTaken(t *testing.T) {
	svc := newAccountSvc(newStubAccountRepo(), nil)

	if _, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob02", "bob@x.com", "longenough1"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAccountService_Register_UsernamePriority(t *testing.T) {
	svc := newAccountSvc(newStubAccountRepo(), nil)

	if _, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAccountService_Register_InsertRace(t *testing.T) {
	for _, want := range []error{domain.ErrUsernameTaken, domain.ErrEmailTaken, domain.ErrAccountExists} {
		repo := &racingRepo{createErr: want}
		svc := NewAccountService(repo, hash.NewBcrypt(bcrypt.MinCost, nil), nil, zerolog.Nop())

		_, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1")
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAccountService_Register_StoreFailure(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("connection refused")
	svc := newAccountSvc(repo, nil)

	_, err := svc.Register(context.Background(), "bob01", "bob@x.com", "longenough1")
	if err == nil || domain.IsRegistration(err) || domain.IsValidation(err) {
		t.Fatalf("expected generic infrastructure error, got %v", err)
	}
}

func TestAccountService_Register_Concurrent(t *testing.T) {
	svc := newAccountSvc(newStubAccountRepo(), nil)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "carol" + string(rune('a'+i)) + "@x.com"
			_, err := svc.Register(context.Background(), "carol", email, "longenough1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one account, got %d", successes)
	}
	for _, err := range failures {
		if !errors.Is(err, domain.ErrUsernameTaken) && !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("loser got unexpected error: %v", err)
		}
	}
}

func TestAccountService_Profile(t *testing.T) {
	svc := newAccountSvc(newStubAccountRepo(), nil)

	created, err := svc.Register(context.Background(), "dave_1", "dave@x.com", "longenough1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Profile(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if got.Username != "dave_1" || got.PasswordHash != "" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
