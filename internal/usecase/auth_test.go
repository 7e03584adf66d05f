package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
	"github.com/polkiloo/topupshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/topupshop/internal/pkg/auth"
	testhelpers "github.com/polkiloo/topupshop/internal/test"
)

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{
		IssueFn: func(userID int64) (string, error) {
			return fmt.Sprintf("token-%d", userID), nil
		},
		ParseFn: func(token string) (int64, error) {
			var id int64
			if _, err := fmt.Sscanf(token, "token-%d", &id); err != nil {
				return 0, pkgAuth.ErrInvalidToken
			}
			return id, nil
		},
	}
}

func newAuthUseCase(store *testhelpers.MemoryStore) *AuthUseCase {
	return NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, newStrategyStub())
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newAuthUseCase(store)

	ctx := context.Background()
	user, token, err := uc.Register(ctx, "Alice", "  Alice@Example.COM ", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user to have ID assigned")
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
	stored, err := store.Users().GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != "hash:password" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
	if stored.Role != model.RoleUser || stored.Balance != 0 {
		t.Fatalf("unexpected new account state: %+v", stored)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "bob", "bob@example.com", "secret1"); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := uc.Register(ctx, "bobby", "BOB@example.com", "secret1"); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name, user, email, password string
		want                        error
	}{
		{"missing name", " ", "a@example.com", "password", domainErrors.ErrInvalidCredentials},
		{"missing email", "a", "", "password", domainErrors.ErrInvalidCredentials},
		{"missing password", "a", "a@example.com", "", domainErrors.ErrInvalidCredentials},
		{"malformed email", "a", "not-an-email", "password", domainErrors.ErrInvalidInput},
		{"short password", "a", "a@example.com", "12345", pkgAuth.ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Register(ctx, tc.user, tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthUseCaseRegisterHasherError(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewAuthUseCase(store.Users(), testhelpers.HasherStub{HashFn: func(string) (string, error) {
		return "", fmt.Errorf("hash error")
	}}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "user", "user@example.com", "password"); err == nil {
		t.Fatal("expected hashing error")
	}
}

func TestAuthUseCaseRegisterIssueTokenError(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	strategy := testhelpers.StrategyStub{IssueFn: func(int64) (string, error) {
		return "", fmt.Errorf("cannot issue token")
	}}
	uc := NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, strategy)
	if _, _, err := uc.Register(context.Background(), "user", "user@example.com", "password"); err == nil {
		t.Fatal("expected token issuing error")
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "carol", "carol@example.com", "123456"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := uc.Authenticate(ctx, "carol@example.com", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}

	_, token, err := uc.Authenticate(ctx, " CAROL@example.com ", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestAuthUseCaseAuthenticateNotFound(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())
	if _, _, err := uc.Authenticate(context.Background(), "absent@example.com", "password"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestAuthUseCaseAuthenticateValidation(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())
	if _, _, err := uc.Authenticate(context.Background(), "", "pass"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := uc.Authenticate(context.Background(), "user@example.com", ""); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestAuthUseCaseAuthenticateIssueTokenError(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	calls := 0
	strategy := testhelpers.StrategyStub{
		IssueFn: func(int64) (string, error) {
			calls++
			if calls > 1 {
				return "", fmt.Errorf("issue error")
			}
			return "token", nil
		},
	}
	uc := NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, strategy)
	if _, _, err := uc.Register(context.Background(), "user", "user@example.com", "password"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, _, err := uc.Authenticate(context.Background(), "user@example.com", "password"); err == nil {
		t.Fatal("expected issue error on authenticate")
	}
}

func TestAuthUseCaseParseToken(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewMemoryStore())

	id, err := uc.ParseToken("token-42")
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	if _, err := uc.ParseToken("bad-token"); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := uc.ParseToken(""); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestAuthUseCaseGetByIDAndIsAdmin(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := newAuthUseCase(store)
	ctx := context.Background()

	customer := store.AddUser("dave", 0)
	admin := store.AddUser("root", 0)
	store.SetRole(admin.ID, model.RoleAdmin)

	fetched, err := uc.GetByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get by id returned error: %v", err)
	}
	if fetched.Email != "dave@example.com" {
		t.Fatalf("unexpected email %q", fetched.Email)
	}

	if ok, err := uc.IsAdmin(ctx, customer.ID); err != nil || ok {
		t.Fatalf("customer must not be admin: %v %v", ok, err)
	}
	if ok, err := uc.IsAdmin(ctx, admin.ID); err != nil || !ok {
		t.Fatalf("expected admin: %v %v", ok, err)
	}
	if _, err := uc.IsAdmin(ctx, 999); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
