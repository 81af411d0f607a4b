package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
)

const testSecret = "test-secret-do-not-use"

func TestAuthService_RegisterAndLogin(t *testing.T) {
	var stored *domain.User
	users := &mockUserRepo{
		createFn: func(ctx context.Context, u *domain.User) error {
			stored = u
			return nil
		},
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			if stored != nil && stored.Email == email {
				return stored, nil
			}
			return nil, nil
		},
	}
	svc := usecases.NewAuthService(users, testSecret, time.Hour)

	user, err := svc.Register(context.Background(), "Amira", "Amira@Example.com", "correct-horse", domain.RoleStudent)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "amira@example.com" {
		t.Errorf("email should be normalised, got %s", user.Email)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password must not be stored in the clear")
	}

	got, token, err := svc.Login(context.Background(), "amira@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned wrong user")
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != string(domain.RoleStudent) {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "existing", Email: email}, nil
		},
	}
	svc := usecases.NewAuthService(users, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), "Amira", "amira@example.com", "correct-horse", domain.RoleStudent)
	if !errors.Is(err, usecases.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_RejectsWeakPassword(t *testing.T) {
	svc := usecases.NewAuthService(&mockUserRepo{}, testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Amira", "a@example.com", "short", domain.RoleStudent); err == nil {
		t.Error("expected error for short password")
	}
}

func TestAuthService_Register_RejectsAdminRole(t *testing.T) {
	svc := usecases.NewAuthService(&mockUserRepo{}, testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "longenough", domain.RoleAdmin); err == nil {
		t.Error("admin accounts must not be self-registered")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := usecases.NewAuthService(users, testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "u@example.com", "wrong-password"); !errors.Is(err, usecases.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := usecases.NewAuthService(&mockUserRepo{}, testSecret, time.Hour)

	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, usecases.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_VerifyToken_Garbage(t *testing.T) {
	svc := usecases.NewAuthService(&mockUserRepo{}, testSecret, time.Hour)

	if _, err := svc.VerifyToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestAuthService_VerifyToken_WrongSecret(t *testing.T) {
	issuer := usecases.NewAuthService(&mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			hash, _ := bcrypt.GenerateFromPassword([]byte("pw-longenough"), bcrypt.MinCost)
			return &domain.User{ID: "u1", Email: email, PasswordHash: string(hash), Role: domain.RoleOwner}, nil
		},
	}, testSecret, time.Hour)

	_, token, err := issuer.Login(context.Background(), "o@example.com", "pw-longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	verifier := usecases.NewAuthService(&mockUserRepo{}, "a-different-secret", time.Hour)
	if _, err := verifier.VerifyToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}
