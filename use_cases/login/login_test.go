package login

import (
	"context"
	"errors"
	"testing"

	"github.com/giovaniif/motorent/domain/user"
	"github.com/giovaniif/motorent/infra/repositories"
)

type mockTokens struct {
	issued []string
}

func (m *mockTokens) Issue(u *user.User) (string, error) {
	m.issued = append(m.issued, u.Id)
	return "token-" + u.Id, nil
}

func newLogin() (*Login, *repositories.UserRepositoryMemory, *mockTokens) {
	users := repositories.NewUserRepositoryMemory(user.User{Id: "user2", Email: "admin@motorent.com", Name: "Admin User", Role: user.Admin})
	tokens := &mockTokens{}
	return NewLogin(users, tokens), users, tokens
}

func TestLogin_KnownEmail(t *testing.T) {
	l, _, tokens := newLogin()

	out, err := l.Login(context.Background(), Input{Email: " Admin@MotoRent.com "})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Token != "token-user2" || out.User.Role != user.Admin {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(tokens.issued) != 1 {
		t.Fatalf("expected one token, got %v", tokens.issued)
	}
}

func TestLogin_UnknownEmailWithoutName(t *testing.T) {
	l, _, tokens := newLogin()

	if _, err := l.Login(context.Background(), Input{Email: "new@motorent.com"}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(tokens.issued) != 0 {
		t.Fatalf("expected no token, got %v", tokens.issued)
	}
}

func TestLogin_SignsUpAsRenter(t *testing.T) {
	l, users, _ := newLogin()

	out, err := l.Login(context.Background(), Input{Email: "new@motorent.com", Name: "Sam Road"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.User.Role != user.Renter || out.User.Id == "" {
		t.Fatalf("unexpected user %+v", out.User)
	}
	stored, err := users.FindByEmail(context.Background(), "new@motorent.com")
	if err != nil || stored.Id != out.User.Id {
		t.Fatalf("expected user to be stored, got %+v, %v", stored, err)
	}
}

func TestLogin_InvalidEmail(t *testing.T) {
	l, _, _ := newLogin()

	if _, err := l.Login(context.Background(), Input{Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}
