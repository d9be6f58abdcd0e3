// Package login signs shoppers in by email. There are no passwords; knowing
// an account's email is enough, and unknown emails with a name sign up.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/giovaniif/motorent/domain/user"
	"github.com/google/uuid"
)

var ErrInvalidEmail = errors.New("invalid email")

type TokenIssuer interface {
	Issue(u *user.User) (string, error)
}

type Login struct {
	users  user.Repository
	tokens TokenIssuer
	now    func() time.Time
}

func NewLogin(users user.Repository, tokens TokenIssuer) *Login {
	return &Login{users: users, tokens: tokens, now: time.Now}
}

func (l *Login) Login(ctx context.Context, input Input) (Output, error) {
	email, err := parseEmail(input.Email)
	if err != nil {
		return Output{}, err
	}
	u, err := l.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) && strings.TrimSpace(input.Name) != "" {
		u, err = l.register(ctx, email, strings.TrimSpace(input.Name))
	}
	if err != nil {
		return Output{}, err
	}
	token, err := l.tokens.Issue(u)
	if err != nil {
		return Output{}, err
	}
	return Output{Token: token, User: u}, nil
}

func (l *Login) register(ctx context.Context, email, name string) (*user.User, error) {
	u := &user.User{
		Id:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      user.Renter,
		CreatedAt: l.now(),
	}
	if err := l.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func parseEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return strings.ToLower(addr.Address), nil
}

type Input struct {
	Email string
	Name  string
}

type Output struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}
