// Package profile lets a signed-in user keep their personal details and
// rental credential up to date.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/giovaniif/motorent/domain/user"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidProfile = errors.New("invalid profile")

var validate = validator.New()

type Profile struct {
	users user.Repository
	now   func() time.Time
}

func NewProfile(users user.Repository) *Profile {
	return &Profile{users: users, now: time.Now}
}

func (p *Profile) Get(ctx context.Context, userId string) (*user.User, error) {
	return p.users.Get(ctx, userId)
}

// Update overwrites the editable fields. Email and role never change here.
func (p *Profile) Update(ctx context.Context, userId string, input Input) (*user.User, error) {
	input.trim()
	if err := validate.Struct(input); err != nil {
		return nil, errors.Join(ErrInvalidProfile, err)
	}
	if input.DateOfBirth != "" {
		born, _ := time.Parse(time.DateOnly, input.DateOfBirth)
		if born.After(p.now()) {
			return nil, fmt.Errorf("%w: date of birth %s is in the future", ErrInvalidProfile, input.DateOfBirth)
		}
	}

	u, err := p.users.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	u.Name = input.Name
	u.DateOfBirth = input.DateOfBirth
	u.Address = input.Address
	u.CredentialIdNumber = input.CredentialIdNumber
	u.CredentialIdImageUrl = input.CredentialIdImageUrl
	if err := p.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type Input struct {
	Name                 string `json:"name" validate:"required,min=2"`
	DateOfBirth          string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address              string `json:"address" validate:"max=500"`
	CredentialIdNumber   string `json:"credentialIdNumber" validate:"omitempty,alphanum,min=4,max=32"`
	CredentialIdImageUrl string `json:"credentialIdImageUrl" validate:"omitempty,url"`
}

func (i *Input) trim() {
	i.Name = strings.TrimSpace(i.Name)
	i.DateOfBirth = strings.TrimSpace(i.DateOfBirth)
	i.Address = strings.TrimSpace(i.Address)
	i.CredentialIdNumber = strings.TrimSpace(i.CredentialIdNumber)
	i.CredentialIdImageUrl = strings.TrimSpace(i.CredentialIdImageUrl)
}
