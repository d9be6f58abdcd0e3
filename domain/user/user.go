package user

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	Renter Role = "renter"
	Admin  Role = "admin"
	Staff  Role = "staff"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

func (r Role) Valid() bool {
	return r == Renter || r == Admin || r == Staff
}

// BackOffice lists the roles allowed on the staff screens.
func BackOffice() []Role {
	return []Role{Staff, Admin}
}

type User struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`

	// Renters fill these in from their profile before picking up a bike.
	DateOfBirth          string `json:"dateOfBirth,omitempty"`
	Address              string `json:"address,omitempty"`
	CredentialIdNumber   string `json:"credentialIdNumber,omitempty"`
	CredentialIdImageUrl string `json:"credentialIdImageUrl,omitempty"`
}

type Repository interface {
	Get(ctx context.Context, userId string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Save(ctx context.Context, u *User) error
}
