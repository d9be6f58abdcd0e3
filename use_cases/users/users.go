package users

import (
	"context"
	"fmt"

	"github.com/giovaniif/motorent/domain/user"
)

type Users struct {
	repo user.Repository
}

func NewUsers(repo user.Repository) *Users {
	return &Users{repo: repo}
}

func (u *Users) List(ctx context.Context) ([]user.User, error) {
	return u.repo.List(ctx)
}

// ChangeRole sets the role of a user. An admin cannot demote themselves.
func (u *Users) ChangeRole(ctx context.Context, input Input) (*user.User, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", user.ErrInvalidRole, input.Role)
	}
	target, err := u.repo.Get(ctx, input.UserId)
	if err != nil {
		return nil, err
	}
	if input.ActorId == target.Id && target.Role == user.Admin && input.Role != user.Admin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", user.ErrInvalidRole)
	}
	target.Role = input.Role
	if err := u.repo.Save(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

type Input struct {
	ActorId string
	UserId  string
	Role    user.Role
}
