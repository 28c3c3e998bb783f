package avatar

import (
	"context"
	"errors"

	"github.com/studify/backend/core"
)

var (
	// ErrNotFound is returned by a Repository when no profile exists for a
	// user; the service reacts by returning the default profile.
	ErrNotFound = errors.New("avatar profile not found")

	errNotOwned = "accessory is not owned"
)

type (
	Repository interface {
		GetProfile(ctx context.Context, userID string) (Profile, error)
		SaveProfile(ctx context.Context, userID string, profile Profile) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's profile, falling back to the default one (starter
// accessories, grey base) when none has been saved yet.
func (svc *Service) Get(ctx context.Context, userID string) (Profile, error) {
	profile, err := svc.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultProfile(), nil
		}
		return Profile{}, err
	}
	return profile, nil
}

// Save persists the profile. Equipping an accessory that is not owned is a
// validation error.
func (svc *Service) Save(ctx context.Context, userID string, profile Profile) error {
	for _, acc := range profile.Accessories {
		if !profile.Owns(acc) {
			return core.NewValidationError(nil, core.FieldError{Field: "accessories", Error: errNotOwned})
		}
	}
	return svc.repo.SaveProfile(ctx, userID, profile)
}

// Grant adds an accessory to the user's owned set; used by the shop after a
// purchase. Granting an already-owned accessory is a no-op.
func (svc *Service) Grant(ctx context.Context, userID, accessory string) (Profile, error) {
	profile, err := svc.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if profile.Owns(accessory) {
		return profile, nil
	}
	profile.Owned = append(profile.Owned, accessory)
	if err = svc.repo.SaveProfile(ctx, userID, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Revoke removes an accessory from the owned set (and unequips it); used by
// the shop after a sale.
func (svc *Service) Revoke(ctx context.Context, userID, accessory string) (Profile, error) {
	profile, err := svc.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	profile.Owned = remove(profile.Owned, accessory)
	profile.Accessories = remove(profile.Accessories, accessory)
	if err = svc.repo.SaveProfile(ctx, userID, profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
