package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/transport"
)

func (svc *AuthService) GetProfile(ctx context.Context, actor Actor) (*models.Profile, error) {
	profile, err := svc.Repo.GetProfile(ctx, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: profile", ErrNotFound)
	}
	return profile, err
}

func (svc *AuthService) UpdateProfile(ctx context.Context, actor Actor, req transport.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := svc.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.Newsletter != nil {
		profile.Newsletter = *req.Newsletter
	}

	if err := svc.Repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
