package org

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("organization not found")
)

type (
	Repository interface {
		// GetOrg returns the single agency row; ErrNotFound before seeding.
		GetOrg(ctx context.Context) (Org, error)
		UpdateOrg(ctx context.Context, o Org) (Org, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context) (Org, error) {
	return svc.repo.GetOrg(ctx)
}

func (svc *Service) Update(ctx context.Context, uo UpdateOrg) (Org, error) {
	o, err := svc.repo.GetOrg(ctx)
	if err != nil {
		return Org{}, err
	}
	if uo.Name != "" {
		o.Name = uo.Name
	}
	if uo.SupportEmail != "" {
		o.SupportEmail = uo.SupportEmail
	}
	if uo.DisplayName != "" {
		o.Theme.DisplayName = uo.DisplayName
	}
	if uo.LogoURL != "" {
		o.Theme.LogoURL = uo.LogoURL
	}
	if uo.PrimaryColor != "" {
		o.Theme.PrimaryColor = uo.PrimaryColor
	}
	if uo.SecondaryColor != "" {
		o.Theme.SecondaryColor = uo.SecondaryColor
	}
	if uo.AccentColor != "" {
		o.Theme.AccentColor = uo.AccentColor
	}
	o.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateOrg(ctx, o)
}
