package client

import (
	"context"
	"errors"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core"
)

var (
	// errors
	ErrNotFound       = errors.New("client not found")
	ErrDomainNotFound = errors.New("domain not found")
	ErrEmailExists    = errors.New("a client with this email already exists")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists when another client
		// already uses the email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedClients ...Client) error
		CreateClient(ctx context.Context, cl Client) (Client, error)
		GetClient(ctx context.Context, id string) (Client, error)
		// QueryClients applies AND operation on available QueryFilter fields.
		QueryClients(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Client, error)
		UpdateClient(ctx context.Context, cl Client) (Client, error)

		CreateDomain(ctx context.Context, dom Domain) (Domain, error)
		GetDomain(ctx context.Context, id string) (Domain, error)
		QueryDomains(ctx context.Context, clientID string) ([]Domain, error)
		DeleteDomain(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(email string, exclClients ...Client) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclClients...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClient) (Client, error) {
	now := time.Now().UTC()
	active := true
	cl := Client{
		Name:      nc.Name,
		Company:   nc.Company,
		Email:     nc.Email,
		Phone:     nc.Phone,
		IsActive:  &active,
		Notes:     nc.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClient(ctx, cl)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Client, error) {
	return svc.repo.GetClient(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Client, error) {
	return svc.repo.QueryClients(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClient) (Client, error) {
	cl, err := svc.repo.GetClient(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if uc.Name != "" {
		cl.Name = uc.Name
	}
	if uc.Company != "" {
		cl.Company = uc.Company
	}
	if uc.Email != "" {
		cl.Email = uc.Email
	}
	if uc.Phone != "" {
		cl.Phone = uc.Phone
	}
	if uc.IsActive != nil {
		cl.IsActive = uc.IsActive
	}
	if uc.Notes != "" {
		cl.Notes = uc.Notes
	}
	cl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClient(ctx, cl)
}

// Deactivate retires a client; rows are kept for history.
func (svc *Service) Deactivate(ctx context.Context, id string) (Client, error) {
	inactive := false
	return svc.Update(ctx, id, UpdateClient{IsActive: &inactive})
}

func (svc *Service) AddDomain(ctx context.Context, nd NewDomain) (Domain, error) {
	if _, err := svc.repo.GetClient(ctx, nd.ClientID); err != nil {
		return Domain{}, err
	}
	now := time.Now().UTC()
	dom := Domain{
		ClientID:  nd.ClientID,
		Host:      nd.Host,
		Registrar: nd.Registrar,
		ExpiresAt: nd.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDomain(ctx, dom)
}

func (svc *Service) GetDomain(ctx context.Context, id string) (Domain, error) {
	return svc.repo.GetDomain(ctx, id)
}

func (svc *Service) Domains(ctx context.Context, clientID string) ([]Domain, error) {
	return svc.repo.QueryDomains(ctx, clientID)
}

func (svc *Service) RemoveDomain(ctx context.Context, id string) error {
	return svc.repo.DeleteDomain(ctx, id)
}
