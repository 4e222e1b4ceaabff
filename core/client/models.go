package client

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// Client is an agency customer.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  *bool     `json:"is_active"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Domain is a website domain managed for a client.
type Domain struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Host      string    `json:"host"`
	Registrar string    `json:"registrar,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewClient contains information needed to create a new Client.
type NewClient struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

func (nc *NewClient) Validate(validate *validator.Validate, svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Company = core.CleanString(nc.Company)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Phone = core.CleanString(nc.Phone)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(nc.Email)
}

// UpdateClient defines what information may be provided to modify an existing Client.
type UpdateClient struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
	Notes    string `json:"notes"`
}

func (uc *UpdateClient) Validate(origCl Client, validate *validator.Validate, svc *Service) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Company = core.CleanString(uc.Company)
	uc.Phone = core.CleanString(uc.Phone)

	email := core.CleanString(uc.Email, true /* lower */)
	if email != "" {
		uc.Email = email
	} else {
		uc.Email = origCl.Email
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckUniqueness(uc.Email, origCl)
}

// NewDomain contains information needed to attach a domain to a client.
type NewDomain struct {
	ClientID  string    `json:"client_id" validate:"required"`
	Host      string    `json:"host" validate:"required,fqdn"`
	Registrar string    `json:"registrar"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (nd *NewDomain) Validate(validate *validator.Validate) error {
	nd.ClientID = core.CleanString(nd.ClientID)
	nd.Host = core.CleanString(nd.Host, true /* lower */)
	nd.Registrar = core.CleanString(nd.Registrar)
	return validate.Struct(nd)
}

// QueryFilter filters clients.
// Search does a case-insensitive match on one of Name, Company or Email.
type QueryFilter struct {
	Search      string    `query:"search"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
