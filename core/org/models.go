package org

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/website360/clientpulse-suite-sub003/core"
)

// Theme is the white-label branding applied across the frontend.
type Theme struct {
	DisplayName    string `json:"display_name"`
	LogoURL        string `json:"logo_url,omitempty"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
}

// Org is the single agency record (one row per deployment).
type Org struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SupportEmail string    `json:"support_email,omitempty"`
	Theme        Theme     `json:"theme"`
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// UpdateOrg defines what may be modified on the agency record.
type UpdateOrg struct {
	Name           string `json:"name"`
	SupportEmail   string `json:"support_email" validate:"omitempty,email"`
	DisplayName    string `json:"display_name"`
	LogoURL        string `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor"`
	AccentColor    string `json:"accent_color" validate:"omitempty,hexcolor"`
}

func (uo *UpdateOrg) Validate(validate *validator.Validate) error {
	uo.Name = core.CleanString(uo.Name)
	uo.SupportEmail = core.CleanString(uo.SupportEmail, true /* lower */)
	uo.DisplayName = core.CleanString(uo.DisplayName)
	uo.LogoURL = core.CleanString(uo.LogoURL)
	return validate.Struct(uo)
}
