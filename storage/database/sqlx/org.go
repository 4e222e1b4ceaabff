package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/website360/clientpulse-suite-sub003/core/org"
)

type orgRepository struct {
	db *sqlx.DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) *orgRepository {
	return &orgRepository{db: db}
}

type orgRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	SupportEmail   null.String `db:"support_email"`
	DisplayName    null.String `db:"display_name"`
	LogoURL        null.String `db:"logo_url"`
	PrimaryColor   null.String `db:"primary_color"`
	SecondaryColor null.String `db:"secondary_color"`
	AccentColor    null.String `db:"accent_color"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r orgRow) toOrg() org.Org {
	return org.Org{
		ID:           r.ID,
		Name:         r.Name,
		SupportEmail: r.SupportEmail.String,
		Theme: org.Theme{
			DisplayName:    r.DisplayName.String,
			LogoURL:        r.LogoURL.String,
			PrimaryColor:   r.PrimaryColor.String,
			SecondaryColor: r.SecondaryColor.String,
			AccentColor:    r.AccentColor.String,
		},
		UpdatedAt: r.UpdatedAt,
	}
}

func toOrgRow(o org.Org) orgRow {
	return orgRow{
		ID:             o.ID,
		Name:           o.Name,
		SupportEmail:   null.NewString(o.SupportEmail, o.SupportEmail != ""),
		DisplayName:    null.NewString(o.Theme.DisplayName, o.Theme.DisplayName != ""),
		LogoURL:        null.NewString(o.Theme.LogoURL, o.Theme.LogoURL != ""),
		PrimaryColor:   null.NewString(o.Theme.PrimaryColor, o.Theme.PrimaryColor != ""),
		SecondaryColor: null.NewString(o.Theme.SecondaryColor, o.Theme.SecondaryColor != ""),
		AccentColor:    null.NewString(o.Theme.AccentColor, o.Theme.AccentColor != ""),
		UpdatedAt:      o.UpdatedAt,
	}
}

func (repo orgRepository) GetOrg(ctx context.Context) (org.Org, error) {
	var row orgRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM org LIMIT 1`); err != nil {
		return org.Org{}, trapNoRowsErr(err, org.ErrNotFound, "finding organization")
	}
	return row.toOrg(), nil
}

func (repo orgRepository) UpdateOrg(ctx context.Context, o org.Org) (org.Org, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
		row := toOrgRow(o)
		_, err := repo.db.NamedExecContext(ctx, `
			INSERT INTO org (id, name, support_email, display_name, logo_url, primary_color, secondary_color, accent_color, updated_at)
			VALUES (:id, :name, :support_email, :display_name, :logo_url, :primary_color, :secondary_color, :accent_color, :updated_at)`, row)
		if err != nil {
			return org.Org{}, errors.Wrap(err, "inserting organization")
		}
		return o, nil
	}

	row := toOrgRow(o)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE org
		SET name = :name, support_email = :support_email, display_name = :display_name, logo_url = :logo_url,
		    primary_color = :primary_color, secondary_color = :secondary_color, accent_color = :accent_color,
		    updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return org.Org{}, errors.Wrap(err, "updating organization")
	}
	return o, nil
}
