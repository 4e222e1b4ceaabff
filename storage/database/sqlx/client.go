package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/client"
)

type clientRepository struct {
	db *sqlx.DB
}

var _ client.Repository = (*clientRepository)(nil) // interface compliance check

func NewClientRepository(db *sqlx.DB) *clientRepository {
	return &clientRepository{db: db}
}

type clientRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Company   null.String `db:"company"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	IsActive  null.Bool   `db:"is_active"`
	Notes     null.String `db:"notes"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r clientRow) toClient() client.Client {
	return client.Client{
		ID:        r.ID,
		Name:      r.Name,
		Company:   r.Company.String,
		Email:     r.Email,
		Phone:     r.Phone.String,
		IsActive:  r.IsActive.Ptr(),
		Notes:     r.Notes.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toClientRow(cl client.Client) clientRow {
	return clientRow{
		ID:        cl.ID,
		Name:      cl.Name,
		Company:   null.NewString(cl.Company, cl.Company != ""),
		Email:     cl.Email,
		Phone:     null.NewString(cl.Phone, cl.Phone != ""),
		IsActive:  null.BoolFromPtr(cl.IsActive),
		Notes:     null.NewString(cl.Notes, cl.Notes != ""),
		CreatedAt: cl.CreatedAt,
		UpdatedAt: cl.UpdatedAt,
	}
}

type domainRow struct {
	ID        string      `db:"id"`
	ClientID  string      `db:"client_id"`
	Host      string      `db:"host"`
	Registrar null.String `db:"registrar"`
	ExpiresAt null.Time   `db:"expires_at"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r domainRow) toDomain() client.Domain {
	return client.Domain{
		ID:        r.ID,
		ClientID:  r.ClientID,
		Host:      r.Host,
		Registrar: r.Registrar.String,
		ExpiresAt: r.ExpiresAt.Time,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo clientRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedClients ...client.Client) error {
	query := `SELECT EXISTS (SELECT 1 FROM client WHERE lower(email) = lower($1)`
	if len(excludedClients) > 0 {
		ids := make([]string, 0, len(excludedClients))
		for _, cl := range excludedClients {
			ids = append(ids, fmt.Sprintf("'%s'", cl.ID))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}
	query += ")"

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, query, email); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return client.ErrEmailExists
	}
	return nil
}

func (repo clientRepository) CreateClient(ctx context.Context, cl client.Client) (client.Client, error) {
	cl.ID = uuid.New().String()
	row := toClientRow(cl)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO client (id, name, company, email, phone, is_active, notes, created_at, updated_at)
		VALUES (:id, :name, :company, :email, :phone, :is_active, :notes, :created_at, :updated_at)`, row)
	if err != nil {
		return client.Client{}, errors.Wrap(err, "inserting client")
	}
	return cl, nil
}

func (repo clientRepository) GetClient(ctx context.Context, id string) (client.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return client.Client{}, client.ErrNotFound
	}
	var row clientRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM client WHERE id = $1`, id); err != nil {
		return client.Client{}, trapNoRowsErr(err, client.ErrNotFound, "finding client by ID")
	}
	return row.toClient(), nil
}

func (repo clientRepository) QueryClients(ctx context.Context, filter *client.QueryFilter, ordering []core.DBOrdering) ([]client.Client, error) {
	query := `SELECT * FROM client`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter != nil && !filter.IsEmpty() {
		filter.Clean()
		if filter.Search != "" {
			ph := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR company ILIKE %[1]s OR email ILIKE %[1]s)", ph))
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = "+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= "+arg(filter.CreatedFrom))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= "+arg(filter.CreatedTo))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "created_at DESC")

	var rows []clientRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying clients")
	}
	clients := make([]client.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toClient())
	}
	return clients, nil
}

func (repo clientRepository) UpdateClient(ctx context.Context, cl client.Client) (client.Client, error) {
	row := toClientRow(cl)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE client
		SET name = :name, company = :company, email = :email, phone = :phone,
		    is_active = :is_active, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return client.Client{}, errors.Wrap(err, "updating client")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return client.Client{}, client.ErrNotFound
	}
	return cl, nil
}

func (repo clientRepository) CreateDomain(ctx context.Context, dom client.Domain) (client.Domain, error) {
	dom.ID = uuid.New().String()
	row := domainRow{
		ID:        dom.ID,
		ClientID:  dom.ClientID,
		Host:      dom.Host,
		Registrar: null.NewString(dom.Registrar, dom.Registrar != ""),
		ExpiresAt: null.NewTime(dom.ExpiresAt, !dom.ExpiresAt.IsZero()),
		CreatedAt: dom.CreatedAt,
		UpdatedAt: dom.UpdatedAt,
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO client_domain (id, client_id, host, registrar, expires_at, created_at, updated_at)
		VALUES (:id, :client_id, :host, :registrar, :expires_at, :created_at, :updated_at)`, row)
	if err != nil {
		return client.Domain{}, errors.Wrap(err, "inserting domain")
	}
	return dom, nil
}

func (repo clientRepository) GetDomain(ctx context.Context, id string) (client.Domain, error) {
	if _, err := uuid.Parse(id); err != nil {
		return client.Domain{}, client.ErrDomainNotFound
	}
	var row domainRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM client_domain WHERE id = $1`, id); err != nil {
		return client.Domain{}, trapNoRowsErr(err, client.ErrDomainNotFound, "finding domain by ID")
	}
	return row.toDomain(), nil
}

func (repo clientRepository) QueryDomains(ctx context.Context, clientID string) ([]client.Domain, error) {
	var rows []domainRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM client_domain WHERE client_id = $1 ORDER BY host`, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "querying domains")
	}
	domains := make([]client.Domain, 0, len(rows))
	for _, row := range rows {
		domains = append(domains, row.toDomain())
	}
	return domains, nil
}

func (repo clientRepository) DeleteDomain(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM client_domain WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting domain")
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return client.ErrDomainNotFound
	}
	return nil
}
