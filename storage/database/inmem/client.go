package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/client"
)

type clientRepository struct {
	db *DB
}

var _ client.Repository = (*clientRepository)(nil)

func NewClientRepository(db *DB) *clientRepository {
	return &clientRepository{db: db}
}

func (repo *clientRepository) CheckEmailUniqueness(_ context.Context, email string, excludedClients ...client.Client) error {
	repo.db.client.mutex.RLock()
	defer repo.db.client.mutex.RUnlock()

	for _, cl := range repo.db.client.all() {
		if !strings.EqualFold(cl.Email, email) {
			continue
		}
		excluded := false
		for _, excl := range excludedClients {
			if excl.ID == cl.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return client.ErrEmailExists
		}
	}
	return nil
}

func (repo *clientRepository) CreateClient(_ context.Context, cl client.Client) (client.Client, error) {
	repo.db.client.mutex.Lock()
	defer repo.db.client.mutex.Unlock()

	cl.ID = uuid.New().String()
	repo.db.client.rows[cl.ID] = &cl
	return cl, nil
}

func (repo *clientRepository) GetClient(_ context.Context, id string) (client.Client, error) {
	repo.db.client.mutex.RLock()
	defer repo.db.client.mutex.RUnlock()

	if cl, ok := repo.db.client.rows[id]; ok {
		return *cl, nil
	}
	return client.Client{}, client.ErrNotFound
}

func (repo *clientRepository) QueryClients(_ context.Context, filter *client.QueryFilter, _ []core.DBOrdering) ([]client.Client, error) {
	repo.db.client.mutex.RLock()
	defer repo.db.client.mutex.RUnlock()

	var clients []client.Client
	for _, cl := range repo.db.client.all() {
		if filter != nil && !filter.IsEmpty() {
			filter.Clean()
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(cl.Name), search) &&
					!strings.Contains(strings.ToLower(cl.Company), search) &&
					!strings.Contains(strings.ToLower(cl.Email), search) {
					continue
				}
			}
			if filter.IsActive != nil && (cl.IsActive == nil || *cl.IsActive != *filter.IsActive) {
				continue
			}
			if !filter.CreatedFrom.IsZero() && cl.CreatedAt.Before(filter.CreatedFrom) {
				continue
			}
			if !filter.CreatedTo.IsZero() && cl.CreatedAt.After(filter.CreatedTo) {
				continue
			}
		}
		clients = append(clients, cl)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].CreatedAt.After(clients[j].CreatedAt) })
	return clients, nil
}

func (repo *clientRepository) UpdateClient(_ context.Context, cl client.Client) (client.Client, error) {
	repo.db.client.mutex.Lock()
	defer repo.db.client.mutex.Unlock()

	if _, ok := repo.db.client.rows[cl.ID]; !ok {
		return client.Client{}, client.ErrNotFound
	}
	repo.db.client.rows[cl.ID] = &cl
	return cl, nil
}

func (repo *clientRepository) CreateDomain(_ context.Context, dom client.Domain) (client.Domain, error) {
	repo.db.domain.mutex.Lock()
	defer repo.db.domain.mutex.Unlock()

	dom.ID = uuid.New().String()
	repo.db.domain.rows[dom.ID] = &dom
	return dom, nil
}

func (repo *clientRepository) GetDomain(_ context.Context, id string) (client.Domain, error) {
	repo.db.domain.mutex.RLock()
	defer repo.db.domain.mutex.RUnlock()

	if dom, ok := repo.db.domain.rows[id]; ok {
		return *dom, nil
	}
	return client.Domain{}, client.ErrDomainNotFound
}

func (repo *clientRepository) QueryDomains(_ context.Context, clientID string) ([]client.Domain, error) {
	repo.db.domain.mutex.RLock()
	defer repo.db.domain.mutex.RUnlock()

	var domains []client.Domain
	for _, dom := range repo.db.domain.all() {
		if dom.ClientID == clientID {
			domains = append(domains, dom)
		}
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i].Host < domains[j].Host })
	return domains, nil
}

func (repo *clientRepository) DeleteDomain(_ context.Context, id string) error {
	repo.db.domain.mutex.Lock()
	defer repo.db.domain.mutex.Unlock()

	if _, ok := repo.db.domain.rows[id]; !ok {
		return client.ErrDomainNotFound
	}
	delete(repo.db.domain.rows, id)
	return nil
}
