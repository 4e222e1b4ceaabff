package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core/org"
)

type orgRepository struct {
	db *DB
}

var _ org.Repository = (*orgRepository)(nil)

func NewOrgRepository(db *DB) *orgRepository {
	return &orgRepository{db: db}
}

func (repo *orgRepository) GetOrg(_ context.Context) (org.Org, error) {
	repo.db.org.mutex.RLock()
	defer repo.db.org.mutex.RUnlock()

	for _, o := range repo.db.org.rows {
		return *o, nil
	}
	return org.Org{}, org.ErrNotFound
}

func (repo *orgRepository) UpdateOrg(_ context.Context, o org.Org) (org.Org, error) {
	repo.db.org.mutex.Lock()
	defer repo.db.org.mutex.Unlock()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	repo.db.org.rows[o.ID] = &o
	return o, nil
}
