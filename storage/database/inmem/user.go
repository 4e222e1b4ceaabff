package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	excluded := func(usr user.User) bool {
		for _, excl := range excludedUsers {
			if excl.ID == usr.ID {
				return true
			}
		}
		return false
	}
	for _, usr := range repo.db.user.all() {
		if excluded(usr) {
			continue
		}
		if username != "" && strings.EqualFold(usr.Username, username) {
			return user.ErrUsernameExists
		}
		if email != "" && strings.EqualFold(usr.Email, email) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	usr.ID = uuid.New().String()
	repo.db.user.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	for _, usr := range repo.db.user.all() {
		switch {
		case filter.ID != "":
			if usr.ID == filter.ID {
				return usr, nil
			}
		case filter.Username != "":
			if strings.EqualFold(usr.Username, filter.Username) {
				return usr, nil
			}
		case filter.Email != "":
			if strings.EqualFold(usr.Email, filter.Email) {
				return usr, nil
			}
		case filter.UsernameOrEmail != "":
			if strings.EqualFold(usr.Username, filter.UsernameOrEmail) ||
				strings.EqualFold(usr.Email, filter.UsernameOrEmail) {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, _ []core.DBOrdering) ([]user.User, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	var users []user.User
	for _, usr := range repo.db.user.all() {
		if filter != nil && !filter.IsEmpty() {
			filter.Clean()
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(usr.Name), search) &&
					!strings.Contains(strings.ToLower(usr.Username), search) &&
					!strings.Contains(strings.ToLower(usr.Email), search) {
					continue
				}
			}
			if len(filter.Roles) > 0 {
				var match bool
				for _, role := range filter.Roles {
					for _, ur := range usr.Roles {
						if ur == role {
							match = true
							break
						}
					}
				}
				if !match {
					continue
				}
			}
			if filter.ClientID != "" && usr.ClientID != filter.ClientID {
				continue
			}
			if filter.IsActive != nil && (usr.IsActive == nil || *usr.IsActive != *filter.IsActive) {
				continue
			}
			if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
				continue
			}
			if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
				continue
			}
		}
		users = append(users, usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	if _, ok := repo.db.user.rows[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.user.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids []string) (int, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.user.rows[id]; ok {
			delete(repo.db.user.rows, id)
			cnt++
		}
	}
	return cnt, nil
}
