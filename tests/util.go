package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core/client"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClient(t *testing.T, repo client.Repository, name, email string) client.Client {
	t.Helper()

	now := time.Now().UTC()
	active := true
	cl, err := repo.CreateClient(context.Background(), client.Client{
		Name:      name,
		Email:     email,
		IsActive:  &active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	return cl
}

func CreateDomain(t *testing.T, repo client.Repository, clientID, host string) client.Domain {
	t.Helper()

	now := time.Now().UTC()
	dom, err := repo.CreateDomain(context.Background(), client.Domain{
		ClientID:  clientID,
		Host:      host,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateDomain() failed: %v", err)
	}
	return dom
}

func CreatePlan(t *testing.T, repo maintenance.Repository, clientID, domainID string, monthlyDay int) maintenance.Plan {
	t.Helper()

	now := time.Now().UTC()
	active := true
	plan, err := repo.CreatePlan(context.Background(), maintenance.Plan{
		ClientID:   clientID,
		DomainID:   domainID,
		MonthlyDay: monthlyDay,
		IsActive:   &active,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreatePlan() failed: %v", err)
	}
	return plan
}
