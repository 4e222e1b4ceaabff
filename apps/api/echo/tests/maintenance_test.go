package tests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/user"
	testutil "github.com/website360/clientpulse-suite-sub003/tests"
)

func Test_maintenanceApi_plans(t *testing.T) {
	app, deps := setup(t)

	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	staffToken := getToken(t, staff)
	adminToken := getToken(t, admin)

	cl := testutil.CreateClient(t, deps.clientRepo, "Acme", "acme@test.cd")
	dom := testutil.CreateDomain(t, deps.clientRepo, cl.ID, "acme.test")

	t.Run("auth required", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodGet, path: "/v1/maintenance/plans",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		}
		req, rec := newRequest(tt.method, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	var planID string
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, maintenance.NewPlan{ClientID: cl.ID, DomainID: dom.ID, MonthlyDay: 10})
		req, rec := newAuthRequest(http.MethodPost, "/v1/maintenance/plans", staffToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		var plan maintenance.Plan
		if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
			t.Fatalf("unmarshalling plan: %v", err)
		}
		if plan.MonthlyDay != 10 || plan.ClientID != cl.ID {
			t.Errorf("unexpected plan: %+v", plan)
		}
		planID = plan.ID
	})

	t.Run("duplicate rejected with field error", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, maintenance.NewPlan{ClientID: cl.ID, DomainID: dom.ID, MonthlyDay: 5}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"domain_id": maintenance.ErrPlanExists.Error()}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/maintenance/plans", staffToken, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("invalid monthly day", func(t *testing.T) {
		tt := httpTest{
			body:     marchallObj(t, maintenance.NewPlan{ClientID: cl.ID, MonthlyDay: 32}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"monthly_day": "must be a day of the month (1 to 31)"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/maintenance/plans", staffToken, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve unknown is 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/maintenance/plans/4a31a0c0-0000-0000-0000-000000000000", staffToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want 404", rec.Code)
		}
	})

	t.Run("deactivate keeps history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/maintenance/plans/"+planID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var plan maintenance.Plan
		if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
			t.Fatalf("unmarshalling plan: %v", err)
		}
		if plan.Active() {
			t.Error("expected plan to be deactivated")
		}
	})
}

func Test_maintenanceApi_schedule(t *testing.T) {
	app, deps := setup(t)

	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	orig := maintenance.NowFunc
	maintenance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { maintenance.NowFunc = orig })

	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	cl1 := testutil.CreateClient(t, deps.clientRepo, "Acme", "acme@test.cd")
	cl2 := testutil.CreateClient(t, deps.clientRepo, "Globex", "globex@test.cd")
	portal := testutil.CreateUser(t, deps.usrRepo, "Portal", "portal", "portal@test.cd", "", []string{user.RoleClient}, true)
	portal.ClientID = cl1.ID

	donePlan := testutil.CreatePlan(t, deps.maintRepo, cl1.ID, "", 10)
	testutil.CreatePlan(t, deps.maintRepo, cl2.ID, "", 10) // overdue

	if _, err := deps.maintRepo.CreateExecution(context.Background(), maintenance.Execution{
		PlanID:            donePlan.ID,
		ExecutedAt:        time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
		NextScheduledDate: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:         now,
	}); err != nil {
		t.Fatalf("CreateExecution() failed: %v", err)
	}

	readSchedules := func(t *testing.T, token, path string) []maintenance.PlanSchedule {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var schedules []maintenance.PlanSchedule
		if err := json.Unmarshal(rec.Body.Bytes(), &schedules); err != nil {
			t.Fatalf("unmarshalling schedules: %v", err)
		}
		return schedules
	}

	t.Run("staff sees all plans with derived status", func(t *testing.T) {
		schedules := readSchedules(t, getToken(t, staff), "/v1/maintenance/schedule")
		if len(schedules) != 2 {
			t.Fatalf("got %d schedules, want 2", len(schedules))
		}
		byPlan := make(map[string]maintenance.PlanSchedule)
		for _, s := range schedules {
			byPlan[s.Plan.ID] = s
		}
		if s := byPlan[donePlan.ID]; s.Schedule.Status != maintenance.StatusDone {
			t.Errorf("status = %s, want %s", s.Schedule.Status, maintenance.StatusDone)
		} else if s.Schedule.CanExecute {
			t.Error("executed plan must not offer execution")
		}
	})

	t.Run("portal account is scoped to its client", func(t *testing.T) {
		schedules := readSchedules(t, getToken(t, portal), "/v1/maintenance/schedule")
		if len(schedules) != 1 {
			t.Fatalf("got %d schedules, want 1", len(schedules))
		}
		if schedules[0].Plan.ClientID != cl1.ID {
			t.Errorf("leaked plan for client %s", schedules[0].Plan.ClientID)
		}
	})

	t.Run("portal account cannot request another client", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/maintenance/schedule?client_id="+cl2.ID, getToken(t, portal))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})
}

func Test_maintenanceApi_executions(t *testing.T) {
	app, deps := setup(t)

	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	staffToken := getToken(t, staff)

	cl := testutil.CreateClient(t, deps.clientRepo, "Acme", "acme@test.cd")
	plan := testutil.CreatePlan(t, deps.maintRepo, cl.ID, "", 10)

	record := func(t *testing.T, body []byte) (int, map[string]json.RawMessage) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/maintenance/executions", staffToken, body)
		app.ServeHTTP(rec, req)
		var resp map[string]json.RawMessage
		if rec.Body.Len() > 0 {
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v; body: %s", err, rec.Body.String())
			}
		}
		return rec.Code, resp
	}

	t.Run("record", func(t *testing.T) {
		code, resp := record(t, marchallObj(t, maintenance.NewExecution{PlanID: plan.ID}))
		if code != http.StatusCreated {
			t.Fatalf("code = %d, want 201", code)
		}
		if _, ok := resp["warning"]; ok {
			t.Error("unexpected warning in response")
		}
		var exec maintenance.Execution
		if err := json.Unmarshal(resp["execution"], &exec); err != nil {
			t.Fatalf("unmarshalling execution: %v", err)
		}
		if exec.ExecutedBy != staff.ID {
			t.Errorf("ExecutedBy = %s, want the caller %s", exec.ExecutedBy, staff.ID)
		}
	})

	t.Run("notification failure surfaces as warning", func(t *testing.T) {
		deps.notifier.Err = errors.New("webhook down")
		t.Cleanup(func() { deps.notifier.Err = nil })

		code, resp := record(t, marchallObj(t, maintenance.NewExecution{PlanID: plan.ID, SendNotification: true}))
		if code != http.StatusCreated {
			t.Fatalf("code = %d, want 201 despite notification failure", code)
		}
		if _, ok := resp["warning"]; !ok {
			t.Error("expected a warning in response")
		}
	})

	t.Run("invalid item status", func(t *testing.T) {
		code, _ := record(t, marchallObj(t, maintenance.NewExecution{
			PlanID:       plan.ID,
			ItemStatuses: map[string]maintenance.ItemStatus{"item1": "lol"},
		}))
		if code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400", code)
		}
	})

	t.Run("delete needs admin", func(t *testing.T) {
		execs, err := deps.maintRepo.QueryExecutions(context.Background(), plan.ID)
		if err != nil || len(execs) == 0 {
			t.Fatalf("QueryExecutions() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodDelete, "/v1/maintenance/executions/"+execs[0].ID, staffToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403 for staff", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/maintenance/executions/"+execs[0].ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %d, want 204 for admin", rec.Code)
		}
	})
}

func Test_maintenanceApi_checklistAndSettings(t *testing.T) {
	app, deps := setup(t)

	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	staffToken := getToken(t, staff)
	adminToken := getToken(t, admin)

	t.Run("create item needs admin", func(t *testing.T) {
		body := marchallObj(t, maintenance.NewChecklistItem{Label: "Backup", Position: 1})

		req, rec := newAuthRequest(http.MethodPost, "/v1/maintenance/checklist", staffToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403 for staff", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/maintenance/checklist", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("code = %d, want 201 for admin; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("staff can list items", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/maintenance/checklist", staffToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
		var items []maintenance.ChecklistItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("unmarshalling items: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("got %d items, want 1", len(items))
		}
	})

	t.Run("settings update needs admin", func(t *testing.T) {
		body := marchallObj(t, maintenance.UpdateSettings{DefaultMonthlyDay: 15, MessageTemplate: "done for {client_id}"})

		req, rec := newAuthRequest(http.MethodPut, "/v1/maintenance/settings", staffToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403 for staff", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/maintenance/settings", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200 for admin; body: %s", rec.Code, rec.Body.String())
		}
		var settings maintenance.Settings
		if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
			t.Fatalf("unmarshalling settings: %v", err)
		}
		if settings.DefaultMonthlyDay != 15 {
			t.Errorf("DefaultMonthlyDay = %d, want 15", settings.DefaultMonthlyDay)
		}
	})
}
