package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	echoapi "github.com/website360/clientpulse-suite-sub003/apps/api/echo"
	"github.com/website360/clientpulse-suite-sub003/core/user"
	testutil "github.com/website360/clientpulse-suite-sub003/tests"
)

func Test_userApi_login(t *testing.T) {
	app, deps := setup(t)

	usr := testutil.CreateUser(t, deps.usrRepo, "User", "awe", "awe@test.cd", "LePassword", nil, true)
	testutil.CreateUser(t, deps.usrRepo, "Inactive", "inactive", "inactive@test.cd", "LePassword", nil, false)

	login := func(t *testing.T, uname, pwd string) (int, []byte) {
		body := marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		app.ServeHTTP(rec, req)
		return rec.Code, rec.Body.Bytes()
	}

	t.Run("with username", func(t *testing.T) {
		code, body := login(t, usr.Username, "LePassword")
		if code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body: %s", code, body)
		}
		var resp echoapi.LoginResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("with email", func(t *testing.T) {
		if code, body := login(t, usr.Email, "LePassword"); code != http.StatusOK {
			t.Errorf("code = %d, want 200; body: %s", code, body)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if code, _ := login(t, usr.Username, "nope"); code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400", code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if code, _ := login(t, "ghost", "nope"); code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400", code)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		if code, _ := login(t, "inactive", "LePassword"); code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", code)
		}
	})
}

func Test_userApi_register(t *testing.T) {
	app, deps := setup(t)

	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staffer", "staffer@test.cd", "", []string{user.RoleStaff}, true)

	newUserBody := func(uname, email string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "New User",
			Username:        uname,
			Email:           email,
			Password:        "LePassword",
			PasswordConfirm: "LePassword",
			Roles:           roles,
		})
	}

	t.Run("admin can register", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), newUserBody("newbie", "newbie@test.cd", user.RoleStaff))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling user: %v", err)
		}
		if !usr.IsStaff() {
			t.Errorf("roles = %v, want staff", usr.Roles)
		}
	})

	t.Run("staff cannot register", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, staff), newUserBody("another", "another@test.cd"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})

	t.Run("cannot grant a role above own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), newUserBody("usurper", "usurper@test.cd", user.RoleAdminOwner))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400; body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), newUserBody("staffer", "unique@test.cd"))
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_userApi_detail(t *testing.T) {
	app, deps := setup(t)

	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	usr := testutil.CreateUser(t, deps.usrRepo, "User", "awe", "awe@test.cd", "", []string{user.RoleStaff}, true)
	other := testutil.CreateUser(t, deps.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStaff}, true)

	t.Run("own profile", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+usr.ID, getToken(t, usr))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("someone else's profile is hidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want 404", rec.Code)
		}
	})

	t.Run("admin sees all", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/"+other.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d, want 200", rec.Code)
		}
	})

	t.Run("non-admin cannot change roles", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"roles": []string{user.RoleAdmin}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+usr.ID, getToken(t, usr), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})
}
