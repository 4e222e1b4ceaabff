package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/website360/clientpulse-suite-sub003/core/ticket"
	"github.com/website360/clientpulse-suite-sub003/core/user"
	testutil "github.com/website360/clientpulse-suite-sub003/tests"
)

func Test_ticketApi(t *testing.T) {
	app, deps := setup(t)

	staff := testutil.CreateUser(t, deps.usrRepo, "Staff", "staff", "staff@test.cd", "", []string{user.RoleStaff}, true)
	cl1 := testutil.CreateClient(t, deps.clientRepo, "Acme", "acme@test.cd")
	cl2 := testutil.CreateClient(t, deps.clientRepo, "Globex", "globex@test.cd")

	portal := testutil.CreateUser(t, deps.usrRepo, "Portal", "portal", "portal@test.cd", "", []string{user.RoleClient}, true)
	portal.ClientID = cl1.ID
	portalToken := getToken(t, portal)
	staffToken := getToken(t, staff)

	var tk ticket.Ticket
	t.Run("portal opens a ticket for its own client", func(t *testing.T) {
		body := marchallObj(t, ticket.NewTicket{Subject: "Site down", Body: "Help!"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets", portalToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &tk); err != nil {
			t.Fatalf("unmarshalling ticket: %v", err)
		}
		if tk.ClientID != cl1.ID {
			t.Errorf("ClientID = %s, want the portal's %s", tk.ClientID, cl1.ID)
		}
		if tk.Status != ticket.StatusOpen || tk.Priority != ticket.PriorityNormal {
			t.Errorf("unexpected defaults: %s/%s", tk.Status, tk.Priority)
		}
	})

	t.Run("portal cannot open for another client", func(t *testing.T) {
		body := marchallObj(t, ticket.NewTicket{ClientID: cl2.ID, Subject: "Sneaky", Body: "..."})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets", portalToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", rec.Code)
		}
	})

	t.Run("comment carries the author", func(t *testing.T) {
		body := marchallObj(t, ticket.NewComment{Body: "Looking into it"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/tickets/"+tk.ID+"/comments", staffToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		var cm ticket.Comment
		if err := json.Unmarshal(rec.Body.Bytes(), &cm); err != nil {
			t.Fatalf("unmarshalling comment: %v", err)
		}
		if cm.AuthorID != staff.ID {
			t.Errorf("AuthorID = %s, want %s", cm.AuthorID, staff.ID)
		}
	})

	t.Run("other client's ticket is hidden behind 404", func(t *testing.T) {
		otherPortal := testutil.CreateUser(t, deps.usrRepo, "Other", "otherportal", "op@test.cd", "", []string{user.RoleClient}, true)
		otherPortal.ClientID = cl2.ID

		req, rec := newAuthRequest(http.MethodGet, "/v1/tickets/"+tk.ID, getToken(t, otherPortal))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want 404", rec.Code)
		}
	})

	t.Run("only staff can update", func(t *testing.T) {
		body := marchallObj(t, ticket.UpdateTicket{Status: ticket.StatusResolved})

		req, rec := newAuthRequest(http.MethodPut, "/v1/tickets/"+tk.ID, portalToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("code = %d, want 403 for portal", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodPut, "/v1/tickets/"+tk.ID, staffToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
	})
}
