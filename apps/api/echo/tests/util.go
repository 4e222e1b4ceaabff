package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/website360/clientpulse-suite-sub003/apps/api/echo"
	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/client"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/org"
	"github.com/website360/clientpulse-suite-sub003/core/project"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
	"github.com/website360/clientpulse-suite-sub003/core/user"
	emailsvc "github.com/website360/clientpulse-suite-sub003/services/email"
	logsvc "github.com/website360/clientpulse-suite-sub003/services/logger"
	notifsvc "github.com/website360/clientpulse-suite-sub003/services/notify"
	paysvc "github.com/website360/clientpulse-suite-sub003/services/payment"
	inmemdb "github.com/website360/clientpulse-suite-sub003/storage/database/inmem"
)

type serverDeps struct {
	usrRepo    user.Repository
	clientRepo client.Repository
	maintRepo  maintenance.Repository
	notifier   *notifsvc.NotifierMock
	gateway    *paysvc.GatewayMock
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// stable error payloads regardless of the local env
func init() {
	core.Conf.Debug = false
	core.Conf.TestMode = true
}

func setup(t *testing.T) (Server, serverDeps) {
	t.Helper()

	db := inmemdb.Open()
	deps := serverDeps{
		usrRepo:    inmemdb.NewUserRepository(db),
		clientRepo: inmemdb.NewClientRepository(db),
		maintRepo:  inmemdb.NewMaintenanceRepository(db),
		notifier:   notifsvc.NewNotifierMock(),
		gateway:    &paysvc.GatewayMock{Statuses: make(map[string]billing.PaymentStatus)},
	}

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()

	usrSvc := user.NewService(deps.usrRepo, mailSvc)
	clientSvc := client.NewService(deps.clientRepo)
	maintSvc := maintenance.NewService(deps.maintRepo, deps.notifier, logger, maintenance.RollForward)
	billingSvc := billing.NewService(inmemdb.NewBillingRepository(db), clientSvc, deps.gateway, mailSvc, deps.notifier, logger)
	projectSvc := project.NewService(inmemdb.NewProjectRepository(db))
	ticketSvc := ticket.NewService(inmemdb.NewTicketRepository(db))
	orgSvc := org.NewService(inmemdb.NewOrgRepository(db))

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterRolesValidation(validate)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Deps: &Deps{
				Logger:         logger,
				UserSvc:        usrSvc,
				ClientSvc:      clientSvc,
				MaintenanceSvc: maintSvc,
				BillingSvc:     billingSvc,
				ProjectSvc:     projectSvc,
				TicketSvc:      ticketSvc,
				OrgSvc:         orgSvc,
				Validate:       validate,
				Translator:     translator,
			},
		},
	)
	return app, deps
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
