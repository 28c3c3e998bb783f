package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/studify/backend/apps/api/echo"
	"github.com/studify/backend/core"
	"github.com/studify/backend/core/avatar"
	"github.com/studify/backend/core/progression"
	"github.com/studify/backend/core/report"
	"github.com/studify/backend/core/shop"
	"github.com/studify/backend/core/task"
	"github.com/studify/backend/core/user"
	emailsvc "github.com/studify/backend/services/email"
	logsvc "github.com/studify/backend/services/logger"
	dummydb "github.com/studify/backend/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	conf *core.Config
	app  Server

	usrRepo  user.Repository
	shopRepo shop.Repository

	usrSvc    *user.Service
	progSvc   *progression.Service
	avatarSvc *avatar.Service
	shopSvc   *shop.Service
	taskSvc   *task.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	shopRepo := dummydb.NewShopRepository(db)

	conf := core.NewTestConfig()
	conf.Debug = false // error responses must look like production's
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "TEST : ", log.LstdFlags))

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	progSvc := progression.NewService(dummydb.NewProgressionStore(db), logger)
	avatarSvc := avatar.NewService(dummydb.NewAvatarRepository(db))
	shopSvc := shop.NewService(shopRepo, progSvc, avatarSvc)
	taskSvc := task.NewService(dummydb.NewTaskRepository(db), progSvc)
	reportSvc := report.NewService(usrSvc, shopSvc)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// set up server
	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		ProgSvc:        progSvc,
		AvatarSvc:      avatarSvc,
		ShopSvc:        shopSvc,
		TaskSvc:        taskSvc,
		ReportSvc:      reportSvc,
		Validate:       validate,
		Translator:     translator,
	})

	return &testEnv{
		conf:      conf,
		app:       app,
		usrRepo:   usrRepo,
		shopRepo:  shopRepo,
		usrSvc:    usrSvc,
		progSvc:   progSvc,
		avatarSvc: avatarSvc,
		shopSvc:   shopSvc,
		taskSvc:   taskSvc,
	}
}

func createUser(t *testing.T, repo user.Repository, uname, email, pwd string, isAdmin, isActive bool) user.User {
	t.Helper()

	role := user.RoleUser
	if isAdmin {
		role = user.RoleAdmin
	}
	usr := user.User{Username: uname, Email: email, Role: role, IsActive: isActive}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed, %v", err)
	}
	return usr
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

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
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
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
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
