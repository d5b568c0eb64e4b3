package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/model"
	"github.com/forgo/accounts/internal/service"
)

// ============================================================================
// Mock AccountService
// ============================================================================

type mockAccountService struct {
	createFunc     func(ctx context.Context, input service.AccountInput) (*model.Account, error)
	getFunc        func(ctx context.Context, id string) (*model.Account, error)
	getByEmailFunc func(ctx context.Context, email string) (*model.Account, error)
	updateFunc     func(ctx context.Context, id string, input service.AccountInput) (*model.Account, error)
	deleteFunc     func(ctx context.Context, id string) error
	listFunc       func(ctx context.Context) ([]*model.Account, error)
	loginFunc      func(ctx context.Context, email, password string) error
	pingFunc       func(ctx context.Context) error
}

func (m *mockAccountService) CreateAccount(ctx context.Context, input service.AccountInput) (*model.Account, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, input)
	}
	return nil, nil
}

func (m *mockAccountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAccountService) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, id string, input service.AccountInput) (*model.Account, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, input)
	}
	return nil, nil
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAccountService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) error {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil
}

func (m *mockAccountService) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func newTestAccount(t *testing.T) *model.Account {
	t.Helper()
	id, err := model.NewAccountID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	now := time.Now().UTC()
	return &model.Account{
		ID:        id,
		Username:  "ann",
		Email:     "ann@x.io",
		Hash:      "$2a$12$secret",
		CreatedOn: now,
		UpdatedOn: now,
	}
}

func newTestMux(svc AccountService) *http.ServeMux {
	mux := http.NewServeMux()
	NewAccountHandler(svc, time.Second).Register(mux)
	return mux
}

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func parseErrorResponse(t *testing.T, body []byte) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &problem
}

func parseMessage(t *testing.T, body []byte) string {
	t.Helper()
	var msg string
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("failed to parse message response: %v", err)
	}
	return msg
}

// ============================================================================
// Hello / Health
// ============================================================================

func TestHello(t *testing.T) {
	t.Parallel()

	rr := serve(newTestMux(&mockAccountService{}), httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var msg string
	if err := json.Unmarshal(rr.Body.Bytes(), &msg); err != nil {
		t.Fatalf("expected JSON string body: %v", err)
	}
	if msg != greeting {
		t.Errorf("expected %q, got %q", greeting, msg)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	svc := &mockAccountService{}
	mux := newTestMux(svc)

	rr := serve(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}

	svc.pingFunc = func(ctx context.Context) error { return database.ErrConnection }
	rr = serve(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestUnknownRoute_NotFound(t *testing.T) {
	t.Parallel()

	rr := serve(newTestMux(&mockAccountService{}), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

// ============================================================================
// Create
// ============================================================================

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	account := newTestAccount(t)
	var got service.AccountInput
	svc := &mockAccountService{
		createFunc: func(ctx context.Context, input service.AccountInput) (*model.Account, error) {
			got = input
			return account, nil
		},
	}

	rr := serve(newTestMux(svc), makeJSONRequest(http.MethodPost, "/user/create", AccountRequest{
		ID:       "client-supplied",
		Username: "ann",
		Email:    "ann@x.io",
		Password: "secret",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Email != "ann@x.io" || got.Password != "secret" || got.Username != "ann" {
		t.Errorf("unexpected service input: %+v", got)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] != account.ID.String() {
		t.Errorf("expected id %s, got %v", account.ID, resp["id"])
	}
	for _, secret := range []string{"hash", "password"} {
		if _, ok := resp[secret]; ok {
			t.Errorf("response must not contain %q", secret)
		}
	}
}

func TestCreate_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"exists", service.ErrAccountExists, http.StatusOK, msgAccountExists},
		{"empty email", service.ErrEmailRequired, http.StatusBadRequest, ""},
		{"password too long", service.ErrPasswordTooLong, http.StatusBadRequest, ""},
		{"store failure", fmt.Errorf("%w: socket closed", database.ErrConnection), http.StatusInternalServerError, "socket closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockAccountService{
				createFunc: func(ctx context.Context, input service.AccountInput) (*model.Account, error) {
					return nil, tt.err
				},
			}

			rr := serve(newTestMux(svc), makeJSONRequest(http.MethodPost, "/user/create", AccountRequest{Email: "ann@x.io"}))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got %s", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	t.Parallel()

	svc := &mockAccountService{
		createFunc: func(ctx context.Context, input service.AccountInput) (*model.Account, error) {
			t.Error("service should not be called")
			return nil, nil
		},
	}

	for _, body := range []string{"", "{not json", `{"email":42}`} {
		req := httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader(body))
		rr := serve(newTestMux(svc), req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestCreate_ExtraFieldsIgnored(t *testing.T) {
	t.Parallel()

	var got service.AccountInput
	svc := &mockAccountService{
		createFunc: func(ctx context.Context, input service.AccountInput) (*model.Account, error) {
			got = input
			return newTestAccount(t), nil
		},
	}

	body := `{"username":"ann","email":"ann@x.io","password":"secret","role":"admin","created_on":"2024-01-01T00:00:00Z"}`
	rr := serve(newTestMux(svc), httptest.NewRequest(http.MethodPost, "/user/create", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.Email != "ann@x.io" || got.Username != "ann" {
		t.Errorf("unexpected service input: %+v", got)
	}
}

func TestCreate_ExistsIsPlainText(t *testing.T) {
	t.Parallel()

	svc := &mockAccountService{
		createFunc: func(ctx context.Context, input service.AccountInput) (*model.Account, error) {
			return nil, service.ErrAccountExists
		},
	}

	rr := serve(newTestMux(svc), makeJSONRequest(http.MethodPost, "/user/create", AccountRequest{Email: "ann@x.io"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "User already exists" {
		t.Errorf("expected bare text body, got %q", rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
}

// ============================================================================
// Login
// ============================================================================

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"wrong credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"verification fault", service.ErrCredentialCheck, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockAccountService{
				loginFunc: func(ctx context.Context, email, password string) error {
					if email != "ann@x.io" || password != "secret" {
						t.Errorf("unexpected credentials %q/%q", email, password)
					}
					return tt.err
				},
			}

			rr := serve(newTestMux(svc), makeJSONRequest(http.MethodPost, "/user/login", LoginRequest{
				Email:    "ann@x.io",
				Password: "secret",
			}))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.err == nil && parseMessage(t, rr.Body.Bytes()) != msgLoginOK {
				t.Errorf("unexpected body: %s", rr.Body.String())
			}
			if tt.err != nil {
				problem := parseErrorResponse(t, rr.Body.Bytes())
				if problem.Status != tt.wantStatus {
					t.Errorf("problem status %d does not match %d", problem.Status, tt.wantStatus)
				}
			}
		})
	}
}

func TestLogin_FullAccountBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"correct password", nil, http.StatusOK},
		{"wrong password", service.ErrInvalidCredentials, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockAccountService{
				loginFunc: func(ctx context.Context, email, password string) error {
					if email != "ann@x.io" || password != "secret" {
						t.Errorf("unexpected credentials %q/%q", email, password)
					}
					return tt.err
				},
			}

			body := `{"id":"","username":"ann","email":"ann@x.io","password":"secret"}`
			rr := serve(newTestMux(svc), httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(body)))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLogin_SuccessBodyIsJSONString(t *testing.T) {
	t.Parallel()

	rr := serve(newTestMux(&mockAccountService{}), makeJSONRequest(http.MethodPost, "/user/login", LoginRequest{
		Email:    "ann@x.io",
		Password: "secret",
	}))

	if got := strings.TrimSpace(rr.Body.String()); got != `"Login successful"` {
		t.Errorf("expected bare JSON string, got %s", got)
	}
}

// ============================================================================
// Get
// ============================================================================

func TestGetByID(t *testing.T) {
	t.Parallel()

	account := newTestAccount(t)
	svc := &mockAccountService{
		getFunc: func(ctx context.Context, id string) (*model.Account, error) {
			switch id {
			case account.ID.String():
				return account, nil
			case "":
				return nil, service.ErrIDRequired
			case "bad":
				return nil, service.ErrInvalidID
			}
			return nil, service.ErrAccountNotFound
		},
	}
	mux := newTestMux(svc)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/user/get/" + account.ID.String(), http.StatusOK},
		{"empty id", "/user/get/", http.StatusBadRequest},
		{"malformed", "/user/get/bad", http.StatusBadRequest},
		{"absent", "/user/get/0190b7a0-0000-7000-8000-000000000000", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := serve(mux, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGetByEmail_RoutesBeforeID(t *testing.T) {
	t.Parallel()

	account := newTestAccount(t)
	var gotEmail string
	svc := &mockAccountService{
		getByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
			gotEmail = email
			return account, nil
		},
		getFunc: func(ctx context.Context, id string) (*model.Account, error) {
			t.Error("id lookup should not be used for email paths")
			return nil, nil
		},
	}

	rr := serve(newTestMux(svc), httptest.NewRequest(http.MethodGet, "/user/get/email/ann@x.io", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotEmail != "ann@x.io" {
		t.Errorf("expected email ann@x.io, got %q", gotEmail)
	}
	if strings.Contains(rr.Body.String(), account.Hash) {
		t.Error("response must not contain the password hash")
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	t.Parallel()

	svc := &mockAccountService{
		getByEmailFunc: func(ctx context.Context, email string) (*model.Account, error) {
			return nil, service.ErrAccountNotFound
		},
	}

	rr := serve(newTestMux(svc), httptest.NewRequest(http.MethodGet, "/user/get/email/nobody@x.io", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	problem := parseErrorResponse(t, rr.Body.Bytes())
	if problem.Code != model.ErrCodeNotFound {
		t.Errorf("expected code %d, got %d", model.ErrCodeNotFound, problem.Code)
	}
}

// ============================================================================
// Update / Delete / List
// ============================================================================

func TestUpdate(t *testing.T) {
	t.Parallel()

	account := newTestAccount(t)
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"no match", service.ErrAccountNotFound, http.StatusNotFound},
		{"email taken", service.ErrAccountExists, http.StatusConflict},
		{"empty email", service.ErrEmailRequired, http.StatusBadRequest},
		{"store failure", database.ErrQuery, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockAccountService{
				updateFunc: func(ctx context.Context, id string, input service.AccountInput) (*model.Account, error) {
					if id != account.ID.String() {
						t.Errorf("unexpected id %q", id)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					updated := *account
					updated.Email = input.Email
					return &updated, nil
				},
			}

			rr := serve(newTestMux(svc), makeJSONRequest(http.MethodPut, "/user/update/"+account.ID.String(), AccountRequest{
				Username: "annie",
				Email:    "annie@x.io",
				Password: "new",
			}))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.err == nil && !strings.Contains(rr.Body.String(), "annie@x.io") {
				t.Errorf("expected refreshed account in body, got %s", rr.Body.String())
			}
		})
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	deleted := map[string]bool{}
	svc := &mockAccountService{
		deleteFunc: func(ctx context.Context, id string) error {
			if deleted[id] {
				return service.ErrAccountNotFound
			}
			deleted[id] = true
			return nil
		},
	}
	mux := newTestMux(svc)
	path := "/user/delete/0190b7a0-0000-7000-8000-000000000001"

	rr := serve(mux, httptest.NewRequest(http.MethodDelete, path, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if parseMessage(t, rr.Body.Bytes()) != msgDeleted {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}

	rr = serve(mux, httptest.NewRequest(http.MethodDelete, path, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	a, b := newTestAccount(t), newTestAccount(t)
	svc := &mockAccountService{
		listFunc: func(ctx context.Context) ([]*model.Account, error) {
			return []*model.Account{a, b}, nil
		},
	}

	rr := serve(newTestMux(svc), httptest.NewRequest(http.MethodGet, "/user/getall", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var accounts []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &accounts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	t.Parallel()

	rr := serve(newTestMux(&mockAccountService{}), httptest.NewRequest(http.MethodGet, "/user/getall", nil))

	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rr.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rr := serve(newTestMux(&mockAccountService{}), httptest.NewRequest(http.MethodGet, "/user/create", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

// ============================================================================
// Store context
// ============================================================================

func TestStoreContext_SurvivesClientCancel(t *testing.T) {
	t.Parallel()

	var storeErr error
	svc := &mockAccountService{
		deleteFunc: func(ctx context.Context, id string) error {
			storeErr = ctx.Err()
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected store context to carry a deadline")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodDelete, "/user/delete/x", nil).WithContext(ctx)

	rr := serve(newTestMux(svc), req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if storeErr != nil {
		t.Errorf("store call saw a cancelled context: %v", storeErr)
	}
}

// ============================================================================
// MapServiceError
// ============================================================================

func TestMapServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{service.ErrEmailRequired, http.StatusBadRequest},
		{service.ErrIDRequired, http.StatusBadRequest},
		{service.ErrInvalidID, http.StatusBadRequest},
		{service.ErrPasswordTooLong, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrAccountNotFound, http.StatusNotFound},
		{service.ErrAccountExists, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrCredentialCheck, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			if got := MapServiceError(tt.err); got.Status != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.Status)
			}
		})
	}

	if MapServiceError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestMapServiceError_PersistenceCarriesText(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: namespace not found", database.ErrQuery)
	problem := MapServiceError(err)

	if problem.Code != model.ErrCodeDatabase {
		t.Errorf("expected database code, got %d", problem.Code)
	}
	if problem.Detail != err.Error() {
		t.Errorf("expected detail %q, got %q", err.Error(), problem.Detail)
	}
}
