package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/forgo/accounts/internal/model"
	"github.com/forgo/accounts/internal/service"
)

const greeting = "Hello from the accounts service"

// AccountService is the account behaviour the handlers depend on
type AccountService interface {
	CreateAccount(ctx context.Context, input service.AccountInput) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateAccount(ctx context.Context, id string, input service.AccountInput) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	Login(ctx context.Context, email, password string) error
	Ping(ctx context.Context) error
}

// AccountHandler handles account endpoints
type AccountHandler struct {
	accountService AccountService
	storeTimeout   time.Duration
}

// NewAccountHandler creates a new account handler. storeTimeout bounds every
// service call; zero means no bound.
func NewAccountHandler(accountService AccountService, storeTimeout time.Duration) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		storeTimeout:   storeTimeout,
	}
}

// AccountRequest is the body of create and update requests.
// Server-managed fields are accepted and ignored.
type AccountRequest struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedOn string `json:"created_on,omitempty"`
	UpdatedOn string `json:"updated_on,omitempty"`
}

func (req AccountRequest) input() service.AccountInput {
	return service.AccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

// LoginRequest represents the login endpoint request body. Clients may
// send the whole account document; only email and password are read.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HealthResponse represents the health endpoint body
type HealthResponse struct {
	Status string `json:"status"`
}

// Register mounts the account routes on mux
func (h *AccountHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Hello)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /user/create", h.Create)
	mux.HandleFunc("POST /user/login", h.Login)
	mux.HandleFunc("GET /user/get/email/{email...}", h.GetByEmail)
	mux.HandleFunc("GET /user/get/{id...}", h.GetByID)
	mux.HandleFunc("PUT /user/update/{id...}", h.Update)
	mux.HandleFunc("DELETE /user/delete/{id...}", h.Delete)
	mux.HandleFunc("GET /user/getall", h.List)
}

// storeContext detaches the request context from client cancellation so a
// disconnect cannot abort a write halfway, and bounds it by storeTimeout
func (h *AccountHandler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if h.storeTimeout > 0 {
		return context.WithTimeout(ctx, h.storeTimeout)
	}
	return context.WithCancel(ctx)
}

// Hello handles GET /
func (h *AccountHandler) Hello(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, greeting)
}

// Health handles GET /health
func (h *AccountHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	if err := h.accountService.Ping(ctx); err != nil {
		WriteError(w, model.NewServiceUnavailableError("account store unreachable"))
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Create handles POST /user/create
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	account, err := h.accountService.CreateAccount(ctx, req.input())
	if err != nil {
		writeCreateError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account.Public())
}

// Login handles POST /user/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	if err := h.accountService.Login(ctx, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, msgLoginOK)
}

// GetByEmail handles GET /user/get/email/{email}
func (h *AccountHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	account, err := h.accountService.GetAccountByEmail(ctx, r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account.Public())
}

// GetByID handles GET /user/get/{id}
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	account, err := h.accountService.GetAccount(ctx, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account.Public())
}

// Update handles PUT /user/update/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	account, err := h.accountService.UpdateAccount(ctx, r.PathValue("id"), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, account.Public())
}

// Delete handles DELETE /user/delete/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	if err := h.accountService.DeleteAccount(ctx, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteMessage(w, msgDeleted)
}

// List handles GET /user/getall
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	accounts, err := h.accountService.ListAccounts(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]*model.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	WriteJSON(w, http.StatusOK, out)
}
