package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/model"
)

// ============================================================================
// HTTP Request Helpers
// ============================================================================

// RequestBuilder helps construct HTTP requests for testing
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
}

// NewRequest creates a new request builder
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: make(map[string]string),
	}
}

// WithBody sets the request body (will be JSON encoded)
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

// WithHeader adds a header to the request
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// Build creates the HTTP request
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var bodyReader io.Reader
	if rb.body != nil {
		bodyBytes, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(rb.method, rb.path, bodyReader)

	// Set content type for requests with body
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}

	return req
}

// Do builds the request and serves it through h
func (rb *RequestBuilder) Do(h http.Handler) *httptest.ResponseRecorder {
	rb.t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, rb.Build())
	return rr
}

// ============================================================================
// Response Assertion Helpers
// ============================================================================

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, resp.Code, resp.Body.String())
	}
}

// AssertProblemDetails validates an RFC 9457 Problem Details error response
func AssertProblemDetails(t *testing.T, resp *httptest.ResponseRecorder, expectedStatus int, expectedCode model.ErrorCode) {
	t.Helper()

	AssertStatus(t, resp, expectedStatus)

	var problem model.ProblemDetails
	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v. Body: %s", err, string(bodyBytes))
	}

	if problem.Status != expectedStatus {
		t.Errorf("expected problem.status %d, got %d", expectedStatus, problem.Status)
	}

	if expectedCode != 0 && problem.Code != expectedCode {
		t.Errorf("expected problem.code %d, got %d", expectedCode, problem.Code)
	}
}

// AssertMessage checks a 200 response whose body is a bare JSON string
func AssertMessage(t *testing.T, resp *httptest.ResponseRecorder, expected string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusOK)

	var message string
	DecodeResponse(t, resp, &message)
	if message != expected {
		t.Errorf("expected message %q, got %q", expected, message)
	}
}

// AssertText checks a 200 plain-text response
func AssertText(t *testing.T, resp *httptest.ResponseRecorder, expected string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusOK)

	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", ct)
	}
	if body := resp.Body.String(); body != expected {
		t.Errorf("expected body %q, got %q", expected, body)
	}
}

// DecodeResponse decodes the response body into the given struct
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	bodyBytes := resp.Body.Bytes()
	if err := json.Unmarshal(bodyBytes, v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(bodyBytes))
	}
}

// ============================================================================
// Database Assertion Helpers
// ============================================================================

// CountAccounts returns the number of stored accounts with the given email
func CountAccounts(t *testing.T, db database.Database, email string) int {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, "SELECT id FROM account WHERE email = $email", map[string]interface{}{
		"email": email,
	})
	if err != nil {
		t.Fatalf("failed to query accounts: %v", err)
	}
	return countResults(results)
}

// AssertAccountExists checks that an account record exists in the database
func AssertAccountExists(t *testing.T, db database.Database, id model.AccountID) {
	t.Helper()
	if !accountExists(t, db, id) {
		t.Errorf("expected account %s to exist, but it doesn't", id)
	}
}

// AssertAccountNotExists checks that an account record does not exist
func AssertAccountNotExists(t *testing.T, db database.Database, id model.AccountID) {
	t.Helper()
	if accountExists(t, db, id) {
		t.Errorf("expected account %s to not exist, but it does", id)
	}
}

func accountExists(t *testing.T, db database.Database, id model.AccountID) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, `SELECT * FROM type::thing("account", $id)`, map[string]interface{}{
		"id": id.String(),
	})
	if err != nil {
		t.Fatalf("failed to query for account: %v", err)
	}
	return countResults(results) > 0
}

// countResults counts the records of the first statement in a SurrealDB result
func countResults(results []interface{}) int {
	if len(results) == 0 {
		return 0
	}

	resp, ok := results[0].(map[string]interface{})
	if !ok {
		return 0
	}

	switch v := resp["result"].(type) {
	case []interface{}:
		return len(v)
	case map[string]interface{}:
		return 1
	default:
		return 0
	}
}
