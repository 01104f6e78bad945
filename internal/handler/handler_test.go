package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/school-portal/internal/access"
	"github.com/segyhp/school-portal/pkg/response"
)

type stubPolicies struct {
	policy access.Policy
	err    error
	seen   []string
}

func (s *stubPolicies) Resolve(_ context.Context, userID string) (access.Policy, error) {
	s.seen = append(s.seen, userID)
	return s.policy, s.err
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *response.Meta  `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// newTestServer mounts routes behind header-based dev authentication.
func newTestServer(routes Routes) http.Handler {
	return NewRouter(routes, NewHealthHandler(nil, nil, 0), NewAuthenticator("", ""), []string{"*"})
}

func doRequest(h http.Handler, method, target string, body io.Reader, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(DevUserHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticator_Middleware(t *testing.T) {
	const secret = "test-secret"
	now := time.Now()

	valid := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "school-portal",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	expired := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "school-portal",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
	noExpiry := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
		Issuer:  "school-portal",
	})
	wrongIssuer := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	wrongAlg := signToken(t, secret, jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "school-portal",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	wrongSecret := signToken(t, "other-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "school-portal",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	tests := []struct {
		name           string
		secret         string
		authorization  string
		devUser        string
		expectedStatus int
		expectedCaller string
	}{
		{name: "Success - Valid token", secret: secret, authorization: "Bearer " + valid, expectedStatus: http.StatusOK, expectedCaller: "user-1"},
		{name: "Success - Lowercase scheme", secret: secret, authorization: "bearer " + valid, expectedStatus: http.StatusOK, expectedCaller: "user-1"},
		{name: "Failure - Missing header", secret: secret, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Not a bearer token", secret: secret, authorization: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Expired", secret: secret, authorization: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - No expiry", secret: secret, authorization: "Bearer " + noExpiry, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Wrong issuer", secret: secret, authorization: "Bearer " + wrongIssuer, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Wrong algorithm", secret: secret, authorization: "Bearer " + wrongAlg, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Wrong secret", secret: secret, authorization: "Bearer " + wrongSecret, expectedStatus: http.StatusUnauthorized},
		{name: "Failure - Dev header ignored when secret set", secret: secret, devUser: "user-1", expectedStatus: http.StatusUnauthorized},
		{name: "Success - Dev header without secret", devUser: "dev-7", expectedStatus: http.StatusOK, expectedCaller: "dev-7"},
		{name: "Failure - Blank dev header", devUser: "  ", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var caller string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller = CallerID(r.Context())
				response.Success(w, nil)
			})
			h := NewAuthenticator(tt.secret, "school-portal").Middleware(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/anything", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			if tt.devUser != "" {
				req.Header.Set(DevUserHeader, tt.devUser)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCaller, caller)
			if tt.expectedStatus == http.StatusUnauthorized {
				env := decodeEnvelope(t, rec)
				assert.False(t, env.Success)
				assert.Equal(t, "UNAUTHORIZED", env.Code)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRouter_ProbesAndNotFound(t *testing.T) {
	srv := newTestServer(Routes{})

	rec := doRequest(srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &status))
	assert.Equal(t, "ok", status.Status)

	rec = doRequest(srv, http.MethodGet, "/no-such-route", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec).Code)

	rec = doRequest(srv, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := NewRouter(Routes{}, NewHealthHandler(nil, nil, 0), NewAuthenticator("", ""), []string{"https://portal.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "https://portal.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/1", nil)

	writeError(rec, req, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Equal(t, "INTERNAL_ERROR", decodeEnvelope(t, rec).Code)
}

func TestQueryDate(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expected      *time.Time
		expectedError bool
	}{
		{name: "Empty", raw: ""},
		{name: "Date only", raw: "2024-09-01", expected: ptrTime(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))},
		{name: "RFC3339", raw: "2024-09-01T08:30:00Z", expected: ptrTime(time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC))},
		{name: "Garbage", raw: "01/09/2024", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?from="+tt.raw, nil)
			got, err := queryDate(req, "from")
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got))
		})
	}
}

func TestPathID(t *testing.T) {
	for raw, valid := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": raw})
		id, err := pathID(req, "id")
		if valid {
			assert.NoError(t, err, raw)
			assert.Equal(t, int64(12), id)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
