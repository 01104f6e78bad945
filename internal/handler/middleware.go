package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/segyhp/school-portal/internal/metrics"
	"github.com/segyhp/school-portal/pkg/logger"
	"github.com/segyhp/school-portal/pkg/response"
)

type callerKey struct{}

// WithCaller stores the authenticated user id on ctx.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerID returns the authenticated user id, or "" when there is none.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

// DevUserHeader names the caller when no JWT secret is configured.
const DevUserHeader = "X-User-ID"

// Authenticator resolves the caller from an HS256 bearer token whose subject
// is the identity user id.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// Middleware rejects requests without a valid caller.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.caller(r)
		if !ok {
			response.Unauthorized(w, "Geçerli bir oturum gerekli")
			return
		}

		ctx := WithCaller(r.Context(), userID)
		l := logger.FromContext(ctx).With().Str("user_id", userID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, l)))
	})
}

func (a *Authenticator) caller(r *http.Request) (string, bool) {
	if len(a.secret) == 0 {
		id := strings.TrimSpace(r.Header.Get(DevUserHeader))
		return id, id != ""
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid || claims.Subject == "" {
		logger.Debug(r.Context()).Err(err).Msg("Rejected bearer token")
		return "", false
	}
	return claims.Subject, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Observe logs every request and records its count and latency by route
// template.
func Observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := routeName(r)
		metrics.RequestLatency.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		metrics.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()

		event := logger.Info(r.Context())
		if rec.status >= http.StatusInternalServerError {
			event = logger.Error(r.Context())
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", duration).
			Msg("HTTP request completed")
	})
}

// Recover turns a panic into a generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error(r.Context()).
					Interface("panic", p).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")
				response.InternalServerError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
