package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/segyhp/school-portal/pkg/response"
)

// Routes is every API handler group mounted under /api/v1.
type Routes struct {
	Payments  *PaymentHandler
	Academic  *AcademicHandler
	Community *CommunityHandler
	People    *PeopleHandler
	Documents *DocumentHandler
}

// register mounts the groups that are set.
func (r Routes) register(api *mux.Router) {
	if r.Payments != nil {
		r.Payments.Register(api)
	}
	if r.Academic != nil {
		r.Academic.Register(api)
	}
	if r.Community != nil {
		r.Community.Register(api)
	}
	if r.People != nil {
		r.People.Register(api)
	}
	if r.Documents != nil {
		r.Documents.Register(api)
	}
}

// NewRouter wires the probes, the metrics endpoint and the authenticated API.
func NewRouter(routes Routes, health *HealthHandler, auth *Authenticator, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(Recover, Observe)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Kaynak bulunamadı")
	})

	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)
	routes.register(api)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", DevUserHeader},
		AllowCredentials: true,
	})
	return c.Handler(router)
}
