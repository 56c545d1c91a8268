// Package server exposes the agency's collections, ledger views and
// documents over a JSON HTTP API.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/document"
	"github.com/rentbook-dev/rentbook/internal/fleet"
	"github.com/rentbook-dev/rentbook/internal/identity"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/rental"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// Options configures a Server.
type Options struct {
	Backend        *store.Backend
	Resolver       identity.Resolver
	Log            logrus.FieldLogger
	Classifier     ledger.Classifier
	AuditDir       string // "" disables the audit log
	AllowedOrigins []string
	Renderer       document.Renderer // nil = PDF
	Now            func() time.Time  // nil = time.Now
}

// Server serves one backend to authenticated callers. Each request works on
// the account named by its session.
type Server struct {
	backend    *store.Backend
	resolver   identity.Resolver
	log        logrus.FieldLogger
	classifier ledger.Classifier
	auditDir   string
	origins    []string
	renderer   document.Renderer
	now        func() time.Time
}

// New returns a Server for opts.
func New(opts Options) *Server {
	s := &Server{
		backend:    opts.Backend,
		resolver:   opts.Resolver,
		log:        opts.Log,
		classifier: opts.Classifier,
		auditDir:   opts.AuditDir,
		origins:    opts.AllowedOrigins,
		renderer:   opts.Renderer,
		now:        opts.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.renderer == nil {
		s.renderer = document.PDFRenderer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(requireRole(identity.RoleClient))

		s.rentalRoutes(r)
		s.fleetRoutes(r)
		s.ledgerRoutes(r)
		s.documentRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(identity.RoleAdmin))
			r.Get("/agencies", s.handleAdminAgencies)
		})
	})

	// Without configured origins only same-origin callers are served.
	if len(s.origins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return c.Handler(r)
}

// authenticate settles a per-request gate from the bearer token. Only
// resolved sessions pass.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate := identity.NewGate()
		ctx := identity.WithGate(r.Context(), gate)
		if err := gate.Resolve(ctx, s.resolver, bearerToken(r)); err != nil {
			s.log.WithFields(logrus.Fields{
				"path":  r.URL.Path,
				"error": err,
			}).Warn("Rejected token")
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid token")
			return
		}
		if gate.Session().State != identity.StateResolved {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authorization token required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole waits for the request's gate to settle, then checks role.
// A request without a gate, or whose gate never settles, is refused.
func requireRole(role identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gate := identity.GateFrom(r.Context())
			if gate == nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			sess, err := gate.Wait(r.Context())
			if err != nil || !sess.Allows(role) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}

// services are the account-scoped services of one request.
type services struct {
	session identity.Session
	rental  *rental.Service
	fleet   *fleet.Service
}

func (s *Server) services(r *http.Request) services {
	sess := identity.FromContext(r.Context())
	log := s.log.WithField("account_id", sess.AccountID)

	var st store.Store = s.backend.Account(sess.AccountID)
	if s.auditDir != "" {
		st = store.Audited(st, sess.AccountID, sess.UserID, s.auditDir, log)
	}

	rs := rental.NewService(st, log)
	rs.SetClock(s.now)
	fs := fleet.NewService(st, log)
	fs.SetClock(s.now)
	return services{session: sess, rental: rs, fleet: fs}
}

func rentalSvc(v services) *rental.Service { return v.rental }
func fleetSvc(v services) *fleet.Service   { return v.fleet }
