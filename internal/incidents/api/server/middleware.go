package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/policy"
	"github.com/Leopold1975/incidents_control/internal/pkg/jwtauth"
	"github.com/Leopold1975/incidents_control/pkg/logger"
)

type ctxKey int

const actorKey ctxKey = iota

func actorFrom(ctx context.Context) (policy.Actor, bool) {
	a, ok := ctx.Value(actorKey).(policy.Actor)

	return a, ok
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}

// authMiddleware verifies the bearer token and stores the actor in the
// request context, failing closed on anything it cannot verify.
func (s Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			handleError(w, "missing bearer token", http.StatusUnauthorized)

			return
		}

		actor, err := s.authService.Identity(r.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			if errors.Is(err, jwtauth.ErrTokenExpired) {
				handleError(w, "token expired", http.StatusUnauthorized)

				return
			}

			handleError(w, "invalid token", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// require gates a route on the static role allow-list for the action.
// Ownership-sensitive actions are checked again in the services with the
// resource at hand.
func (s Server) require(action policy.Action) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFrom(r.Context())
			if !ok {
				handleError(w, "missing bearer token", http.StatusUnauthorized)

				return
			}

			if !policy.Allow(actor, action, nil) {
				w.WriteHeader(http.StatusForbidden)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
