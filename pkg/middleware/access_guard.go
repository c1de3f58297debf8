package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/pkg/composables"
)

// Subject headers set by the authenticating reverse proxy.
const (
	HeaderSubjectID   = "X-Subject-Id"
	HeaderSubjectRole = "X-Subject-Role"
	HeaderSubjectUnit = "X-Subject-Unit"
)

// Authenticate resolves the acting subject from the proxy headers and
// attaches it to the request context. Requests without a subject get 401.
func Authenticate() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderSubjectID)
			role := r.Header.Get(HeaderSubjectRole)
			unitID, err := strconv.ParseInt(r.Header.Get(HeaderSubjectUnit), 10, 64)
			if id == "" || role == "" || err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := composables.WithSubject(r.Context(), &composables.Subject{
				ID:           id,
				ActiveRole:   role,
				ActiveUnitID: unitID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAction guards a subprocess route: the ambient subject must be
// authorized for the action on the subprocess named by the {id} route
// variable. Denials answer 403 without detail.
func RequireAction(engine *access.Engine, action access.Action) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := composables.UseSubject(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
			if err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			if !engine.CanExecuteByID(r.Context(), AccessSubject(subject), id, action) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessSubject converts the ambient session subject into the engine's form.
func AccessSubject(s *composables.Subject) *access.Subject {
	if s == nil {
		return nil
	}
	return &access.Subject{
		ID:     s.ID,
		Role:   org.Role(s.ActiveRole),
		UnitID: s.ActiveUnitID,
	}
}
