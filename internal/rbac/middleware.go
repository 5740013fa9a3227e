package rbac

import "net/http"

// Require rejects the request unless the context role holds perm.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !NewChecker(role).Has(perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny passes if the role holds at least one of perms.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !NewChecker(role).Any(perms...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnerOr passes when the subject matches ownerOf(r), or when the
// role holds perm. Used for the ":self" routes where a student may read
// their own records but needs grade:view to read anyone else's.
func RequireOwnerOr(perm string, ownerOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, _ := SubjectFromContext(r.Context())
			if sub != "" && sub == ownerOf(r) {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := RoleFromContext(r.Context())
			if !ok || !NewChecker(role).Has(perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
