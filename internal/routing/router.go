package routing

import (
	"net/http"
	"slices"
	"strings"
)

type Router struct {
	classifier *Classifier
	routes     map[string]map[string]routeEntry
	undeclared []string

	// OnPanic is called with the recovered value before the 500 is written.
	OnPanic func(r *http.Request, recovered any)
}

type routeEntry struct {
	rc      RouteClass
	handler http.Handler
}

func NewRouter(classifier *Classifier) *Router {
	return &Router{
		classifier: classifier,
		routes:     make(map[string]map[string]routeEntry),
	}
}

// Handle registers h. Routes missing from the allowlist are still served but
// reported by Undeclared.
func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	if r.routes[path] == nil {
		r.routes[path] = make(map[string]routeEntry)
	}
	if !r.classifier.Declares(method, path) {
		r.undeclared = append(r.undeclared, method+" "+path)
	}

	r.routes[path][method] = routeEntry{
		rc: rc,
		handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if r.OnPanic != nil {
						r.OnPanic(req, rec)
					}
					WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			h.ServeHTTP(w, req)
		}),
	}
}

// Undeclared lists registered "METHOD /path" pairs the allowlist lacks.
func (r *Router) Undeclared() []string {
	out := slices.Clone(r.undeclared)
	slices.Sort(out)
	return out
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	methods, ok := r.routes[req.URL.Path]
	if !ok {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
		return
	}
	entry, ok := methods[req.Method]
	if !ok {
		w.Header().Set("Allow", allowHeader(methods))
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	entry.handler.ServeHTTP(w, req)
}

func allowHeader(methods map[string]routeEntry) string {
	out := make([]string, 0, len(methods))
	for m := range methods {
		out = append(out, m)
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}
