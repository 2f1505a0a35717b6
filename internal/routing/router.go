package routing

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Router dispatches on exact path and method. Unknown paths and methods get
// the JSON error envelope for their route class.
type Router struct {
	classifier *Classifier
	logger     *zap.Logger
	paths      map[string]*pathRoutes
}

type pathRoutes struct {
	rc       RouteClass
	handlers map[string]http.Handler
}

// NewRouter builds a router over classifier. A nil logger discards panic
// reports.
func NewRouter(classifier *Classifier, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{classifier: classifier, logger: logger, paths: make(map[string]*pathRoutes)}
}

func (r *Router) Handle(rc RouteClass, method string, path string, h http.Handler) {
	pr, ok := r.paths[path]
	if !ok {
		pr = &pathRoutes{rc: rc, handlers: make(map[string]http.Handler)}
		r.paths[path] = pr
	}
	pr.handlers[method] = r.recoverer(rc, h)
}

func (r *Router) recoverer(rc RouteClass, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("handler panic",
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				WriteError(w, req, rc, http.StatusInternalServerError, "internal_error", "internal error")
			}
		}()
		h.ServeHTTP(w, req)
	})
}

// Registered reports every path with at least one handler.
func (r *Router) Registered() []string {
	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	return out
}

// Methods lists the methods served on path, sorted.
func (r *Router) Methods(path string) []string {
	pr, ok := r.paths[path]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(pr.handlers))
	for m := range pr.handlers {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// CheckCoverage fails when ep and the registered handlers disagree: either an
// allowlisted method has no handler or a handler is missing from ep.
func (r *Router) CheckCoverage(ep Entrypoint) error {
	declared := make(map[string]Route, len(ep.Routes))
	for _, route := range ep.Routes {
		declared[route.Path] = route
		for _, m := range route.Methods {
			if _, ok := r.paths[route.Path].lookup(m); !ok {
				return fmt.Errorf("routing: %s %s is allowlisted but has no handler", m, route.Path)
			}
		}
	}
	for path, pr := range r.paths {
		route, ok := declared[path]
		for m := range pr.handlers {
			if !ok || !route.Allows(m) {
				return fmt.Errorf("routing: %s %s has a handler but is not allowlisted", m, path)
			}
		}
	}
	return nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	pr, ok := r.paths[req.URL.Path]
	if !ok {
		WriteError(w, req, r.classifier.Classify(req.URL.Path), http.StatusNotFound, "not_found", "not found")
		return
	}
	h, ok := pr.lookup(req.Method)
	if !ok {
		w.Header().Set("Allow", strings.Join(r.Methods(req.URL.Path), ", "))
		WriteError(w, req, pr.rc, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	h.ServeHTTP(w, req)
}

func (pr *pathRoutes) lookup(method string) (http.Handler, bool) {
	if pr == nil {
		return nil, false
	}
	h, ok := pr.handlers[method]
	return h, ok
}
