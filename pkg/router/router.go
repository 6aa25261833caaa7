package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// ANSI colors for request logging
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router is a small method-aware mux with wildcard path segments ("*") and
// colored request logging. Routes are matched exact-first, then against
// wildcard patterns in registration order.
type Router struct {
	mux     *http.ServeMux
	exact   map[string]HandlerFunc // key = METHOD:PATH
	pattern []route
}

type route struct {
	method  string
	path    string
	handler HandlerFunc
}

func New() *Router {
	r := &Router{
		mux:   http.NewServeMux(),
		exact: make(map[string]HandlerFunc),
	}
	r.mux.HandleFunc("/", r.dispatch)
	return r
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	switch {
	case r.serveExact(lrw, req):
	case r.servePattern(lrw, req):
	default:
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, time.Since(start), colorReset,
	)
}

func (r *Router) serveExact(w http.ResponseWriter, req *http.Request) bool {
	h, ok := r.exact[req.Method+":"+req.URL.Path]
	if ok {
		h(w, req)
	}
	return ok
}

func (r *Router) servePattern(w http.ResponseWriter, req *http.Request) bool {
	for _, rt := range r.pattern {
		if rt.method == req.Method && matchPattern(req.URL.Path, rt.path) {
			rt.handler(w, req)
			return true
		}
	}
	return false
}

// matchPattern matches a request path against a registered pattern. A "*"
// segment matches exactly one path segment, except a trailing "*" which
// matches one or more remaining segments.
func matchPattern(path, pattern string) bool {
	ps := strings.Split(strings.Trim(path, "/"), "/")
	rs := strings.Split(strings.Trim(pattern, "/"), "/")

	if len(rs) > 0 && rs[len(rs)-1] == "*" {
		if len(ps) < len(rs) {
			return false
		}
		rs = rs[:len(rs)-1]
		ps = ps[:len(rs)]
	} else if len(ps) != len(rs) {
		return false
	}

	for i, seg := range rs {
		if seg != "*" && seg != ps[i] {
			return false
		}
	}
	return true
}

func (r *Router) register(method, path string, handler HandlerFunc) {
	if strings.Contains(path, "*") {
		r.pattern = append(r.pattern, route{method: method, path: path, handler: handler})
		return
	}
	r.exact[method+":"+path] = handler
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.register(http.MethodPut, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// ServeHTTP makes the router usable anywhere an http.Handler is.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Start runs the server; it only returns on a fatal listen error.
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r.mux))
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusColor(code int) string {
	switch {
	case code < 300:
		return colorGreen
	case code < 400:
		return colorCyan
	case code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
