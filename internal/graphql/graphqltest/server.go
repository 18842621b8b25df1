// Package graphqltest provides a scriptable fake GraphQL backend for tests.
package graphqltest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/tgienger/taskboard/internal/graphql"
)

// Path is the endpoint path the fake server answers on
const Path = "/graphql/"

// Call records one operation received by the server
type Call struct {
	Operation string
	Variables map[string]any
	Header    http.Header
}

// HandlerFunc answers one operation. Returned data is encoded under "data";
// returned errors under "errors".
type HandlerFunc func(vars map[string]any) (data any, errs []graphql.Error)

// Server is an httptest server speaking the GraphQL-over-HTTP envelope
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
	raw      map[string]http.HandlerFunc
}

// NewServer starts a server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		handlers: map[string]HandlerFunc{},
		raw:      map[string]http.HandlerFunc{},
	}

	r := mux.NewRouter()
	r.HandleFunc(Path, s.serveGraphQL).Methods(http.MethodPost)

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the endpoint URL
func (s *Server) URL() string {
	return s.srv.URL + Path
}

// Handle registers the answer for an operation name
func (s *Server) Handle(op string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = fn
}

// HandleRaw registers a handler that writes the HTTP response itself, for
// transport-level failures
func (s *Server) HandleRaw(op string, fn http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[op] = fn
}

// Calls returns the recorded calls, optionally only those for the given
// operation names, in arrival order
func (s *Server) Calls(ops ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ops) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		for _, op := range ops {
			if c.Operation == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Reset forgets the recorded calls
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) serveGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Operation: req.OperationName, Variables: req.Variables, Header: r.Header.Clone()})
	fn := s.handlers[req.OperationName]
	raw := s.raw[req.OperationName]
	s.mu.Unlock()

	if raw != nil {
		raw(w, r)
		return
	}

	var resp struct {
		Data   any             `json:"data"`
		Errors []graphql.Error `json:"errors,omitempty"`
	}
	if fn == nil {
		resp.Errors = []graphql.Error{{Message: "Cannot query operation " + req.OperationName}}
	} else {
		resp.Data, resp.Errors = fn(req.Variables)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
