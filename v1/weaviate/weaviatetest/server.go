// Package weaviatetest provides an in-memory fake of the Weaviate REST API
// for tests.
package weaviatetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Aleph-Alpha/vecmigrate/v1/weaviate"
)

// Version is the server version reported by GET /v1/meta.
const Version = "1.25.4"

// Backup is the content a restore installs into the schema.
type Backup struct {
	Classes []*weaviate.Class
	Objects map[string][]*weaviate.Object
}

// Request records a call received by the server.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// Server is a fake Weaviate backed by maps. The zero value is not usable;
// create one with NewServer.
type Server struct {
	*httptest.Server

	// APIKey, when set, is required as a bearer token.
	APIKey string

	// FailObject makes POST /v1/objects and batch entries fail for matching objects.
	FailObject func(obj *weaviate.Object) bool

	// FailList makes GET /v1/objects fail with the returned status when non-zero.
	FailList func(class string, offset int, after string) int

	// FailDeleteClass makes DELETE /v1/schema/{class} fail with the returned status when non-zero.
	FailDeleteClass func(name string) int

	// FailCreateClass makes POST /v1/schema fail with the returned status when non-zero.
	FailCreateClass func(class *weaviate.Class) int

	mu             sync.Mutex
	classes        map[string]*weaviate.Class
	order          []string
	objects        map[string][]*weaviate.Object
	backups        map[string]*Backup
	restoreScript  []weaviate.RestoreStatus
	restorePolls   int
	restoreStarted map[string]bool
	requests       []Request
	notReady       bool
}

// NewServer starts a fake Weaviate. Call Close when done.
func NewServer() *Server {
	s := &Server{
		classes:        make(map[string]*weaviate.Class),
		objects:        make(map[string][]*weaviate.Object),
		backups:        make(map[string]*Backup),
		restoreStarted: make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetNotReady makes the readiness endpoint fail.
func (s *Server) SetNotReady(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notReady = v
}

// AddClass installs a class directly, bypassing the API.
func (s *Server) AddClass(class *weaviate.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putClass(class)
}

// AddObjects installs objects directly, bypassing the API.
func (s *Server) AddObjects(class string, objs ...*weaviate.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objs {
		cp := *obj
		cp.Class = class
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		s.objects[class] = append(s.objects[class], &cp)
	}
}

// AddBackup registers a backup that restore requests can install.
func (s *Server) AddBackup(id string, b *Backup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backups[id] = b
}

// ScriptRestore sets the statuses returned by successive restore polls. The
// last status repeats. With no script, polls report SUCCESS.
func (s *Server) ScriptRestore(statuses ...weaviate.RestoreStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreScript = statuses
	s.restorePolls = 0
}

// Class returns a copy of a stored class, or nil.
func (s *Server) Class(name string) *weaviate.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[name]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Objects returns the stored objects of a class in insertion order.
func (s *Server) Objects(class string) []*weaviate.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*weaviate.Object, len(s.objects[class]))
	copy(out, s.objects[class])
	return out
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts received requests by method and path prefix.
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) putClass(class *weaviate.Class) {
	cp := *class
	if _, ok := s.classes[cp.Class]; !ok {
		s.order = append(s.order, cp.Class)
	}
	s.classes[cp.Class] = &cp
}

func (s *Server) dropClass(name string) {
	delete(s.classes, name)
	delete(s.objects, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})

	if s.APIKey != "" && r.Header.Get("Authorization") != "Bearer "+s.APIKey {
		writeError(w, http.StatusUnauthorized, "anonymous access not enabled")
		return
	}

	path := r.URL.Path
	switch {
	case path == "/v1/.well-known/ready":
		if s.notReady {
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		w.WriteHeader(http.StatusOK)

	case path == "/v1/meta" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"hostname": "http://[::]:8080",
			"version":  Version,
			"modules":  map[string]any{},
		})

	case path == "/v1/schema" && r.Method == http.MethodGet:
		schema := weaviate.Schema{Classes: []*weaviate.Class{}}
		for _, name := range s.order {
			schema.Classes = append(schema.Classes, s.classes[name])
		}
		writeJSON(w, http.StatusOK, schema)

	case path == "/v1/schema" && r.Method == http.MethodPost:
		s.createClass(w, r)

	case strings.HasPrefix(path, "/v1/schema/"):
		name := strings.TrimPrefix(path, "/v1/schema/")
		switch r.Method {
		case http.MethodGet:
			class, ok := s.classes[name]
			if !ok {
				writeError(w, http.StatusNotFound, "class not found")
				return
			}
			writeJSON(w, http.StatusOK, class)
		case http.MethodDelete:
			if s.FailDeleteClass != nil {
				if status := s.FailDeleteClass(name); status != 0 {
					writeError(w, status, "class deletion rejected")
					return
				}
			}
			if _, ok := s.classes[name]; !ok {
				writeError(w, http.StatusNotFound, "class not found")
				return
			}
			s.dropClass(name)
			w.WriteHeader(http.StatusOK)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case path == "/v1/objects" && r.Method == http.MethodGet:
		s.listObjects(w, r)

	case path == "/v1/objects" && r.Method == http.MethodPost:
		var obj weaviate.Object
		if err := decode(r, &obj); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		stored, status, msg := s.insertObject(&obj)
		if status != http.StatusOK {
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, stored)

	case path == "/v1/batch/objects" && r.Method == http.MethodPost:
		s.batchObjects(w, r)

	case strings.HasPrefix(path, "/v1/backups/") && strings.HasSuffix(path, "/restore"):
		s.restore(w, r)

	default:
		writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+path)
	}
}

func (s *Server) createClass(w http.ResponseWriter, r *http.Request) {
	var class weaviate.Class
	if err := decode(r, &class); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.FailCreateClass != nil {
		if status := s.FailCreateClass(&class); status != 0 {
			writeError(w, status, "class creation rejected")
			return
		}
	}
	if class.Class == "" {
		writeError(w, http.StatusUnprocessableEntity, "class name is required")
		return
	}
	if _, ok := s.classes[class.Class]; ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("class name %q already exists", class.Class))
		return
	}
	s.putClass(&class)
	writeJSON(w, http.StatusOK, class)
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	after := q.Get("after")
	if limit <= 0 {
		limit = 25
	}

	if s.FailList != nil {
		if status := s.FailList(class, offset, after); status != 0 {
			writeError(w, status, "listing failed")
			return
		}
	}
	if _, ok := s.classes[class]; !ok {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}

	all := s.objects[class]
	start := offset
	if after != "" {
		start = len(all)
		for i, obj := range all {
			if obj.ID == after {
				start = i + 1
				break
			}
		}
	}
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	includeVector := q.Get("include") == "vector"
	named := s.classes[class].HasNamedVectors()
	page := make([]*weaviate.Object, 0, end-start)
	for _, obj := range all[start:end] {
		out := &weaviate.Object{ID: obj.ID, Class: obj.Class, Properties: obj.Properties}
		if includeVector {
			if named {
				out.Vectors = obj.Vectors
				if out.Vectors == nil && obj.Vector != nil {
					out.Vectors = map[string][]float32{weaviate.DefaultVectorName: obj.Vector}
				}
			} else {
				out.Vector = obj.Vector
			}
		}
		page = append(page, out)
	}
	writeJSON(w, http.StatusOK, weaviate.ObjectList{Objects: page, TotalResults: len(page)})
}

func (s *Server) insertObject(obj *weaviate.Object) (*weaviate.Object, int, string) {
	class, ok := s.classes[obj.Class]
	if !ok {
		return nil, http.StatusUnprocessableEntity, fmt.Sprintf("class %q not found in schema", obj.Class)
	}
	if s.FailObject != nil && s.FailObject(obj) {
		return nil, http.StatusUnprocessableEntity, "object rejected"
	}
	if class.HasNamedVectors() && len(obj.Vector) > 0 {
		return nil, http.StatusUnprocessableEntity, "collection uses named vectors, use vectors instead of vector"
	}
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	for _, existing := range s.objects[obj.Class] {
		if existing.ID == obj.ID {
			return nil, http.StatusUnprocessableEntity, fmt.Sprintf("id %q already exists", obj.ID)
		}
	}
	cp := *obj
	s.objects[obj.Class] = append(s.objects[obj.Class], &cp)
	return &cp, http.StatusOK, ""
}

func (s *Server) batchObjects(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Objects []*weaviate.Object `json:"objects"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	type errMsg struct {
		Message string `json:"message"`
	}
	type item struct {
		ID     string `json:"id"`
		Result struct {
			Errors *struct {
				Error []errMsg `json:"error"`
			} `json:"errors,omitempty"`
		} `json:"result"`
	}

	out := make([]item, len(req.Objects))
	for i, obj := range req.Objects {
		stored, status, msg := s.insertObject(obj)
		if status != http.StatusOK {
			out[i].ID = obj.ID
			out[i].Result.Errors = &struct {
				Error []errMsg `json:"error"`
			}{Error: []errMsg{{Message: msg}}}
			continue
		}
		out[i].ID = stored.ID
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// v1 backups {backend} {id} restore
	if len(parts) != 5 {
		writeError(w, http.StatusNotFound, "bad restore path")
		return
	}
	backend, id := parts[2], parts[3]
	key := backend + "/" + id

	switch r.Method {
	case http.MethodPost:
		backup, ok := s.backups[id]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("backup %q not found", id))
			return
		}
		for _, c := range backup.Classes {
			if _, exists := s.classes[c.Class]; exists {
				writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("restore class %q: class name already exists", c.Class))
				return
			}
		}
		s.restoreStarted[key] = true
		s.restorePolls = 0
		writeJSON(w, http.StatusOK, weaviate.RestoreStatus{ID: id, Backend: backend, Status: weaviate.RestoreStarted})

	case http.MethodGet:
		if !s.restoreStarted[key] {
			writeError(w, http.StatusNotFound, "no restore in progress")
			return
		}
		status := weaviate.RestoreStatus{ID: id, Backend: backend, Status: weaviate.RestoreSuccess}
		if n := len(s.restoreScript); n > 0 {
			idx := s.restorePolls
			if idx >= n {
				idx = n - 1
			}
			status = s.restoreScript[idx]
			status.ID, status.Backend = id, backend
		}
		s.restorePolls++
		if status.Status == weaviate.RestoreSuccess {
			s.installBackup(id)
		}
		writeJSON(w, http.StatusOK, status)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) installBackup(id string) {
	backup, ok := s.backups[id]
	if !ok {
		return
	}
	for _, c := range backup.Classes {
		if _, exists := s.classes[c.Class]; exists {
			continue
		}
		s.putClass(c)
		for _, obj := range backup.Objects[c.Class] {
			cp := *obj
			cp.Class = c.Class
			s.objects[c.Class] = append(s.objects[c.Class], &cp)
		}
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": []map[string]string{{"message": msg}},
	})
}
