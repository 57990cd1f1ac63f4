package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"hardwareStoreInventory/models"
)

// Account is a login known to the fake API.
type Account struct {
	Password string
	User     models.User
}

// Request is a request seen by the fake API.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

type failure struct {
	method string
	prefix string
	status int
	body   string
}

// FakeAPI is an in-process stand-in for the inventory REST API. It keeps one
// collection per endpoint, addressed by the endpoint's key field.
type FakeAPI struct {
	Server *httptest.Server
	Token  string

	mu          sync.Mutex
	collections map[string][]models.Record
	keyFields   map[string]string
	raw         map[string]string
	accounts    map[string]Account
	failures    []failure
	requests    []Request
}

// NewFakeAPI starts a fake API that accepts token on authenticated routes.
// The server is closed when the test ends.
func NewFakeAPI(t *testing.T, token string) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		Token:       token,
		collections: map[string][]models.Record{},
		keyFields:   map[string]string{},
		raw:         map[string]string{},
		accounts:    map[string]Account{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the server's base URL.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Seed replaces the records of an endpoint; keyField addresses updates and deletes.
func (f *FakeAPI) Seed(endpoint, keyField string, records ...models.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyFields[endpoint] = keyField
	f.collections[endpoint] = append([]models.Record(nil), records...)
	delete(f.raw, endpoint)
}

// SetRawList makes GET /api/{endpoint} answer with body verbatim.
func (f *FakeAPI) SetRawList(endpoint, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw[endpoint] = body
}

// AddAccount registers a login.
func (f *FakeAPI) AddAccount(usuario string, acc Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[usuario] = acc
}

// FailNext makes the next request whose method matches and whose path starts
// with prefix answer with status and body.
func (f *FakeAPI) FailNext(method, prefix string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failure{method: method, prefix: prefix, status: status, body: body})
}

// Records returns a copy of an endpoint's collection.
func (f *FakeAPI) Records(endpoint string) []models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Record(nil), f.collections[endpoint]...)
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Count returns how many requests matched method and path exactly.
func (f *FakeAPI) Count(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		_ = dec.Decode(&body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})

	for i, fl := range f.failures {
		if fl.method == r.Method && strings.HasPrefix(r.URL.Path, fl.prefix) {
			f.failures = append(f.failures[:i], f.failures[i+1:]...)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fl.status)
			_, _ = io.WriteString(w, fl.body)
			return
		}
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/")
	switch {
	case r.Method == http.MethodPost && path == "login":
		f.login(w, body)
		return
	case r.Method == http.MethodPost && path == "registro":
		f.register(w, body)
		return
	}

	if r.Header.Get("Autorizacion") != "Back "+f.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "No autorizado"})
		return
	}

	name, key := path, ""
	if i := strings.Index(path, "/"); i >= 0 {
		name, key = path[:i], path[i+1:]
		if k, err := url.PathUnescape(key); err == nil {
			key = k
		}
	}

	switch {
	case r.Method == http.MethodGet && key == "":
		if rawList, ok := f.raw[name]; ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, rawList)
			return
		}
		list := f.collections[name]
		if list == nil {
			list = []models.Record{}
		}
		writeJSON(w, http.StatusOK, list)
	case r.Method == http.MethodPost && strings.HasPrefix(name, "insercion_"):
		ep := strings.TrimPrefix(name, "insercion_")
		f.collections[ep] = append(f.collections[ep], models.Record(body))
		writeJSON(w, http.StatusCreated, map[string]any{"mensaje": "creado"})
	case r.Method == http.MethodPut && strings.HasPrefix(name, "actualizar_"):
		ep := strings.TrimPrefix(name, "actualizar_")
		i := f.find(ep, key, false)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Registro no encontrado"})
			return
		}
		f.collections[ep][i] = models.Record(body)
		writeJSON(w, http.StatusOK, map[string]any{"mensaje": "actualizado"})
	case r.Method == http.MethodDelete && strings.HasPrefix(name, "eliminar_"):
		ep := strings.TrimPrefix(name, "eliminar_")
		i := f.find(ep, key, true)
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Registro no encontrado"})
			return
		}
		f.collections[ep] = append(f.collections[ep][:i], f.collections[ep][i+1:]...)
		writeJSON(w, http.StatusOK, map[string]any{"mensaje": "eliminado"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Ruta no encontrada"})
	}
}

func (f *FakeAPI) find(endpoint, key string, loose bool) int {
	kf := f.keyFields[endpoint]
	for i, rec := range f.collections[endpoint] {
		if kf != "" && rec.String(kf) == key {
			return i
		}
		if loose && (rec.String("nombre") == key || rec.String("usuario") == key) {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) login(w http.ResponseWriter, body map[string]any) {
	usuario := models.FormatValue(body["usuario"])
	acc, ok := f.accounts[usuario]
	if !ok || acc.Password != models.FormatValue(body["password"]) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"mensaje": "Usuario o contraseña incorrectos"})
		return
	}
	resp := map[string]any{"token": f.Token}
	if acc.User != nil {
		resp["usuario"] = acc.User
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeAPI) register(w http.ResponseWriter, body map[string]any) {
	usuario := models.FormatValue(body["usuario"])
	if _, exists := f.accounts[usuario]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"mensaje": "El usuario ya existe"})
		return
	}
	f.accounts[usuario] = Account{
		Password: models.FormatValue(body["password"]),
		User:     models.User{"usuario": usuario, "rol": body["rol"], "estado": body["estado"]},
	}
	writeJSON(w, http.StatusCreated, map[string]any{"mensaje": "registrado"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
