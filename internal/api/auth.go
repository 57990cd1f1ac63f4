package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"hardwareStoreInventory/models"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

// LoginResponse is the body of a login answer. Usuario is optional.
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario json.RawMessage `json:"usuario,omitempty"`
	Mensaje string          `json:"mensaje,omitempty"`
}

// User decodes the returned user record, if it is an object.
func (r *LoginResponse) User() (models.User, bool) {
	if len(r.Usuario) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(r.Usuario))
	dec.UseNumber()
	var u models.User
	if err := dec.Decode(&u); err != nil || u == nil {
		return nil, false
	}
	return u, true
}

// RegisterRequest is the body of POST /api/registro.
type RegisterRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
	Estado   string `json:"estado"`
}

// Login exchanges credentials for a token. A 2xx answer without a token is
// reported as an *Error carrying the server's message.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/login", req, &resp, false); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: %w", &Error{Status: http.StatusOK, Mensaje: resp.Mensaje})
	}
	return &resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/registro", req, nil, false); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}
