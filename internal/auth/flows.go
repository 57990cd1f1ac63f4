package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/models"
)

// Messages shown to the user by the login and registration flows.
const (
	MsgMissingCredentials = "Porfavor Ingrese los campos"
	MsgBadCredentials     = "Credenciales incorrectas"
	MsgLoginUnreachable   = "No se pudo conectar al servidor: "
	MsgMissingFields      = "Todos los campos son obligatorios"
	MsgRegistered         = "Usuario registrado correctamente"
	MsgRegisterFailed     = "No se pudo registrar"
	MsgRegisterConnection = "Error de conexión al registrar"
)

// FlowError is a failure meant to be shown to the user as-is.
type FlowError struct {
	Message string
	Err     error
}

func (e *FlowError) Error() string { return e.Message }
func (e *FlowError) Unwrap() error { return e.Err }

// Authenticator runs the login and registration flows against the API and
// records a successful login in the authentication context.
type Authenticator struct {
	client  *api.Client
	session *Context
	log     *zap.Logger
}

func NewAuthenticator(client *api.Client, session *Context, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{client: client, session: session, log: log}
}

// Login checks the credentials are present, asks the API for a token and
// stores the session. When the API returns no user record the session user
// is a standard user named after the login.
func (a *Authenticator) Login(ctx context.Context, usuario, password string) (models.User, error) {
	if usuario == "" || password == "" {
		return nil, &FlowError{Message: MsgMissingCredentials}
	}
	resp, err := a.client.Login(ctx, api.LoginRequest{Usuario: usuario, Password: password})
	if err != nil {
		a.log.Debug("login failed", zap.String("usuario", usuario), zap.Error(err))
		return nil, &FlowError{Message: loginMessage(err), Err: err}
	}
	user, ok := resp.User()
	if !ok {
		user = models.FallbackUser(usuario)
	}
	if err := a.session.Login(ctx, user, resp.Token); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates an account. New accounts are always active.
func (a *Authenticator) Register(ctx context.Context, usuario, password, rol string) error {
	if usuario == "" || password == "" || strings.TrimSpace(rol) == "" {
		return &FlowError{Message: MsgMissingFields}
	}
	err := a.client.Register(ctx, api.RegisterRequest{Usuario: usuario, Password: password, Rol: rol, Estado: "1"})
	if err == nil {
		return nil
	}
	a.log.Debug("register failed", zap.String("usuario", usuario), zap.Error(err))
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.BodyErr != nil {
		return &FlowError{Message: MsgRegisterConnection, Err: err}
	}
	if apiErr.Mensaje != "" {
		return &FlowError{Message: apiErr.Mensaje, Err: err}
	}
	return &FlowError{Message: MsgRegisterFailed, Err: err}
}

// Logout ends the session.
func (a *Authenticator) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

// loginMessage picks the alert text for a failed login: the server's
// "mensaje", a generic credentials error, or the connection failure. An
// error answer that is not JSON counts as a connection failure.
func loginMessage(err error) string {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return MsgLoginUnreachable + rootCause(err).Error()
	}
	if apiErr.BodyErr != nil {
		return MsgLoginUnreachable + apiErr.BodyErr.Error()
	}
	if apiErr.Mensaje != "" {
		return apiErr.Mensaje
	}
	return MsgBadCredentials
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
