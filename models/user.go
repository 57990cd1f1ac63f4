package models

// User is the record the API returns for the logged-in account. The server
// decides its shape; the client only relies on usuario, nombre and rol.
type User Record

// Username returns the account's login name.
func (u User) Username() string { return Record(u).String("usuario") }

// DisplayName returns nombre, falling back to usuario.
func (u User) DisplayName() string {
	if Record(u).Truthy("nombre") {
		return Record(u).String("nombre")
	}
	return u.Username()
}

// Role returns the user's role flag.
func (u User) Role() Role { return ParseRole(u["rol"]) }

// IsAdmin reports whether the user carries the administrator role.
func (u User) IsAdmin() bool { return u.Role().IsAdmin() }

// FallbackUser is used when a login response carries a token but no user
// record: a standard user named after the login.
func FallbackUser(usuario string) User {
	return User{"nombre": usuario, "rol": "2"}
}
