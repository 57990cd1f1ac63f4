// Package nav decides which routes exist for the current session: the login
// pair while logged out, the home, menu and entity screens while logged in.
package nav

import (
	"errors"
	"fmt"
	"strings"

	"hardwareStoreInventory/internal/auth"
	"hardwareStoreInventory/internal/screens"
)

const (
	AppName = "Ferretería El Tornillo Feliz"

	RouteLogin    = "Login"
	RouteRegister = "Register"
	RouteHome     = "Inicio"
	RouteMenu     = "Menu"
)

// ErrRouteUnavailable is returned when a route is not part of the current stack.
var ErrRouteUnavailable = errors.New("route not available")

// Destination is an opened route. Screen is set for entity screens only.
type Destination struct {
	Route  string
	Title  string
	Screen *screens.Screen
}

// Shell maps authentication state to route stacks.
type Shell struct {
	screens []*screens.Screen
}

func NewShell(all []*screens.Screen) *Shell {
	return &Shell{screens: all}
}

// Routes lists the routes of the stack matching st, in display order.
// While the session is being restored there are none.
func (s *Shell) Routes(st auth.State) []string {
	switch {
	case st.Restoring:
		return nil
	case !st.Authenticated():
		return []string{RouteLogin, RouteRegister}
	}
	routes := []string{RouteHome, RouteMenu}
	for _, sc := range s.visible(st) {
		routes = append(routes, sc.Route)
	}
	return routes
}

// Initial is the first route of the stack, or "" while restoring.
func (s *Shell) Initial(st auth.State) string {
	if r := s.Routes(st); len(r) > 0 {
		return r[0]
	}
	return ""
}

// Menu lists the menu entries: home followed by every visible entity screen.
func (s *Shell) Menu(st auth.State) []string {
	if !st.Authenticated() || st.Restoring {
		return nil
	}
	entries := []string{RouteHome}
	for _, sc := range s.visible(st) {
		entries = append(entries, sc.Route)
	}
	return entries
}

// Open resolves route, matched case-insensitively, against the current stack.
func (s *Shell) Open(st auth.State, route string) (Destination, error) {
	for _, r := range s.Routes(st) {
		if !strings.EqualFold(r, route) {
			continue
		}
		d := Destination{Route: r, Title: r}
		switch r {
		case RouteHome:
			d.Title = AppName
		case RouteLogin, RouteRegister, RouteMenu:
		default:
			d.Screen, _ = screens.Find(s.screens, r)
			d.Title = d.Screen.Title
		}
		return d, nil
	}
	return Destination{}, fmt.Errorf("%w: %s", ErrRouteUnavailable, route)
}

// Greeting is the home screen's welcome line for the logged-in user.
func Greeting(st auth.State) string {
	if !st.Authenticated() {
		return ""
	}
	return "¡Bienvenido! " + st.User.DisplayName()
}

func (s *Shell) visible(st auth.State) []*screens.Screen {
	var out []*screens.Screen
	for _, sc := range s.screens {
		if sc.AdminOnly && !st.IsAdmin() {
			continue
		}
		out = append(out, sc)
	}
	return out
}
