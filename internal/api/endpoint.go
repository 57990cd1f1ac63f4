package api

import "net/url"

// Endpoint names an entity's endpoint family. One name yields the four
// conventional routes: list, insert, update and delete.
type Endpoint string

func (e Endpoint) ListPath() string   { return "/api/" + string(e) }
func (e Endpoint) CreatePath() string { return "/api/insercion_" + string(e) }

func (e Endpoint) UpdatePath(key string) string {
	return "/api/actualizar_" + string(e) + "/" + url.PathEscape(key)
}

func (e Endpoint) DeletePath(key string) string {
	return "/api/eliminar_" + string(e) + "/" + url.PathEscape(key)
}
