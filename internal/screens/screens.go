// Package screens holds the declarative entity screens: which endpoint each
// one talks to, its field schema and how a record becomes a list row.
package screens

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/internal/media"
	"hardwareStoreInventory/models"
)

//go:embed screens.yaml
var builtin []byte

// Screen is one configured instance of the generic entity screen.
type Screen struct {
	Route     string         `yaml:"route"`
	Endpoint  api.Endpoint   `yaml:"endpoint"`
	Title     string         `yaml:"title"`
	AdminOnly bool           `yaml:"admin_only"`
	IDField   string         `yaml:"id_field"`
	Fields    []models.Field `yaml:"fields"`
	Row       RowSpec        `yaml:"row"`

	title, subtitle, details *template.Template
}

// RowSpec maps a record to a list row. Title, Subtitle and Details are
// text/template strings over the record's values; Image names the field that
// holds the image reference.
type RowSpec struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Details  string `yaml:"details"`
	Image    string `yaml:"image"`
}

type file struct {
	Screens []*Screen `yaml:"screens"`
}

// funcs are placeholders so templates parse; MapRow rebinds them to the
// record being mapped.
var funcs = template.FuncMap{
	"role": func(string) string { return "" },
}

// Builtin returns the four shipped screens: materials, suppliers, sellers and users.
func Builtin() ([]*Screen, error) {
	return Parse(builtin)
}

// Parse decodes and validates screen definitions.
func Parse(data []byte) ([]*Screen, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode screens")
	}
	seen := map[string]bool{}
	for i, s := range f.Screens {
		if err := s.compile(); err != nil {
			return nil, errors.Wrapf(err, "screen %d (%s)", i, s.Route)
		}
		key := strings.ToLower(s.Route)
		if seen[key] {
			return nil, fmt.Errorf("duplicate screen route %q", s.Route)
		}
		seen[key] = true
	}
	return f.Screens, nil
}

func (s *Screen) compile() error {
	if s.Route == "" || s.Endpoint == "" {
		return fmt.Errorf("route and endpoint are required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	keys := map[string]bool{}
	for _, f := range s.Fields {
		if f.Key == "" {
			return fmt.Errorf("field without key")
		}
		if keys[f.Key] {
			return fmt.Errorf("duplicate field %q", f.Key)
		}
		keys[f.Key] = true
		if f.Type != models.FieldText && f.Type != models.FieldNumber {
			return fmt.Errorf("field %q: unknown type %q", f.Key, f.Type)
		}
	}
	if s.IDField == "" {
		s.IDField = "_id"
	}
	if s.Title == "" {
		s.Title = s.Route
	}
	var err error
	if s.title, err = parseTemplate("title", s.Row.Title); err != nil {
		return err
	}
	if s.subtitle, err = parseTemplate("subtitle", s.Row.Subtitle); err != nil {
		return err
	}
	s.details, err = parseTemplate("details", s.Row.Details)
	return err
}

func parseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "row %s", name)
	}
	return t, nil
}

// KeyField is the schema's first field, the record's natural key.
func (s *Screen) KeyField() models.Field { return s.Fields[0] }

// Field looks a schema field up by key.
func (s *Screen) Field(key string) (models.Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return models.Field{}, false
}

// MapRow projects a record onto its display row. index is the record's
// position in the list and identifies it when the record has no ID field.
func (s *Screen) MapRow(rec models.Record, index int, images media.Resolver) models.Row {
	vals := rec.Strings()
	bound := template.FuncMap{
		// role labels the raw field value: only the number 1 is Admin.
		"role": func(key string) string {
			if models.IsNumericAdmin(rec[key]) {
				return models.RoleAdmin.String()
			}
			return models.RoleUser.String()
		},
	}
	row := models.Row{
		ID:       vals[s.IDField],
		Title:    execute(s.title, vals, bound),
		Subtitle: execute(s.subtitle, vals, bound),
		Details:  execute(s.details, vals, bound),
	}
	if row.ID == "" {
		row.ID = strconv.Itoa(index)
	}
	if s.Row.Image != "" {
		row.ImageURL, _ = images.Resolve(vals[s.Row.Image])
	}
	return row
}

func execute(t *template.Template, vals map[string]string, bound template.FuncMap) string {
	if t == nil {
		return ""
	}
	t, err := t.Clone()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := t.Funcs(bound).Execute(&buf, vals); err != nil {
		return ""
	}
	return buf.String()
}

// Find returns the screen whose route or endpoint matches name, ignoring case.
func Find(all []*Screen, name string) (*Screen, bool) {
	for _, s := range all {
		if strings.EqualFold(s.Route, name) || strings.EqualFold(string(s.Endpoint), name) {
			return s, true
		}
	}
	return nil, false
}
