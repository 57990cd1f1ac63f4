package models

// FieldType hints how a form input should be presented.
type FieldType string

const (
	FieldText   FieldType = ""
	FieldNumber FieldType = "number"
)

// Field describes one entry of a screen's schema. The schema's order drives
// both the form layout and the create/update payload shape; the first field
// is the natural key used to address updates and deletes.
type Field struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Type     FieldType `yaml:"type,omitempty" json:"type,omitempty"`
	Readonly bool      `yaml:"readonly,omitempty" json:"readonly,omitempty"`
}

// Row is the display projection of a record in a list.
// Empty parts are not rendered.
type Row struct {
	ID       string
	Title    string
	Subtitle string
	Details  string
	ImageURL string
}
