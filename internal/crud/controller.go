// Package crud implements the generic entity screen: a list of records
// loaded from an endpoint family plus a create/edit form, both driven by a
// screen's field schema.
package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/internal/media"
	"hardwareStoreInventory/internal/screens"
	"hardwareStoreInventory/models"
)

// Alert texts.
const (
	TitleSuccess = "Éxito"
	TitleError   = "Error"
	TitleConfirm = "Confirmar"

	MsgSaved        = "Operación realizada correctamente"
	MsgServerError  = "Error en el servidor"
	MsgDeleteFailed = "No se pudo eliminar"
)

var (
	// ErrForbidden is returned for mutations attempted by a non-administrator.
	ErrForbidden = errors.New("only administrators can modify records")
	// ErrBusy is returned by Save while another request is in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrEditorClosed is returned when the form is used without being opened.
	ErrEditorClosed = errors.New("no record is being edited")
	// ErrUnknownField is returned by SetField for keys outside the schema.
	ErrUnknownField = errors.New("field is not part of the schema")
	// ErrNoKey is returned by Delete when the record has no usable key.
	ErrNoKey = errors.New("record has no key to address it by")
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	List(ctx context.Context, ep api.Endpoint) ([]models.Record, error)
	Create(ctx context.Context, ep api.Endpoint, payload models.Record) error
	Update(ctx context.Context, ep api.Endpoint, key string, payload models.Record) error
	Delete(ctx context.Context, ep api.Endpoint, key string) error
}

// Notifier shows a blocking alert to the user.
type Notifier interface {
	Notify(title, message string)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Options configures a Controller.
type Options struct {
	Admin     bool // role gate for create, edit and delete
	Images    media.Resolver
	Notifier  Notifier
	Confirmer Confirmer
	Logger    *zap.Logger
}

// FormField is one input of the edit form.
type FormField struct {
	models.Field
	Value string
}

// Controller holds the state of one entity screen. Network calls run without
// the lock held; state changes are applied when they return.
type Controller struct {
	screen  *screens.Screen
	backend Backend
	opts    Options
	log     *zap.Logger

	mu         sync.Mutex
	records    []models.Record
	form       models.Record
	current    models.Record
	editorOpen bool
	inFlight   int
}

// New returns a controller for screen. It starts with an empty list; call Load.
func New(screen *screens.Screen, backend Backend, opts Options) *Controller {
	if screen == nil || len(screen.Fields) == 0 {
		panic("crud: screen with at least one field is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{opts.Logger}
	}
	if opts.Confirmer == nil {
		opts.Confirmer = Deny{}
	}
	return &Controller{
		screen:  screen,
		backend: backend,
		opts:    opts,
		log:     opts.Logger.With(zap.String("screen", screen.Route)),
		records: []models.Record{},
	}
}

// Screen returns the screen the controller was configured with.
func (c *Controller) Screen() *screens.Screen { return c.screen }

// CanMutate reports whether create, edit and delete are offered.
func (c *Controller) CanMutate() bool { return c.opts.Admin }

// Loading reports whether a request is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Records returns a copy of the current list.
func (c *Controller) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Record(nil), c.records...)
}

// Rows returns the display rows of the current list.
func (c *Controller) Rows() []models.Row {
	recs := c.Records()
	rows := make([]models.Row, len(recs))
	for i, r := range recs {
		rows[i] = c.screen.MapRow(r, i, c.opts.Images)
	}
	return rows
}

// Find returns the first record whose key field formats as key.
func (c *Controller) Find(key string) (models.Record, bool) {
	kf := c.screen.KeyField().Key
	for _, r := range c.Records() {
		if r.String(kf) == key {
			return r, true
		}
	}
	return nil, false
}

// Load fetches the collection and replaces the list. Failures are logged and
// leave the previous list in place; no alert is raised. The error is returned
// for callers that need an exit status.
func (c *Controller) Load(ctx context.Context) error {
	c.begin()
	defer c.end()
	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	recs, err := c.backend.List(ctx, c.screen.Endpoint)
	if err != nil {
		c.log.Error("load failed", zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.records = recs
	c.mu.Unlock()
	c.log.Debug("loaded", zap.Int("records", len(recs)))
	return nil
}

// OpenCreate opens the form with every schema field empty and no current record.
func (c *Controller) OpenCreate() error {
	if !c.opts.Admin {
		return ErrForbidden
	}
	form := make(models.Record, len(c.screen.Fields))
	for _, f := range c.screen.Fields {
		form[f.Key] = ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current, c.form, c.editorOpen = nil, form, true
	return nil
}

// OpenEdit opens the form seeded with rec's own fields, targeting rec.
func (c *Controller) OpenEdit(rec models.Record) error {
	if !c.opts.Admin {
		return ErrForbidden
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current, c.form, c.editorOpen = rec, rec.Clone(), true
	return nil
}

// Close dismisses the form without saving.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editorOpen = false
}

// Editing returns the record being edited (nil when creating) and whether the
// form is open.
func (c *Controller) Editing() (models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.editorOpen
}

// EditorTitle is the heading of the form.
func (c *Controller) EditorTitle() string {
	if cur, _ := c.Editing(); cur != nil {
		return "Editar " + c.screen.Title
	}
	return "Nuevo " + c.screen.Title
}

// Form returns a copy of the form values.
func (c *Controller) Form() models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// FormFields returns the schema fields with their current form values.
func (c *Controller) FormFields() []FormField {
	form := c.Form()
	out := make([]FormField, len(c.screen.Fields))
	for i, f := range c.screen.Fields {
		out[i] = FormField{Field: f, Value: form.String(f.Key)}
	}
	return out
}

// SetField changes one form value. Readonly fields silently keep their value.
func (c *Controller) SetField(key, value string) error {
	f, ok := c.screen.Field(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editorOpen {
		return ErrEditorClosed
	}
	if f.Readonly {
		return nil
	}
	c.form[key] = value
	return nil
}

// Save sends the form: an update addressed by the current record's key when
// editing, a create otherwise. On success the form closes and the list
// reloads; on failure an alert is raised and the form stays open.
func (c *Controller) Save(ctx context.Context) error {
	if !c.opts.Admin {
		return ErrForbidden
	}
	c.mu.Lock()
	if !c.editorOpen {
		c.mu.Unlock()
		return ErrEditorClosed
	}
	if c.inFlight > 0 {
		c.mu.Unlock()
		return ErrBusy
	}
	c.inFlight++
	form, current := c.form.Clone(), c.current
	c.mu.Unlock()
	defer c.end()

	var err error
	if current != nil {
		key := current.String(c.screen.KeyField().Key)
		err = c.backend.Update(ctx, c.screen.Endpoint, key, form)
	} else {
		err = c.backend.Create(ctx, c.screen.Endpoint, form)
	}
	if err != nil {
		c.log.Warn("save failed", zap.Bool("update", current != nil), zap.Error(err))
		c.opts.Notifier.Notify(TitleError, saveMessage(err))
		return err
	}

	c.opts.Notifier.Notify(TitleSuccess, MsgSaved)
	c.Close()
	_ = c.load(ctx)
	return nil
}

// Delete asks for confirmation and removes rec. It reports whether the user
// confirmed. The row stays in the list until the reload after a successful
// delete.
func (c *Controller) Delete(ctx context.Context, rec models.Record) (bool, error) {
	if !c.opts.Admin {
		return false, ErrForbidden
	}
	label := rec.String(c.screen.KeyField().Key)
	if !c.opts.Confirmer.Confirm(TitleConfirm, fmt.Sprintf("¿Eliminar %s?", label)) {
		return false, nil
	}
	key, ok := c.deleteKey(rec)
	if !ok {
		c.opts.Notifier.Notify(TitleError, MsgDeleteFailed)
		return true, ErrNoKey
	}
	if err := c.backend.Delete(ctx, c.screen.Endpoint, key); err != nil {
		c.log.Warn("delete failed", zap.String("key", key), zap.Error(err))
		c.opts.Notifier.Notify(TitleError, MsgDeleteFailed)
		return true, err
	}
	_ = c.Load(ctx)
	return true, nil
}

// deleteKey picks the value that addresses rec: the key field, then nombre,
// then usuario. Some records come back without their key field populated.
func (c *Controller) deleteKey(rec models.Record) (string, bool) {
	for _, k := range []string{c.screen.KeyField().Key, "nombre", "usuario"} {
		if rec.Truthy(k) {
			return rec.String(k), true
		}
	}
	return "", false
}

func (c *Controller) begin() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

// saveMessage is the server's "error" text, the generic server error for other
// HTTP failures, or the transport error itself.
func saveMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgServerError
	}
	for next := errors.Unwrap(err); next != nil; next = errors.Unwrap(err) {
		err = next
	}
	return err.Error()
}
