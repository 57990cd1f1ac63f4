package crud

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/internal/media"
	"hardwareStoreInventory/internal/screens"
	"hardwareStoreInventory/internal/testutil"
	"hardwareStoreInventory/models"
)

type alert struct{ title, message string }

type recorder struct {
	mu     sync.Mutex
	alerts []alert
}

func (r *recorder) Notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert{title, message})
}

func (r *recorder) last(t *testing.T) alert {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.alerts)
	return r.alerts[len(r.alerts)-1]
}

type confirmer struct {
	answer   bool
	messages []string
}

func (c *confirmer) Confirm(_, message string) bool {
	c.messages = append(c.messages, message)
	return c.answer
}

func screen(t *testing.T, name string) *screens.Screen {
	t.Helper()
	all, err := screens.Builtin()
	require.NoError(t, err)
	s, ok := screens.Find(all, name)
	require.True(t, ok)
	return s
}

type fixture struct {
	ctl    *Controller
	fake   *testutil.FakeAPI
	alerts *recorder
	conf   *confirmer
}

func newFixture(t *testing.T, name string, admin bool) *fixture {
	t.Helper()
	fake := testutil.NewFakeAPI(t, "tok")
	client := api.NewClient(&api.ClientConfig{BaseURL: fake.URL(), Token: "tok"})
	f := &fixture{fake: fake, alerts: &recorder{}, conf: &confirmer{answer: true}}
	f.ctl = New(screen(t, name), client, Options{
		Admin:     admin,
		Images:    media.NewResolver("https://files.test/uploads"),
		Notifier:  f.alerts,
		Confirmer: f.conf,
	})
	return f
}

func material(name string, price int) models.Record {
	return models.Record{"_id": "m-" + name, "NombreMaterial": name, "estilo": "Mate", "precio": price, "inventario": 5, "id": "foto.png"}
}

func TestController_Load(t *testing.T) {
	f := newFixture(t, "Materiales", false)
	f.fake.Seed("Materiales", "NombreMaterial", material("Pintura", 120), material("Brocha", 35))
	ctx := context.Background()

	require.NoError(t, f.ctl.Load(ctx))
	rows := f.ctl.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, models.Row{
		ID:       "m-Pintura",
		Title:    "Pintura",
		Subtitle: "Estilo: Mate",
		Details:  "$120 | Stock: 5",
		ImageURL: "https://files.test/uploads/foto.png",
	}, rows[0])
	assert.False(t, f.ctl.Loading())

	t.Run("failure keeps list", func(t *testing.T) {
		f.fake.FailNext(http.MethodGet, "/api/Materiales", http.StatusInternalServerError, `{"error":"caido"}`)
		err := f.ctl.Load(ctx)
		require.Error(t, err)
		assert.Len(t, f.ctl.Records(), 2)
		assert.Empty(t, f.alerts.alerts)
	})

	t.Run("non-array body empties list", func(t *testing.T) {
		f.fake.SetRawList("Materiales", `{"mensaje":"sin datos"}`)
		require.NoError(t, f.ctl.Load(ctx))
		assert.Empty(t, f.ctl.Records())
	})
}

func TestController_NonAdminCannotMutate(t *testing.T) {
	f := newFixture(t, "Proveedores", false)
	f.fake.Seed("Proveedores", "nombre", models.Record{"nombre": "Acme"})
	ctx := context.Background()
	require.NoError(t, f.ctl.Load(ctx))

	assert.False(t, f.ctl.CanMutate())
	assert.ErrorIs(t, f.ctl.OpenCreate(), ErrForbidden)
	assert.ErrorIs(t, f.ctl.OpenEdit(f.ctl.Records()[0]), ErrForbidden)
	assert.ErrorIs(t, f.ctl.Save(ctx), ErrForbidden)
	confirmed, err := f.ctl.Delete(ctx, f.ctl.Records()[0])
	assert.False(t, confirmed)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.conf.messages)
	assert.Equal(t, 0, f.fake.Count(http.MethodDelete, "/api/eliminar_Proveedores/Acme"))
}

func TestController_Create(t *testing.T) {
	f := newFixture(t, "Proveedores", true)
	ctx := context.Background()

	require.NoError(t, f.ctl.OpenCreate())
	assert.Equal(t, "Nuevo Proveedores", f.ctl.EditorTitle())
	assert.Equal(t, models.Record{"nombre": "", "telefono": "", "email": ""}, f.ctl.Form())

	require.NoError(t, f.ctl.SetField("nombre", "Acme"))
	require.NoError(t, f.ctl.SetField("email", "ventas@acme.test"))
	assert.ErrorIs(t, f.ctl.SetField("fax", "1"), ErrUnknownField)

	require.NoError(t, f.ctl.Save(ctx))
	assert.Equal(t, alert{TitleSuccess, MsgSaved}, f.alerts.last(t))
	_, open := f.ctl.Editing()
	assert.False(t, open)

	reqs := f.fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/insercion_Proveedores", reqs[0].Path)
	assert.Equal(t, map[string]any{"nombre": "Acme", "telefono": "", "email": "ventas@acme.test"}, reqs[0].Body)
	assert.Equal(t, http.MethodGet, reqs[1].Method)
	require.Len(t, f.ctl.Records(), 1)
}

func TestController_Edit(t *testing.T) {
	f := newFixture(t, "Materiales", true)
	f.fake.Seed("Materiales", "NombreMaterial", material("Pintura", 120))
	ctx := context.Background()
	require.NoError(t, f.ctl.Load(ctx))

	rec, ok := f.ctl.Find("Pintura")
	require.True(t, ok)
	require.NoError(t, f.ctl.OpenEdit(rec))
	assert.Equal(t, "Editar Gestión de Materiales", f.ctl.EditorTitle())

	// the form carries every field of the record, not just the schema
	assert.Equal(t, rec, f.ctl.Form())
	editing, open := f.ctl.Editing()
	assert.True(t, open)
	assert.Equal(t, rec, editing)

	require.NoError(t, f.ctl.SetField("precio", "150"))
	assert.Equal(t, "120", rec.String("precio"))
	require.NoError(t, f.ctl.Save(ctx))

	assert.Equal(t, 1, f.fake.Count(http.MethodPut, "/api/actualizar_Materiales/Pintura"))
	got := f.fake.Records("Materiales")
	require.Len(t, got, 1)
	assert.Equal(t, "150", got[0].String("precio"))
	assert.Equal(t, "m-Pintura", got[0].String("_id"))
	assert.Equal(t, "150", f.ctl.Records()[0].String("precio"))
}

func TestController_EditKeyChangeAddressesOldKey(t *testing.T) {
	f := newFixture(t, "Vendedores", true)
	f.fake.Seed("Vendedores", "nombre", models.Record{"nombre": "Luis", "email": "l@x.test"})
	ctx := context.Background()
	require.NoError(t, f.ctl.Load(ctx))

	require.NoError(t, f.ctl.OpenEdit(f.ctl.Records()[0]))
	require.NoError(t, f.ctl.SetField("nombre", "Luisa"))
	require.NoError(t, f.ctl.Save(ctx))

	assert.Equal(t, 1, f.fake.Count(http.MethodPut, "/api/actualizar_Vendedores/Luis"))
	assert.Equal(t, "Luisa", f.fake.Records("Vendedores")[0].String("nombre"))
}

func TestController_ReadonlyField(t *testing.T) {
	s := screen(t, "Proveedores")
	s.Fields[2].Readonly = true
	ctl := New(s, nil, Options{Admin: true})
	require.NoError(t, ctl.OpenCreate())
	require.NoError(t, ctl.SetField("email", "x@y.test"))
	assert.Equal(t, "", ctl.Form().String("email"))
}

func TestController_SaveFailure(t *testing.T) {
	f := newFixture(t, "Proveedores", true)
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error text", http.StatusBadRequest, `{"error":"Nombre duplicado"}`, "Nombre duplicado"},
		{"no error text", http.StatusInternalServerError, `{"mensaje":"fallo"}`, MsgServerError},
		{"no body", http.StatusBadGateway, ``, MsgServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.ctl.OpenCreate())
			require.NoError(t, f.ctl.SetField("nombre", "Acme"))
			f.fake.FailNext(http.MethodPost, "/api/insercion_Proveedores", tt.status, tt.body)

			require.Error(t, f.ctl.Save(ctx))
			assert.Equal(t, alert{TitleError, tt.want}, f.alerts.last(t))
			_, open := f.ctl.Editing()
			assert.True(t, open)
			assert.Equal(t, "Acme", f.ctl.Form().String("nombre"))
		})
	}

	t.Run("transport", func(t *testing.T) {
		f.fake.Server.Close()
		require.NoError(t, f.ctl.OpenCreate())
		require.Error(t, f.ctl.Save(ctx))
		a := f.alerts.last(t)
		assert.Equal(t, TitleError, a.title)
		assert.NotEmpty(t, a.message)
		assert.NotEqual(t, MsgServerError, a.message)
	})
}

func TestController_SaveRequiresOpenForm(t *testing.T) {
	f := newFixture(t, "Proveedores", true)
	assert.ErrorIs(t, f.ctl.Save(context.Background()), ErrEditorClosed)
	assert.ErrorIs(t, f.ctl.SetField("nombre", "x"), ErrEditorClosed)
}

type blockingBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) List(context.Context, api.Endpoint) ([]models.Record, error) {
	return nil, nil
}

func (b *blockingBackend) Create(context.Context, api.Endpoint, models.Record) error {
	close(b.started)
	<-b.release
	return nil
}

func (b *blockingBackend) Update(context.Context, api.Endpoint, string, models.Record) error {
	return nil
}

func (b *blockingBackend) Delete(context.Context, api.Endpoint, string) error { return nil }

func TestController_SaveWhileBusy(t *testing.T) {
	b := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	ctl := New(screen(t, "Proveedores"), b, Options{Admin: true})
	ctx := context.Background()
	require.NoError(t, ctl.OpenCreate())

	done := make(chan error, 1)
	go func() { done <- ctl.Save(ctx) }()
	<-b.started

	assert.True(t, ctl.Loading())
	assert.ErrorIs(t, ctl.Save(ctx), ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.False(t, ctl.Loading())
}

func TestController_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t, "Materiales", true)
		f.fake.Seed("Materiales", "NombreMaterial", material("Pintura", 1), material("Brocha", 2))
		require.NoError(t, f.ctl.Load(ctx))

		rec, _ := f.ctl.Find("Brocha")
		confirmed, err := f.ctl.Delete(ctx, rec)
		require.NoError(t, err)
		assert.True(t, confirmed)
		assert.Equal(t, []string{"¿Eliminar Brocha?"}, f.conf.messages)
		assert.Equal(t, 1, f.fake.Count(http.MethodDelete, "/api/eliminar_Materiales/Brocha"))
		require.Len(t, f.ctl.Records(), 1)
		assert.Equal(t, "Pintura", f.ctl.Records()[0].String("NombreMaterial"))
	})

	t.Run("declined", func(t *testing.T) {
		f := newFixture(t, "Materiales", true)
		f.conf.answer = false
		f.fake.Seed("Materiales", "NombreMaterial", material("Pintura", 1))
		require.NoError(t, f.ctl.Load(ctx))

		confirmed, err := f.ctl.Delete(ctx, f.ctl.Records()[0])
		require.NoError(t, err)
		assert.False(t, confirmed)
		assert.Len(t, f.fake.Requests(), 1)
	})

	t.Run("falls back to nombre", func(t *testing.T) {
		f := newFixture(t, "Materiales", true)
		f.fake.Seed("Materiales", "NombreMaterial", models.Record{"nombre": "Clavo"})
		require.NoError(t, f.ctl.Load(ctx))

		_, err := f.ctl.Delete(ctx, f.ctl.Records()[0])
		require.NoError(t, err)
		assert.Equal(t, 1, f.fake.Count(http.MethodDelete, "/api/eliminar_Materiales/Clavo"))
	})

	t.Run("falls back to usuario", func(t *testing.T) {
		f := newFixture(t, "Proveedores", true)
		f.fake.Seed("Proveedores", "nombre", models.Record{"nombre": "", "usuario": "pepe"})
		require.NoError(t, f.ctl.Load(ctx))

		_, err := f.ctl.Delete(ctx, f.ctl.Records()[0])
		require.NoError(t, err)
		assert.Equal(t, 1, f.fake.Count(http.MethodDelete, "/api/eliminar_Proveedores/pepe"))
	})

	t.Run("no key", func(t *testing.T) {
		f := newFixture(t, "Proveedores", true)
		confirmed, err := f.ctl.Delete(ctx, models.Record{"email": "x@y.test"})
		assert.True(t, confirmed)
		assert.ErrorIs(t, err, ErrNoKey)
		assert.Equal(t, alert{TitleError, MsgDeleteFailed}, f.alerts.last(t))
		assert.Empty(t, f.fake.Requests())
	})

	t.Run("server failure keeps row", func(t *testing.T) {
		f := newFixture(t, "Proveedores", true)
		f.fake.Seed("Proveedores", "nombre", models.Record{"nombre": "Acme"})
		require.NoError(t, f.ctl.Load(ctx))
		f.fake.FailNext(http.MethodDelete, "/api/eliminar_Proveedores", http.StatusInternalServerError, `{"error":"x"}`)

		_, err := f.ctl.Delete(ctx, f.ctl.Records()[0])
		require.Error(t, err)
		assert.Equal(t, alert{TitleError, MsgDeleteFailed}, f.alerts.last(t))
		assert.Len(t, f.ctl.Records(), 1)
	})
}

func TestController_UsersRows(t *testing.T) {
	f := newFixture(t, "Usuarios", true)
	f.fake.SetRawList("Usuarios", `[{"usuario":"ana","rol":1,"estado":1},{"usuario":"beto","rol":"2","estado":0},{"usuario":"eva","rol":"1"}]`)
	require.NoError(t, f.ctl.Load(context.Background()))

	rows := f.ctl.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Rol: Admin", rows[0].Subtitle)
	assert.Equal(t, "Rol: Usuario", rows[1].Subtitle)
	assert.Equal(t, "Rol: Usuario", rows[2].Subtitle)
	assert.Equal(t, "1", rows[1].ID)
	assert.Empty(t, rows[0].ImageURL)
}
