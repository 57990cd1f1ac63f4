package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/internal/auth"
	"hardwareStoreInventory/internal/crud"
	"hardwareStoreInventory/internal/nav"
)

var errNoSession = errors.New("no hay sesión activa: ferreteria login --usuario U --password P")

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: bufio.NewReader(in), out: out}

	root := &cobra.Command{
		Use:          "ferreteria",
		Short:        "Inventory client for " + nav.AppName,
		Long:         `Manage materials, suppliers, sellers and users of the hardware store inventory API.`,
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.AddCommand(
		loginCmd(a),
		registerCmd(a),
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			Args:  cobra.NoArgs,
			RunE: a.wrap(func(ctx context.Context, _ []string) error {
				a.session.Logout(ctx)
				fmt.Fprintln(a.out, "Sesión cerrada")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged-in user",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.whoami),
		},
		&cobra.Command{
			Use:   "home",
			Short: "Show the home screen",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.home),
		},
		&cobra.Command{
			Use:   "menu",
			Short: "List the screens available to the session",
			Args:  cobra.NoArgs,
			RunE:  a.wrap(a.menu),
		},
		&cobra.Command{
			Use:   "list <screen>",
			Short: "List the records of a screen",
			Args:  cobra.ExactArgs(1),
			RunE:  a.wrap(a.list),
		},
		&cobra.Command{
			Use:   "fields <screen>",
			Short: "Show the form fields of a screen",
			Args:  cobra.ExactArgs(1),
			RunE:  a.wrap(a.fields),
		},
		createCmd(a),
		editCmd(a),
		deleteCmd(a),
	)
	return root
}

// wrap opens the app around a command and closes it afterwards.
func (a *app) wrap(fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := a.open(ctx); err != nil {
			a.close()
			return err
		}
		defer a.close()
		err := fn(ctx, args)
		if errors.Is(err, errAlerted) {
			// already shown to the user
			cmd.SilenceErrors = true
			cmd.Root().SilenceErrors = true
		}
		return err
	}
}

// errAlerted marks failures the controller has already reported through its
// notifier.
var errAlerted = errors.New("reported")

type alertedError struct{ err error }

func (e alertedError) Error() string   { return e.err.Error() }
func (e alertedError) Unwrap() []error { return []error{e.err, errAlerted} }

func alerted(err error) error { return alertedError{err} }

func loginCmd(a *app) *cobra.Command {
	var usuario, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: a.wrap(func(ctx context.Context, _ []string) error {
			if _, err := auth.NewAuthenticator(a.client(), a.session, a.log).Login(ctx, usuario, password); err != nil {
				return err
			}
			fmt.Fprintln(a.out, nav.Greeting(a.session.State()))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&usuario, "usuario", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var usuario, password, rol string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: a.wrap(func(ctx context.Context, _ []string) error {
			if err := auth.NewAuthenticator(a.client(), a.session, a.log).Register(ctx, usuario, password, rol); err != nil {
				return err
			}
			notifier{a.out}.Notify(crud.TitleSuccess, auth.MsgRegistered)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&usuario, "usuario", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVarP(&rol, "rol", "r", "", "role (1: Admin, 2: User)")
	return cmd
}

func (a *app) whoami(_ context.Context, _ []string) error {
	st := a.session.State()
	if !st.Authenticated() {
		return errNoSession
	}
	fmt.Fprintf(a.out, "Usuario: %s\n", st.User.DisplayName())
	fmt.Fprintf(a.out, "Rol: %s\n", st.User.Role())
	info, err := auth.InspectToken(st.Token)
	switch {
	case err != nil:
		fmt.Fprintln(a.out, "Token: opaco")
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(a.out, "Token: sin vencimiento")
	case info.Expired(time.Now()):
		fmt.Fprintf(a.out, "Token: vencido el %s\n", info.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(a.out, "Token: vence el %s\n", info.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *app) home(_ context.Context, _ []string) error {
	st := a.session.State()
	dest, err := a.shell.Open(st, nav.RouteHome)
	if err != nil {
		return errNoSession
	}
	fmt.Fprintln(a.out, dest.Title)
	fmt.Fprintln(a.out, nav.Greeting(st))
	fmt.Fprintln(a.out, "Ir al menú principal: ferreteria menu")
	return nil
}

func (a *app) menu(_ context.Context, _ []string) error {
	st := a.session.State()
	if _, err := a.shell.Open(st, nav.RouteMenu); err != nil {
		return errNoSession
	}
	fmt.Fprintln(a.out, nav.AppName)
	fmt.Fprintf(a.out, "Usuario: %s\n\n", st.User.Username())
	for _, entry := range a.shell.Menu(st) {
		fmt.Fprintf(a.out, "  %s\n", entry)
	}
	fmt.Fprintln(a.out, "\nCerrar sesión: ferreteria logout")
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	ctl, err := a.controller(args[0], crud.Deny{})
	if err != nil {
		return err
	}
	if err := ctl.Load(ctx); err != nil {
		if api.IsTransport(err) {
			return fmt.Errorf("no se pudo conectar al servidor %s: %w", a.cfg.Server.URL, err)
		}
		return err
	}
	return renderList(a.out, ctl)
}

func (a *app) fields(_ context.Context, args []string) error {
	ctl, err := a.controller(args[0], crud.Deny{})
	if err != nil {
		return err
	}
	if !ctl.CanMutate() {
		return crud.ErrForbidden
	}
	if err := ctl.OpenCreate(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, ctl.EditorTitle())
	return renderFields(a.out, ctl.FormFields())
}

func createCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "create <screen>",
		Short: "Create a record",
		Args:  cobra.ExactArgs(1),
		RunE: a.wrap(func(ctx context.Context, args []string) error {
			pairs, err := parseSets(sets)
			if err != nil {
				return err
			}
			ctl, err := a.controller(args[0], crud.Deny{})
			if err != nil {
				return err
			}
			if err := ctl.OpenCreate(); err != nil {
				return err
			}
			return a.save(ctx, ctl, pairs)
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as campo=valor (repeatable)")
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <screen> <key>",
		Short: "Edit the record addressed by its key",
		Args:  cobra.ExactArgs(2),
		RunE: a.wrap(func(ctx context.Context, args []string) error {
			pairs, err := parseSets(sets)
			if err != nil {
				return err
			}
			ctl, err := a.controller(args[0], crud.Deny{})
			if err != nil {
				return err
			}
			if !ctl.CanMutate() {
				return crud.ErrForbidden
			}
			if err := ctl.Load(ctx); err != nil {
				return err
			}
			rec, ok := ctl.Find(args[1])
			if !ok {
				return fmt.Errorf("%s: registro %q no encontrado", ctl.Screen().Route, args[1])
			}
			if err := ctl.OpenEdit(rec); err != nil {
				return err
			}
			return a.save(ctx, ctl, pairs)
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as campo=valor (repeatable)")
	return cmd
}

func (a *app) save(ctx context.Context, ctl *crud.Controller, pairs [][2]string) error {
	for _, p := range pairs {
		if err := ctl.SetField(p[0], p[1]); err != nil {
			return err
		}
	}
	if err := ctl.Save(ctx); err != nil {
		if errors.Is(err, crud.ErrForbidden) || errors.Is(err, crud.ErrEditorClosed) {
			return err
		}
		return alerted(err)
	}
	return nil
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <screen> <key>",
		Short: "Delete the record addressed by its key",
		Args:  cobra.ExactArgs(2),
		RunE: a.wrap(func(ctx context.Context, args []string) error {
			var confirm crud.Confirmer = prompt{in: a.in, out: a.out}
			if yes {
				confirm = crud.Accept{}
			}
			ctl, err := a.controller(args[0], confirm)
			if err != nil {
				return err
			}
			if !ctl.CanMutate() {
				return crud.ErrForbidden
			}
			if err := ctl.Load(ctx); err != nil {
				return err
			}
			rec, ok := ctl.Find(args[1])
			if !ok {
				return fmt.Errorf("%s: registro %q no encontrado", ctl.Screen().Route, args[1])
			}
			confirmed, err := ctl.Delete(ctx, rec)
			if err != nil {
				return alerted(err)
			}
			if confirmed {
				fmt.Fprintf(a.out, "%s eliminado\n", args[1])
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
