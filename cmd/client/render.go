package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"hardwareStoreInventory/internal/crud"
	"hardwareStoreInventory/models"
)

// notifier prints alerts as "Title: message".
type notifier struct{ w io.Writer }

func (n notifier) Notify(title, message string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
}

// prompt asks on out and reads a y/N answer from in. Anything but y or si
// declines, including end of input.
type prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func (p prompt) Confirm(title, message string) bool {
	fmt.Fprintf(p.out, "%s: %s [y/N]: ", title, message)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func renderList(w io.Writer, ctl *crud.Controller) error {
	s := ctl.Screen()
	fmt.Fprintln(w, s.Title)
	recs, rows := ctl.Records(), ctl.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (sin registros)")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	key := s.KeyField()
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", strings.ToUpper(key.Label), "TITULO", "DETALLE", "INFO", "IMAGEN")
	for i, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dash(recs[i].String(key.Key)), dash(row.Title), dash(row.Subtitle), dash(row.Details), dash(row.ImageURL))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if ctl.CanMutate() {
		fmt.Fprintf(w, "\nferreteria edit %s <%s> --set campo=valor | ferreteria delete %s <%s>\n",
			s.Route, key.Key, s.Route, key.Key)
	}
	return nil
}

func renderFields(w io.Writer, fields []crud.FormField) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAMPO\tETIQUETA\tTIPO\tVALOR")
	for _, f := range fields {
		typ := "texto"
		if f.Type == models.FieldNumber {
			typ = "número"
		}
		if f.Readonly {
			typ += " (solo lectura)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Key, f.Label, typ, dash(f.Value))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parseSets splits --set key=value pairs, keeping their order.
func parseSets(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q: want campo=valor", s)
		}
		out = append(out, [2]string{k, v})
	}
	return out, nil
}
