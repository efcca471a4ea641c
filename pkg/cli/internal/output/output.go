// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/getmockd/canonrest/pkg/resource"
)

// JSON writes indented JSON to w.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates an aligned table writer on w.
// Remember to call Flush() when done writing.
func Table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Resources prints resources as a KEY/DATA/TAG table.
func Resources(w io.Writer, rs ...resource.Resource) error {
	tw := Table(w)
	_, _ = fmt.Fprintln(tw, "KEY\tDATA\tTAG")
	for _, r := range rs {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Key, r.Data, r.Tag)
	}
	return tw.Flush()
}

// Warn prints a warning message to w.
func Warn(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}
