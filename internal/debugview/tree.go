// Package debugview renders portal trees for inspection: a text table of the
// nodes and an image of the nested viewports.
package debugview

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/Faultbox/portalcam/internal/traversal"
)

// WriteTree writes a table of every node in e, parent first. It returns the
// first error from w.
func WriteTree(w io.Writer, e *traversal.Engine) error {
	ew := &errWriter{w: w}
	table := tablewriter.NewWriter(ew)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Node", "Parent", "Depth", "Portal", "Viewport", "Near", "Far", "Oblique"})

	nodes := 0
	deepest := 0
	e.Walk(func(v traversal.View) bool {
		nodes++
		deepest = max(deepest, v.Depth)
		table.Append([]string{
			fmt.Sprintf("%d", v.Handle),
			parentLabel(v.Parent),
			strings.Repeat("  ", v.Depth) + fmt.Sprintf("%d", v.Depth),
			portalLabel(v),
			fmt.Sprintf("%.3f,%.3f %.3fx%.3f", v.Viewport.X, v.Viewport.Y, v.Viewport.W, v.Viewport.H),
			fmt.Sprintf("%.3f", v.Near),
			fmt.Sprintf("%.1f", v.Far),
			fmt.Sprintf("%t", v.Oblique),
		})
		return true
	})
	table.SetFooter([]string{"", "", "", "", "", "", fmt.Sprintf("%d nodes", nodes), fmt.Sprintf("depth %d", deepest)})

	table.Render()
	return ew.err
}

// TreeString returns the WriteTree table as a string.
func TreeString(e *traversal.Engine) string {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = WriteTree(&buf, e)
	return buf.String()
}

// errWriter keeps the first write error, since tablewriter drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

func parentLabel(h traversal.Handle) string {
	if h == traversal.NoHandle {
		return "-"
	}
	return fmt.Sprintf("%d", h)
}

func portalLabel(v traversal.View) string {
	if v.Portal == nil {
		return "(camera)"
	}
	if exit := v.Portal.Linked(); exit != nil {
		return v.Portal.Name + " -> " + exit.Name
	}
	return v.Portal.Name
}
