package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/lox/bombpot/sdk/solver"
)

// writeReport prints a node report as an aligned table: one row per hand
// with the average strategy in percent, one column per action.
func writeReport(w io.Writer, r solver.NodeReport) error {
	fmt.Fprintf(w, "%s node %s (%s)", r.Kind, r.Path, r.Street)
	if r.Position != "" {
		fmt.Fprintf(w, ", %s to act", r.Position)
	}
	fmt.Fprintln(w)
	if len(r.Children) > 0 {
		fmt.Fprintf(w, "children: %s\n", strings.Join(r.Children, " "))
	}
	if r.Kind != solver.KindDecision.String() {
		return nil
	}
	fmt.Fprintf(w, "hands seen: %s, total visits: %s\n\n",
		humanize.Comma(int64(r.HandsSeen)), humanize.CommafWithDigits(r.TotalVisits, 1))
	if len(r.Hands) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "hand\tshape\t")
	for _, a := range r.Actions {
		fmt.Fprintf(tw, "%s\t", a)
	}
	fmt.Fprintln(tw, "visits\t")
	for _, h := range r.Hands {
		fmt.Fprintf(tw, "%s\t%s\t", h.Hand, h.Category)
		for _, p := range h.Average {
			fmt.Fprintf(tw, "%.1f%%\t", 100*p)
		}
		fmt.Fprintf(tw, "%s\t\n", humanize.CommafWithDigits(h.Visits, 1))
	}
	return tw.Flush()
}
