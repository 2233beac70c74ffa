package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"timesheet-auditor/internal/service"
)

var (
	headerColor = color.New(color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.FgHiBlack)
)

// printOutcome 终端摘要：统计、异常列表、报表路径
func printOutcome(w io.Writer, out *service.AuditOutcome, path string) {
	res := out.Result
	first, last := res.Days[0], res.Days[len(res.Days)-1]

	headerColor.Fprintf(w, "Audit %s - %s\n", first.Format("02 Jan 2006"), last.Format("02 Jan 2006"))

	fmt.Fprintf(w, "  roster sheet   %s", out.Roster.Sheet)
	if out.Roster.Fallback {
		warnColor.Fprint(w, "  (no sheet for this period, used first sheet)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  employees      %d\n", len(res.Rows))

	fmt.Fprint(w, "  exceptions     ")
	if len(res.Exceptions) == 0 {
		okColor.Fprintln(w, 0)
	} else {
		badColor.Fprintln(w, len(res.Exceptions))
	}
	fmt.Fprintf(w, "  remarks        %d\n", len(res.Remarks))
	if res.Unassigned > 0 {
		warnColor.Fprintf(w, "  unparsed rows  %d\n", res.Unassigned)
	}

	if len(res.Exceptions) > 0 {
		fmt.Fprintln(w)
		headerColor.Fprintln(w, "Exceptions")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, x := range res.Exceptions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", x.Employee, x.Date.Format("2006-01-02"), timeOrDash(x.Time.String()), x.Reason)
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, "report written to ")
	okColor.Fprintln(w, path)
	if out.Cached {
		dimColor.Fprintln(w, "(cached result)")
	}
}

func timeOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
