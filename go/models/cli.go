package models

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// PrintFlags writes an 80-column usage table, wrapping long descriptions.
func PrintFlags(w io.Writer, flags []*flag.Flag) {
	wname, wdef := 0, 0
	for _, f := range flags {
		if len(f.Name) > wname {
			wname = len(f.Name)
		}
		if len(f.DefValue) > wdef {
			wdef = len(f.DefValue)
		}
	}
	wdesc := 80 - wname - wdef - 7
	if wdesc < 20 {
		wdesc = 20
	}
	lpad := strings.Repeat(" ", wname+wdef+7)

	for _, f := range flags {
		def := "  "
		if f.DefValue != "" && f.DefValue != "false" {
			def = "(" + f.DefValue + ")"
		}
		fmt.Fprintf(w, "  -%-*s %-*s ", wname, f.Name, wdef+2, def)
		usage := f.Usage
		for first := true; usage != "" || first; first = false {
			if !first {
				fmt.Fprint(w, lpad)
			}
			line := usage
			if len(line) > wdesc {
				line = usage[:wdesc]
				if cut := strings.LastIndexAny(line, " \n"); cut > 0 {
					line = line[:cut]
				}
			}
			fmt.Fprintln(w, line)
			usage = strings.TrimLeft(usage[len(line):], " \n")
		}
	}
}
