package main

import (
	"fmt"
	"io"

	"i4.energy/across/atcmd/modem"
)

// Printer writes command results in the tool's plain text format: the
// command on its own line followed by one "<index>: <line>" entry per
// response line.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print implements modem.ResultFunc.
func (p *Printer) Print(cmd string, resp *modem.Response) {
	fmt.Fprintln(p.w, cmd)
	for i, line := range resp.Lines {
		fmt.Fprintf(p.w, "%d: %s\n", i, line)
	}
}
