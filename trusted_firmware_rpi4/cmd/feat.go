// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/usbarmory/rpi4-monitor/feat"
)

func init() {
	Add(Cmd{
		Name: "feat",
		Help: "CPU feature policy evaluation",
		Fn:   featCmd,
	})
}

func featState(state int) string {
	switch state {
	case feat.Disabled:
		return "disabled"
	case feat.Always:
		return "always"
	case feat.Check:
		return "check"
	default:
		return "invalid"
	}
}

func featCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer

	regs := feat.ReadRegs()

	t := tabwriter.NewWriter(&buf, 16, 8, 0, '\t', tabwriter.TabIndent)
	fmt.Fprintf(t, "feature\tarch\tstate\tversion\n")

	for _, req := range feat.Requirements() {
		fmt.Fprintf(t, "FEAT_%s\t%s\t%s\t%d\n", req.Name, req.Arch, featState(req.State), req.Field(regs))
	}

	t.Flush()

	violations := feat.Evaluate(regs, feat.Requirements())

	for _, v := range violations {
		fmt.Fprintf(&buf, "%s\n", v)
	}

	if len(violations) == 0 {
		fmt.Fprintf(&buf, "feature policy satisfied\n")
	}

	return buf.String(), nil
}
