// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"

	"golang.org/x/term"

	"github.com/usbarmory/rpi4-monitor/handoff"
	"github.com/usbarmory/rpi4-monitor/xlat"
)

func init() {
	Add(Cmd{
		Name: "info",
		Help: "boot parameters and dispatch table",
		Fn:   infoCmd,
	})
}

func infoCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer

	dtbAddr := handoff.DTBAddress()

	fmt.Fprintf(&buf, "dtb:%#x kernel:%#x\n", dtbAddr, handoff.NonSecureEntry())

	for _, s := range []handoff.State{handoff.Secure, handoff.NonSecure} {
		e, ok := handoff.NextImage(s)

		if !ok {
			fmt.Fprintf(&buf, "%s: no image registered\n", s)
			continue
		}

		fmt.Fprintf(&buf, "%s: pc:%#.8x spsr:%#.8x r0-r3:%x\n", s, e.PC, e.SPSR, e.Args)
	}

	for _, r := range xlat.Regions(dtbAddr) {
		fmt.Fprintf(&buf, "map %-14s %#.8x-%#.8x\n", r.Name, r.PhysicalBase, r.PhysicalBase+r.Size)
	}

	return buf.String(), nil
}
