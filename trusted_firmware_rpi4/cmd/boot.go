// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"regexp"

	"golang.org/x/term"

	"github.com/usbarmory/rpi4-monitor/handoff"
	"github.com/usbarmory/rpi4-monitor/trusted_firmware_rpi4/internal"
)

func init() {
	Add(Cmd{
		Name:    "boot",
		Args:    1,
		Pattern: regexp.MustCompile(`^boot (secure|nonsecure|both)$`),
		Syntax:  "<secure|nonsecure|both>",
		Help:    "de-escalate into next-stage image",
		Fn:      bootCmd,
	})
}

func bootCmd(_ *term.Terminal, arg []string) (res string, err error) {
	switch arg[0] {
	case "secure":
		err = fw.Boot(handoff.Secure)
	case "nonsecure":
		err = fw.Boot(handoff.NonSecure)
	case "both":
		err = fw.BootBoth()
	}

	return
}
