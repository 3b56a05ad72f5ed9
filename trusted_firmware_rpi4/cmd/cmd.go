// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the secure monitor debug console.
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/usbarmory/rpi4-monitor/trusted_firmware_rpi4/internal"
	"github.com/usbarmory/rpi4-monitor/util"
)

// Banner is the console welcome banner.
var Banner string

// CmdFn represents a console command handler.
type CmdFn func(term *term.Terminal, arg []string) (res string, err error)

// Cmd represents a console command.
type Cmd struct {
	// Name is the command name.
	Name string

	// Args defines the number of command arguments, meant to be in the
	// Pattern capturing brackets.
	Args int

	// Pattern defines the command syntax and arguments.
	Pattern *regexp.Regexp

	// Syntax defines the Help() command syntax field.
	Syntax string

	// Help defines the Help() command description field.
	Help string

	// Fn defines the command handler.
	Fn CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a terminal interface command.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns a formatted string with instructions for all registered
// commands.
func Help(term *term.Terminal) string {
	var help bytes.Buffer
	var names []string

	t := tabwriter.NewWriter(&help, 16, 8, 0, '\t', tabwriter.TabIndent)

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		cmd := cmds[name]
		fmt.Fprintf(t, "%s\t%s\t # %s\n", cmd.Name, cmd.Syntax, cmd.Help)
	}

	t.Flush()

	return string(term.Escape.Cyan) + help.String() + string(term.Escape.Reset)
}

// Handle executes a console command line.
func Handle(term *term.Terminal, line string) (err error) {
	var match *Cmd
	var arg []string
	var res string

	line = strings.TrimSpace(line)

	if line == "" {
		return
	}

	for _, cmd := range cmds {
		if cmd.Pattern == nil {
			if line == cmd.Name {
				match = cmd
				break
			}
		} else if m := cmd.Pattern.FindStringSubmatch(line); len(m) > 0 && (len(m)-1 == cmd.Args) {
			match = cmd
			arg = m[1:]
			break
		}
	}

	if match == nil {
		return errors.New("unknown command, type `help`")
	}

	if res, err = match.Fn(term, arg); res != "" {
		fmt.Fprintln(term, res)
	}

	return
}

// SerialConsole starts an interactive console on the given serial port, it
// returns when the session is closed with the `exit` command.
func SerialConsole(rw io.ReadWriter) {
	console := &util.Console{
		Banner:  Banner,
		Help:    "use `help` for a list of commands",
		Handler: Handle,
	}

	fw.Console = console
	defer func() { fw.Console = nil }()

	console.Start(rw)
}
