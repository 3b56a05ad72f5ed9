// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"fmt"
	"io"
	"log"
	"runtime"

	"golang.org/x/term"
)

// Console represents an interactive serial console instance.
type Console struct {
	// Banner is the welcome banner
	Banner string
	// Help is the `help` command output
	Help string
	// Handler is the terminal command handler
	Handler func(*term.Terminal, string) error
	// Term is the terminal instance
	Term *term.Terminal
}

// blockingReader adapts a polled character device to the blocking reads
// expected by the terminal line editor.
type blockingReader struct {
	rw io.ReadWriter
}

func (r *blockingReader) Read(buf []byte) (n int, err error) {
	for n == 0 && err == nil {
		n, err = r.rw.Read(buf)
		runtime.Gosched()
	}

	return
}

func (r *blockingReader) Write(buf []byte) (int, error) {
	return r.rw.Write(buf)
}

// Start instantiates the console on the given serial port, it returns when
// the command handler does (see io.EOF convention).
func (c *Console) Start(rw io.ReadWriter) {
	c.Term = term.NewTerminal(&blockingReader{rw}, "")
	c.Term.SetPrompt(string(c.Term.Escape.Red) + "> " + string(c.Term.Escape.Reset))

	out := log.Writer()
	log.SetOutput(io.MultiWriter(out, c.Term))
	defer log.SetOutput(out)

	fmt.Fprintf(c.Term, "%s\n", c.Banner)
	fmt.Fprintf(c.Term, "%s\n", string(c.Term.Escape.Cyan)+c.Help+string(c.Term.Escape.Reset))

	for {
		cmd, err := c.Term.ReadLine()

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Printf("readline error, %v", err)
			continue
		}

		err = c.Handler(c.Term, cmd)

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Printf("error, %v", err)
		}
	}

	log.Printf("SM closing console")
}
