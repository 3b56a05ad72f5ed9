// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/term"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/usbarmory/rpi4-monitor/dtb"
	"github.com/usbarmory/rpi4-monitor/handoff"
)

func init() {
	Add(Cmd{
		Name: "dtb",
		Help: "device tree summary",
		Fn:   dtbCmd,
	})
}

func dtbCmd(_ *term.Terminal, _ []string) (res string, err error) {
	addr := handoff.DTBAddress()

	if addr == 0 {
		return "", errors.New("device tree address unknown")
	}

	window := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), dtb.MaxSize)

	fdt, err := dt.ReadFDT(bytes.NewReader(window))

	if err != nil {
		return "", fmt.Errorf("invalid device tree, %v", err)
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "dtb at %#x\n", addr)

	for _, p := range fdt.RootNode.Properties {
		if p.Name == "model" || p.Name == "compatible" {
			fmt.Fprintf(&buf, "%s: %s\n", p.Name, bytes.ReplaceAll(bytes.TrimRight(p.Value, "\x00"), []byte{0}, []byte(" ")))
		}
	}

	for _, r := range fdt.ReserveEntries {
		fmt.Fprintf(&buf, "memreserve %#.8x-%#.8x\n", r.Address, r.Address+r.Size)
	}

	return buf.String(), nil
}
