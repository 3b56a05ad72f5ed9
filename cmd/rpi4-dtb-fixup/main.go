// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// rpi4-dtb-fixup applies the secure monitor device tree patches to a blob
// on disk, allowing the boot time edits to be inspected with dtc.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/usbarmory/rpi4-monitor/dtb"
)

var (
	input  = flag.String("in", "", "device tree blob to patch")
	output = flag.String("out", "", "output path (defaults to overwriting the input)")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if *input == "" {
		glog.Exitf("missing -in argument")
	}

	blob, err := os.ReadFile(*input)

	if err != nil {
		glog.Exitf("could not read %s: %v", *input, err)
	}

	patched, err := dtb.Patch(blob)

	if err != nil {
		glog.Exitf("could not patch %s: %v", *input, err)
	}

	out := *output

	if out == "" {
		out = *input
	}

	if err = os.WriteFile(out, patched, 0644); err != nil {
		glog.Exitf("could not write %s: %v", out, err)
	}

	glog.Infof("wrote %s (%d bytes)", out, len(patched))
}
