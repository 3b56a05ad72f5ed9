// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package handoff captures the boot parameters left by the VideoCore
// firmware and maintains the dispatch table consumed when de-escalating
// into the next-stage images.
package handoff

import (
	"log"
	"strconv"

	"github.com/usbarmory/rpi4-monitor/mem"
)

// Build time overrides (see `-ldflags -X`), for deployments that preload
// fixed images instead of relying on the VideoCore handshake.
var (
	// PreloadedKernel overrides the captured Normal World kernel entry
	// address.
	PreloadedKernel string
	// PreloadedDTB overrides the captured device tree address.
	PreloadedDTB string
)

var (
	preloadedKernel uint32
	preloadedDTB    uint32
)

// Params mirrors the armstub handoff block layout, three consecutive words
// holding the stub magic sentinel, the device tree pointer and the Normal
// World kernel entry pointer.
//
// The VideoCore firmware clears the magic word if and only if the two
// pointers are valid.
type Params struct {
	StubMagic   uint32
	DTBPtr      uint32
	KernelEntry uint32
}

var params Params

func init() {
	params.StubMagic = mem.StubMagic

	if PreloadedKernel != "" {
		addr, err := strconv.ParseUint(PreloadedKernel, 0, 32)

		if err != nil {
			log.Fatalf("SM invalid preloaded kernel address %q, %v", PreloadedKernel, err)
		}

		preloadedKernel = uint32(addr)
	}

	if PreloadedDTB != "" {
		addr, err := strconv.ParseUint(PreloadedDTB, 0, 32)

		if err != nil {
			log.Fatalf("SM invalid preloaded DTB address %q, %v", PreloadedDTB, err)
		}

		preloadedDTB = uint32(addr)
	}
}

// Capture records the boot parameters, it must be invoked once, early,
// before address translation changes make the handoff block inaccessible
// (see ReadStub).
func Capture(p Params) {
	params = p
}

// NonSecureEntry returns the Normal World kernel entry address.
//
// A build time override takes precedence, otherwise the captured entry is
// returned when the stub sentinel indicates valid parameters, falling back
// to the conventional kernel load address with a warning when it does not.
func NonSecureEntry() uint32 {
	if preloadedKernel != 0 {
		return preloadedKernel
	}

	if params.StubMagic == 0 {
		return params.KernelEntry
	}

	log.Printf("SM stub magic failure, using default kernel address %#x", uint32(mem.DefaultKernelEntry))

	return mem.DefaultKernelEntry
}

// DTBAddress returns the device tree address, zero when the stub sentinel
// indicates invalid parameters and no build time override is set.
func DTBAddress() uint32 {
	if preloadedDTB != 0 {
		return preloadedDTB
	}

	if params.StubMagic == 0 {
		return params.DTBPtr
	}

	log.Printf("SM stub magic failure, DTB address unknown")

	return 0
}
