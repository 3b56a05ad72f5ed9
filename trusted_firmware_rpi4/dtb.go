// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"log"
	"unsafe"

	"github.com/usbarmory/rpi4-monitor/bcm2711"
	"github.com/usbarmory/rpi4-monitor/dtb"
	"github.com/usbarmory/rpi4-monitor/handoff"
)

// patchDTB rewrites the device tree handed over by the VideoCore firmware
// in place, the patched blob is flushed to the point of coherency as the
// Normal World kernel reads it with caches off.
func patchDTB() (err error) {
	addr := handoff.DTBAddress()

	if addr == 0 {
		return errors.New("device tree address unknown")
	}

	window := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), dtb.MaxSize)

	patched, err := dtb.Patch(window)

	if err != nil {
		return
	}

	copy(window, patched)

	bcm2711.ARM.CacheFlushData()

	log.Printf("SM patched device tree at %#x (%d bytes)", addr, len(patched))

	return
}
