// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package bcm2711

import (
	"unsafe"
)

//go:nosplit
func read32(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

//go:nosplit
func write32(addr uint32, val uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = val
}

//go:nosplit
func wait32(addr uint32, mask uint32, val uint32) {
	for read32(addr)&mask != val {
	}
}
