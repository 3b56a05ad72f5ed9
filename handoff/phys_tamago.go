// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package handoff

import (
	"unsafe"

	"github.com/usbarmory/rpi4-monitor/mem"
)

// ReadStub raw-reads the armstub handoff block, it is only valid before
// address translation remaps the first page of memory.
func ReadStub() Params {
	block := (*[3]uint32)(unsafe.Pointer(uintptr(mem.StubInfoBase)))

	return Params{
		StubMagic:   block[0],
		DTBPtr:      block[1],
		KernelEntry: block[2],
	}
}

func imageCopy(dst uint32, src uint32, n int) {
	s := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(src))), n)
	d := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(dst))), n)

	copy(d, s)
}
