// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package handoff

import (
	"log"

	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/rpi4-monitor/mem"
)

// State tags the security state an image executes in.
type State int

const (
	// Secure World
	Secure State = iota
	// Normal World
	NonSecure
)

// String returns the security state name.
func (s State) String() string {
	switch s {
	case Secure:
		return "Secure"
	case NonSecure:
		return "NonSecure"
	default:
		return "invalid"
	}
}

// CPSR bit positions for the saved program status loaded on entry into the
// next-stage images.
const (
	CPSR_FIQ = 6
	CPSR_IRQ = 7
	CPSR_A   = 8
)

// Supervisor mode (ARM Architecture Reference Manual, program status
// registers).
const svcMode = 0x13

// Entry describes the first instruction handed to a security state at
// de-escalation: entry point, saved program status and up to four argument
// registers (r0-r3).
type Entry struct {
	// PC is the entry point, zero means no image is registered.
	PC uint32
	// SPSR is the program status loaded on entry.
	SPSR uint32
	// Secure is the security attribute of the image.
	Secure bool
	// Args holds the r0-r3 values passed to the image.
	Args [4]uint32
}

// The dispatch table is populated during early setup and read exactly once
// per security state at de-escalation, there is no later mutation.
var entries [2]Entry

func index(s State) int {
	switch s {
	case Secure, NonSecure:
		return int(s)
	default:
		panic("invalid security state")
	}
}

// Set registers the image dispatch entry for a security state.
func Set(s State, e Entry) {
	entries[index(s)] = e
}

// NextImage returns the dispatch entry for the passed security state, ok is
// false when no image has been registered for it. A state other than Secure
// or NonSecure is a programming error and panics.
func NextImage(s State) (e Entry, ok bool) {
	e = entries[index(s)]

	return e, e.PC != 0
}

// entrySPSR returns the program status for a next-stage image, supervisor
// mode with asynchronous exceptions masked.
func entrySPSR() uint32 {
	spsr := uint32(svcMode)

	bits.Set(&spsr, CPSR_FIQ)
	bits.Set(&spsr, CPSR_IRQ)
	bits.Set(&spsr, CPSR_A)

	return spsr
}

// InitNonSecureEntry populates the Normal World dispatch entry for direct
// kernel boot, following the 32-bit Linux register convention (r0 zero, r1
// machine type ~0, r2 device tree address).
func InitNonSecureEntry() {
	e := Entry{
		PC:   NonSecureEntry(),
		SPSR: entrySPSR(),
		Args: [4]uint32{0, ^uint32(0), DTBAddress(), 0},
	}

	Set(NonSecure, e)

	log.Printf("SM kernel entry:%#x dtb:%#x", e.PC, e.Args[2])
}

// InitSecureEntry populates the Secure World dispatch entry for a payload
// staged at the fixed entry address, which receives the device tree address
// in r2.
func InitSecureEntry() {
	e := Entry{
		PC:     mem.SecureEntry,
		SPSR:   entrySPSR(),
		Secure: true,
		Args:   [4]uint32{2: DTBAddress()},
	}

	Set(Secure, e)

	log.Printf("SM secure payload entry:%#x dtb:%#x", e.PC, e.Args[2])
}
