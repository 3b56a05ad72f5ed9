// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

// BCM2711 physical memory layout.
//
// The VideoCore firmware loads this stage at the beginning of DRAM and
// releases the primary core into it, the remaining layout keeps the secure
// monitor runtime clear of both the staged Secure World payload and the
// Normal World kernel.
const (
	// Handoff block within the armstub image, the magic word is cleared
	// by the VideoCore firmware once the DTB and kernel pointers are
	// valid.
	StubInfoBase = 0x000000f0
	StubMagic    = 0x5afe570b

	// Conventional Normal World kernel load address, used when the
	// handoff block cannot be trusted.
	DefaultKernelEntry = 0x00080000

	// Firmware footprint advertised to the Normal World through the
	// device tree reservation.
	FirmwareBase = 0x00000000
	FirmwareSize = 0x00080000

	// Secure World payload, appended to the firmware image and staged
	// to its run address at boot.
	SecureImageOffset = 0x00020000 // 128 KiB
	SecureImageSize   = 500 * 1024

	// Secure World payload
	SecureStart = 0x10000000
	SecureSize  = 0x01000000 // 16MB
	SecureEntry = 0x10100000

	// Secure monitor runtime
	MonitorStart = 0x20000000
	MonitorSize  = 0x02000000 // 32MB

	// Secure monitor DMA (kept clear of Normal World memory)
	MonitorDMAStart = 0x22000000
	MonitorDMASize  = 0x00100000 // 1MB

	// Normal World OS
	NonSecureStart = 0x00000000
	NonSecureSize  = 0x10000000 // 256MB

	// Normal World Go payload runtime (development builds)
	NonSecureOSStart = 0x04000000
	NonSecureOSSize  = 0x04000000 // 64MB
)

// TextOffset is the distance between the start of RAM and the runtime text
// section in TamaGo executables.
const TextOffset = 0x10000
