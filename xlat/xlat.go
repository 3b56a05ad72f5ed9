// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package xlat declares the memory regions required by the secure monitor
// translation tables and activates address translation through an external
// Mapper.
package xlat

import (
	"log"

	"github.com/usbarmory/rpi4-monitor/mem"
)

// Attr describes memory region attributes.
type Attr uint32

const (
	Normal Attr = 1 << iota
	Device
	ReadOnly
	ReadWrite
	Cacheable
	NonCacheable
	Secure
	NonSecure
	Exec
	NoExec
)

// Region is a memory region declaration, this stage maps everything flat
// (virtual equal to physical).
type Region struct {
	Name         string
	VirtualBase  uint32
	PhysicalBase uint32
	Size         uint32
	Attrs        Attr
}

// Mapper is the external translation table collaborator, a declared region
// it cannot satisfy is a fatal condition.
type Mapper interface {
	Map(r Region) error
	Enable()
}

// The device tree region covers the 2MB block the blob starts in plus
// headroom for growth during patching.
const (
	dtbRegionAlign = 0x200000
	dtbRegionSize  = 4 << 20
)

// Regions returns the memory regions this stage requires, in declaration
// order:
//
//   - the device tree working region, when its address is known
//   - the first page of memory, holding the armstub handoff block and the
//     secondary core mailboxes
//   - the monitor runtime (text, data, stacks) and its DMA pool
//   - the Secure World payload region
func Regions(dtb uint32) (regions []Region) {
	if dtb != 0 {
		base := dtb &^ (dtbRegionAlign - 1)

		regions = append(regions, Region{
			Name:         "dtb",
			VirtualBase:  base,
			PhysicalBase: base,
			Size:         dtbRegionSize,
			Attrs:        Normal | ReadWrite | Cacheable | NonSecure | NoExec,
		})
	}

	regions = append(regions,
		Region{
			Name:         "boot params",
			VirtualBase:  0,
			PhysicalBase: 0,
			Size:         0x1000,
			Attrs:        Device | ReadWrite | NonCacheable | Secure | NoExec,
		},
		Region{
			Name:         "monitor",
			VirtualBase:  mem.MonitorStart,
			PhysicalBase: mem.MonitorStart,
			Size:         mem.MonitorSize,
			Attrs:        Normal | ReadWrite | Cacheable | Secure | Exec,
		},
		Region{
			Name:         "monitor dma",
			VirtualBase:  mem.MonitorDMAStart,
			PhysicalBase: mem.MonitorDMAStart,
			Size:         mem.MonitorDMASize,
			Attrs:        Normal | ReadWrite | NonCacheable | Secure | NoExec,
		},
		Region{
			Name:         "secure payload",
			VirtualBase:  mem.SecureStart,
			PhysicalBase: mem.SecureStart,
			Size:         mem.SecureSize,
			Attrs:        Normal | ReadWrite | Cacheable | Secure | NoExec,
		},
	)

	return
}

// Configure declares the required regions to the Mapper and activates
// address translation. A region the Mapper cannot satisfy stops the boot,
// later stages assume every declared mapping.
func Configure(m Mapper, dtb uint32) {
	for _, r := range Regions(dtb) {
		if err := m.Map(r); err != nil {
			log.Fatalf("SM could not map %s region at %#x, %v", r.Name, r.PhysicalBase, err)
		}
	}

	m.Enable()
}
