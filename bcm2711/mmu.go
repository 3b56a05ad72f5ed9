// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package bcm2711

import (
	"fmt"

	"github.com/usbarmory/tamago/arm"

	"github.com/usbarmory/rpi4-monitor/xlat"
)

// translation table section attributes missing from the arm package
const (
	sectionSize = 1 << 20

	tteBufferable = 1 << 2
	tteCacheable  = 1 << 3
	tteXN         = 1 << 4
	tteNS         = 1 << 19
)

// MMU adapts the ARM first-level translation table to region declarations.
// Attributes are applied at section granularity, declarations smaller than
// a section cover the full section they fall in.
type MMU struct {
	regions []xlat.Region
}

func sectionFlags(attrs xlat.Attr) uint32 {
	flags := uint32(arm.TTE_SECTION)

	if attrs&xlat.ReadOnly != 0 {
		flags |= arm.TTE_AP_101 << 10
	} else {
		flags |= arm.TTE_AP_001 << 10
	}

	if attrs&xlat.Cacheable != 0 {
		flags |= tteCacheable | tteBufferable
	}

	if attrs&xlat.NoExec != 0 {
		flags |= tteXN
	}

	if attrs&xlat.NonSecure != 0 {
		flags |= tteNS
	}

	return flags
}

// Map records a region declaration for application by Enable.
func (m *MMU) Map(r xlat.Region) error {
	if r.VirtualBase != r.PhysicalBase {
		return fmt.Errorf("only flat mappings are supported")
	}

	if r.VirtualBase&(sectionSize-1) != 0 {
		return fmt.Errorf("address %#x is not section aligned", r.VirtualBase)
	}

	if r.Size == 0 {
		return fmt.Errorf("empty region")
	}

	m.regions = append(m.regions, r)

	return nil
}

// Enable applies the recorded region attributes to the translation table,
// translation itself is already active with flat default attributes.
func (m *MMU) Enable() {
	for _, r := range m.regions {
		end := r.VirtualBase + r.Size

		if end&(sectionSize-1) != 0 {
			end = (end &^ (sectionSize - 1)) + sectionSize
		}

		ARM.ConfigureMMU(r.VirtualBase, end, sectionFlags(r.Attrs))
	}
}
