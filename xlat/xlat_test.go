// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat_test

import (
	"testing"

	"github.com/usbarmory/rpi4-monitor/xlat"
)

type recordingMapper struct {
	regions []xlat.Region
	enabled bool
}

func (m *recordingMapper) Map(r xlat.Region) error {
	if m.enabled {
		return nil
	}

	m.regions = append(m.regions, r)
	return nil
}

func (m *recordingMapper) Enable() {
	m.enabled = true
}

func TestRegionsWithDTB(t *testing.T) {
	regions := xlat.Regions(0x2eff2600)

	if len(regions) == 0 {
		t.Fatal("no regions declared")
	}

	dtb := regions[0]

	if dtb.Name != "dtb" {
		t.Fatalf("first region is %q, want dtb", dtb.Name)
	}

	if dtb.PhysicalBase != 0x2ee00000 {
		t.Errorf("dtb region base = %#x, want 2MB aligned %#x", dtb.PhysicalBase, 0x2ee00000)
	}

	if dtb.Size != 4<<20 {
		t.Errorf("dtb region size = %#x, want 4MB", dtb.Size)
	}

	if dtb.Attrs&xlat.NonSecure == 0 || dtb.Attrs&xlat.ReadWrite == 0 {
		t.Errorf("dtb region attrs = %#x, want non-secure read-write", dtb.Attrs)
	}
}

func TestRegionsWithoutDTB(t *testing.T) {
	for _, r := range xlat.Regions(0) {
		if r.Name == "dtb" {
			t.Error("dtb region declared despite unknown address")
		}
	}
}

func TestRegionsFirstPage(t *testing.T) {
	var found bool

	for _, r := range xlat.Regions(0) {
		if r.PhysicalBase == 0 && r.Size == 0x1000 {
			found = true

			if r.Attrs&xlat.Device == 0 || r.Attrs&xlat.Secure == 0 {
				t.Errorf("boot params attrs = %#x, want device secure", r.Attrs)
			}
		}
	}

	if !found {
		t.Error("first page of memory not declared")
	}
}

func TestConfigure(t *testing.T) {
	m := &recordingMapper{}

	xlat.Configure(m, 0x2eff2600)

	if !m.enabled {
		t.Error("translation not activated")
	}

	if want := len(xlat.Regions(0x2eff2600)); len(m.regions) != want {
		t.Errorf("mapped %d regions, want %d", len(m.regions), want)
	}

	for _, r := range m.regions {
		if r.VirtualBase != r.PhysicalBase {
			t.Errorf("%s region not mapped flat: %#x != %#x", r.Name, r.VirtualBase, r.PhysicalBase)
		}
	}
}
