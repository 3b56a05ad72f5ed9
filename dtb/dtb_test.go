// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dtb_test

import (
	"bytes"
	"encoding/binary"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/u-root/u-root/pkg/dt"

	"github.com/usbarmory/rpi4-monitor/dtb"
)

func buildBlob(t *testing.T, fdt *dt.FDT) []byte {
	t.Helper()

	// Write serializes the header as is, the mandatory fields must be
	// filled in by hand.
	fdt.Header.Magic = dt.Magic
	fdt.Header.Version = 17
	fdt.Header.LastCompVersion = 16

	buf := &bytes.Buffer{}

	if _, err := fdt.Write(buf); err != nil {
		t.Fatalf("could not pack test device tree, %v", err)
	}

	return buf.Bytes()
}

func parseBlob(t *testing.T, blob []byte) *dt.FDT {
	t.Helper()

	fdt, err := dt.ReadFDT(bytes.NewReader(blob))

	if err != nil {
		t.Fatalf("could not parse patched device tree, %v", err)
	}

	return fdt
}

func lookupNode(parent *dt.Node, name string) *dt.Node {
	for _, node := range parent.Children {
		if node.Name == name {
			return node
		}
	}

	return nil
}

func lookupProperty(t *testing.T, node *dt.Node, name string) []byte {
	t.Helper()

	for _, p := range node.Properties {
		if p.Name == name {
			return p.Value
		}
	}

	t.Fatalf("node %s has no property %s", node.Name, name)

	return nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})

	return buf
}

// testTree builds a minimal firmware handed tree: two cores with spin-table
// release, a GIC-400 with a bogus interrupt descriptor and the spin-table
// mailbox reservation at the start of memory.
func testTree() *dt.FDT {
	cpu := func(name string, releaseAddr uint64) *dt.Node {
		addr := make([]byte, 8)
		binary.BigEndian.PutUint64(addr, releaseAddr)

		return &dt.Node{
			Name: name,
			Properties: []dt.Property{
				{Name: "device_type", Value: []byte("cpu\x00")},
				{Name: "enable-method", Value: []byte("spin-table\x00")},
				{Name: "cpu-release-addr", Value: addr},
			},
		}
	}

	gicIRQ := make([]byte, 12)
	binary.BigEndian.PutUint32(gicIRQ[4:], 9)

	return &dt.FDT{
		ReserveEntries: []dt.ReserveEntry{
			{Address: 0, Size: 4096},
		},
		RootNode: &dt.Node{
			Name: "/",
			Children: []*dt.Node{
				{
					Name: "cpus",
					Children: []*dt.Node{
						cpu("cpu@0", 0xd8),
						cpu("cpu@1", 0xe0),
					},
				},
				{
					Name: "soc",
					Children: []*dt.Node{
						{
							Name: "interrupt-controller@40041000",
							Properties: []dt.Property{
								{Name: "compatible", Value: []byte("arm,gic-400\x00")},
								{Name: "interrupts", Value: gicIRQ},
							},
						},
					},
				},
			},
		},
	}
}

func TestPatch(t *testing.T) {
	captureLog(t)

	blob := buildBlob(t, testTree())

	patched, err := dtb.Patch(blob)

	if err != nil {
		t.Fatalf("Patch failed, %v", err)
	}

	if len(patched) > dtb.MaxSize {
		t.Fatalf("patched blob size %d exceeds %d", len(patched), dtb.MaxSize)
	}

	fdt := parseBlob(t, patched)

	for _, r := range fdt.ReserveEntries {
		if r.Address == 0 && r.Size != 0 {
			t.Errorf("spin-table reservation still present, size:%d", r.Size)
		}
	}

	psci := lookupNode(fdt.RootNode, "psci")

	if psci == nil {
		t.Fatal("no psci node")
	}

	if got := lookupProperty(t, psci, "method"); !bytes.Equal(got, []byte("smc\x00")) {
		t.Errorf("psci method %q, expected smc", got)
	}

	want := []byte("arm,psci-1.0\x00arm,psci-0.2\x00")

	if got := lookupProperty(t, psci, "compatible"); !bytes.Equal(got, want) {
		t.Errorf("psci compatible %q, expected %q", got, want)
	}

	cpus := lookupNode(fdt.RootNode, "cpus")

	for _, node := range cpus.Children {
		if got := lookupProperty(t, node, "enable-method"); !bytes.Equal(got, []byte("psci\x00")) {
			t.Errorf("%s enable-method %q, expected psci", node.Name, got)
		}

		for _, p := range node.Properties {
			if p.Name == "cpu-release-addr" {
				t.Errorf("%s still carries cpu-release-addr", node.Name)
			}
		}
	}

	resv := lookupNode(fdt.RootNode, "reserved-memory")

	if resv == nil {
		t.Fatal("no reserved-memory node")
	}

	atf := lookupNode(resv, "atf@0")

	if atf == nil {
		t.Fatal("no atf@0 node")
	}

	reg := make([]byte, 8)
	binary.BigEndian.PutUint32(reg[4:], 0x80000)

	if diff := cmp.Diff(reg, lookupProperty(t, atf, "reg")); diff != "" {
		t.Errorf("atf@0 reg mismatch (-want +got):\n%s", diff)
	}

	lookupProperty(t, atf, "no-map")

	soc := lookupNode(fdt.RootNode, "soc")
	gic := lookupNode(soc, "interrupt-controller@40041000")

	irq := make([]byte, 12)
	binary.BigEndian.PutUint32(irq[0:], 1)
	binary.BigEndian.PutUint32(irq[4:], 9)
	binary.BigEndian.PutUint32(irq[8:], 0x0f04)

	if diff := cmp.Diff(irq, lookupProperty(t, gic, "interrupts")); diff != "" {
		t.Errorf("gic interrupts mismatch (-want +got):\n%s", diff)
	}

	chosen := lookupNode(fdt.RootNode, "chosen")

	if chosen == nil {
		t.Fatal("no chosen node")
	}

	if got := lookupProperty(t, chosen, "stdout-path"); !bytes.Equal(got, []byte("serial0\x00")) {
		t.Errorf("stdout-path %q, expected serial0", got)
	}
}

func TestPatchInvalidBlob(t *testing.T) {
	if _, err := dtb.Patch([]byte("not a device tree")); err == nil {
		t.Error("Patch accepted an invalid blob")
	}
}

func TestPatchMissingCPUs(t *testing.T) {
	fdt := testTree()
	fdt.RootNode.Children = fdt.RootNode.Children[1:]

	_, err := dtb.Patch(buildBlob(t, fdt))

	if err == nil || !strings.Contains(err.Error(), "cpu enable methods") {
		t.Errorf("expected cpu enable method error, got %v", err)
	}
}

func TestPatchConflictingPSCI(t *testing.T) {
	fdt := testTree()
	fdt.RootNode.Children = append(fdt.RootNode.Children, &dt.Node{
		Name: "psci",
		Properties: []dt.Property{
			{Name: "compatible", Value: []byte("arm,psci-0.2\x00")},
			{Name: "method", Value: []byte("hvc\x00")},
		},
	})

	_, err := dtb.Patch(buildBlob(t, fdt))

	if err == nil || !strings.Contains(err.Error(), `conduit "hvc"`) {
		t.Errorf("expected conflicting conduit error, got %v", err)
	}
}

func TestPatchPreservesUnknownReservation(t *testing.T) {
	buf := captureLog(t)

	fdt := testTree()
	fdt.ReserveEntries[0].Size = 8192

	patched, err := dtb.Patch(buildBlob(t, fdt))

	if err != nil {
		t.Fatalf("Patch failed, %v", err)
	}

	var kept bool

	for _, r := range parseBlob(t, patched).ReserveEntries {
		if r.Address == 0 && r.Size == 8192 {
			kept = true
		}
	}

	if !kept {
		t.Error("unknown base zero reservation was removed")
	}

	if !bytes.Contains(buf.Bytes(), []byte("keeping unknown /memreserve/ region at 0, size:8192")) {
		t.Error("missing warning for unknown reservation")
	}

	resv := lookupNode(parseBlob(t, patched).RootNode, "reserved-memory")

	if resv == nil || lookupNode(resv, "atf@0") == nil {
		t.Error("firmware reservation missing")
	}
}

func TestRemoveSpintableReservation(t *testing.T) {
	fdt := testTree()

	dtb.RemoveSpintableReservation(fdt)

	if len(fdt.ReserveEntries) != 0 {
		t.Fatalf("expected empty reservation list, got %v", fdt.ReserveEntries)
	}

	// a second pass must be a no-op
	dtb.RemoveSpintableReservation(fdt)

	if len(fdt.ReserveEntries) != 0 {
		t.Fatalf("expected empty reservation list, got %v", fdt.ReserveEntries)
	}
}

func TestPatchTwice(t *testing.T) {
	captureLog(t)

	blob := buildBlob(t, testTree())

	patched, err := dtb.Patch(blob)

	if err != nil {
		t.Fatalf("Patch failed, %v", err)
	}

	// re-running the pipeline on its own output must not fail or
	// duplicate edits
	again, err := dtb.Patch(patched)

	if err != nil {
		t.Fatalf("second Patch failed, %v", err)
	}

	resv := lookupNode(parseBlob(t, again).RootNode, "reserved-memory")

	var count int

	for _, node := range resv.Children {
		if node.Name == "atf@0" {
			count++
		}
	}

	if count != 1 {
		t.Errorf("expected a single atf@0 node, got %d", count)
	}
}
