// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dtb patches the device tree passed down by the VideoCore firmware
// so that the Normal World kernel finds PSCI core bring-up, the firmware
// memory reservation and the interrupt controller fixup in place.
package dtb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/u-root/u-root/pkg/dt"

	"github.com/usbarmory/rpi4-monitor/mem"
)

const (
	// MaxSize bounds the working size of the blob during patching.
	MaxSize = 0x100000

	// The GPU firmware reserves the first page of memory for the
	// spin-table secondary core wake mechanism, superseded by PSCI.
	spintableReservationSize = 4096
)

// GIC-400 interrupt property for the architected PPI 9, active-high
// level-sensitive, delivered to all cores.
var gicInterrupts = [3]uint32{1, 9, 0x0f04}

func u32Property(vals ...uint32) []byte {
	buf := make([]byte, 4*len(vals))

	for i, val := range vals {
		binary.BigEndian.PutUint32(buf[i*4:], val)
	}

	return buf
}

func stringProperty(s string) []byte {
	return append([]byte(s), 0)
}

func lookupNode(parent *dt.Node, name string) *dt.Node {
	for _, node := range parent.Children {
		if node.Name == name {
			return node
		}
	}

	return nil
}

func ensureNode(parent *dt.Node, name string) *dt.Node {
	if node := lookupNode(parent, name); node != nil {
		return node
	}

	node := &dt.Node{Name: name}
	parent.Children = append(parent.Children, node)

	return node
}

func lookupProperty(node *dt.Node, name string) ([]byte, bool) {
	for _, p := range node.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}

	return nil, false
}

func setProperty(node *dt.Node, name string, value []byte) {
	for i, p := range node.Properties {
		if p.Name == name {
			node.Properties[i].Value = value
			return
		}
	}

	node.Properties = append(node.Properties, dt.Property{
		Name:  name,
		Value: value,
	})
}

func deleteProperty(node *dt.Node, name string) {
	for i, p := range node.Properties {
		if p.Name == name {
			node.Properties = append(node.Properties[:i], node.Properties[i+1:]...)
			return
		}
	}
}

// isCompatible matches a node "compatible" string list entry.
func isCompatible(node *dt.Node, want string) bool {
	val, ok := lookupProperty(node, "compatible")

	if !ok {
		return false
	}

	for _, s := range bytes.Split(val, []byte{0}) {
		if string(s) == want {
			return true
		}
	}

	return false
}

func findCompatible(node *dt.Node, want string) *dt.Node {
	if isCompatible(node, want) {
		return node
	}

	for _, child := range node.Children {
		if found := findCompatible(child, want); found != nil {
			return found
		}
	}

	return nil
}

// RemoveSpintableReservation deletes the /memreserve/ entry covering the
// region at the very beginning of memory, where the secondary cores
// originally spin. Overlapping /memreserve/ and /reserved-memory regions
// confuse the Normal World kernel once the firmware reservation is added.
//
// An entry at base zero with an unexpected size probably exists for a
// reason, it is kept with a warning rather than guessed at. Running on a
// blob with no base zero entry is a no-op.
func RemoveSpintableReservation(fdt *dt.FDT) {
	for i, r := range fdt.ReserveEntries {
		if r.Size == 0 {
			return
		}

		if r.Address != 0 {
			continue
		}

		if r.Size == spintableReservationSize {
			fdt.ReserveEntries = append(fdt.ReserveEntries[:i], fdt.ReserveEntries[i+1:]...)
			return
		}

		log.Printf("SM keeping unknown /memreserve/ region at 0, size:%d", r.Size)
	}
}

// addFirmwareReservation inserts a /reserved-memory node covering the
// firmware footprint, so the Normal World never allocates over this stage.
func addFirmwareReservation(fdt *dt.FDT, base uint32, size uint32) error {
	root := fdt.RootNode

	if root == nil {
		return fmt.Errorf("empty device tree")
	}

	resv := lookupNode(root, "reserved-memory")

	if resv == nil {
		resv = ensureNode(root, "reserved-memory")
		setProperty(resv, "#address-cells", u32Property(1))
		setProperty(resv, "#size-cells", u32Property(1))
		setProperty(resv, "ranges", nil)
	}

	name := fmt.Sprintf("atf@%x", base)

	if lookupNode(resv, name) != nil {
		return fmt.Errorf("node %s already present", name)
	}

	addressCells, sizeCells := uint32(1), uint32(1)

	if val, ok := lookupProperty(resv, "#address-cells"); ok && len(val) == 4 {
		addressCells = binary.BigEndian.Uint32(val)
	}

	if val, ok := lookupProperty(resv, "#size-cells"); ok && len(val) == 4 {
		sizeCells = binary.BigEndian.Uint32(val)
	}

	var reg []uint32

	for i := uint32(1); i < addressCells; i++ {
		reg = append(reg, 0)
	}
	reg = append(reg, base)

	for i := uint32(1); i < sizeCells; i++ {
		reg = append(reg, 0)
	}
	reg = append(reg, size)

	node := ensureNode(resv, name)
	setProperty(node, "reg", u32Property(reg...))
	setProperty(node, "no-map", nil)

	return nil
}

// fixupGIC rewrites the interrupt descriptor of the GIC-400 node, routing
// its maintenance interrupt as PPI 9, active-high, to all cores.
func fixupGIC(fdt *dt.FDT) {
	gic := findCompatible(fdt.RootNode, "arm,gic-400")

	if gic == nil {
		log.Printf("SM no GIC-400 node found in device tree")
		return
	}

	setProperty(gic, "interrupts", u32Property(gicInterrupts[:]...))
}

// setStdoutPath records the primary serial console under /chosen.
func setStdoutPath(fdt *dt.FDT, console string) {
	chosen := ensureNode(fdt.RootNode, "chosen")

	setProperty(chosen, "stdout-path", stringProperty(console))
}

// Patch runs the device tree fixup pipeline:
//
//	validate header
//	advertise PSCI and per-core enable methods
//	drop the stale spin-table /memreserve/ entry
//	reserve the firmware footprint
//	fix up the GIC interrupt descriptor
//	set the console hint
//	repack
//
// A header or PSCI failure aborts the remaining steps, a failed reservation
// only warns, earlier edits are never rolled back. The caller is
// responsible for flushing the returned blob to the point of coherency
// before any other observer runs.
func Patch(blob []byte) ([]byte, error) {
	fdt, err := dt.ReadFDT(bytes.NewReader(blob))

	if err != nil {
		return nil, fmt.Errorf("invalid device tree, %v", err)
	}

	if err = addPSCINode(fdt); err != nil {
		return nil, fmt.Errorf("could not add PSCI node, %v", err)
	}

	if err = addCPUEnableMethods(fdt); err != nil {
		return nil, fmt.Errorf("could not add PSCI cpu enable methods, %v", err)
	}

	RemoveSpintableReservation(fdt)

	if err = addFirmwareReservation(fdt, mem.FirmwareBase, mem.FirmwareSize); err != nil {
		log.Printf("SM could not add reserved memory node, %v", err)
	}

	fixupGIC(fdt)

	setStdoutPath(fdt, "serial0")

	buf := &bytes.Buffer{}

	if _, err = fdt.Write(buf); err != nil {
		return nil, fmt.Errorf("could not pack device tree, %v", err)
	}

	if buf.Len() > MaxSize {
		return nil, fmt.Errorf("patched device tree exceeds %d bytes", MaxSize)
	}

	return buf.Bytes(), nil
}
