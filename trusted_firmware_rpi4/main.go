// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/rpi4-monitor/bcm2711"
	"github.com/usbarmory/rpi4-monitor/feat"
	"github.com/usbarmory/rpi4-monitor/handoff"
	"github.com/usbarmory/rpi4-monitor/mem"
	"github.com/usbarmory/rpi4-monitor/trusted_firmware_rpi4/cmd"
	"github.com/usbarmory/rpi4-monitor/trusted_firmware_rpi4/internal"
	"github.com/usbarmory/rpi4-monitor/xlat"
)

// Console enables the interactive debug console before Normal World boot
// (see `-ldflags -X`).
var Console string

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = mem.MonitorStart

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = mem.MonitorSize

//go:linkname hwinit runtime.hwinit
func hwinit() {
	bcm2711.Init()
}

//go:linkname printk runtime.printk
func printk(c byte) {
	bcm2711.UART0.Tx(c)
}

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	// Keep the DMA pool clear of Normal World memory.
	dma.Init(mem.MonitorDMAStart, mem.MonitorDMASize)
	mem.Init()

	cmd.Banner = fmt.Sprintf("%s/%s (%s) • TEE security monitor (Secure World)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func main() {
	log.Printf("SM %s", cmd.Banner)

	// Halts on a core that does not implement the build feature policy,
	// nothing else may run first.
	feat.DetectArchFeatures()

	// The handoff block lives in the first page of memory, capture it
	// before the address space is reconfigured.
	handoff.Capture(handoff.ReadStub())

	handoff.StageSecureImage()
	handoff.InitNonSecureEntry()

	xlat.Configure(&bcm2711.MMU{}, handoff.DTBAddress())

	if err := patchDTB(); err != nil {
		log.Printf("SM could not patch device tree, %v", err)
	}

	bcm2711.InitGIC()

	if Console != "" {
		cmd.SerialConsole(bcm2711.UART0)
	}

	// Both staged images run on cold boot, Secure World payload first.
	if err := fw.BootBoth(); err != nil {
		log.Fatalf("SM could not boot next-stage images, %v", err)
	}
}
