// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"log"
	"os"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/rpi4-monitor/bcm2711"
	"github.com/usbarmory/rpi4-monitor/mem"
)

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = mem.NonSecureOSStart

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = mem.NonSecureOSSize

//go:linkname hwinit runtime.hwinit
func hwinit() {
	bcm2711.Init()
}

//go:linkname printk runtime.printk
func printk(c byte) {
	printSecure(c)
}

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)
}

func main() {
	log.Printf("%s/%s (%s) • system/supervisor (Non-secure)", runtime.GOOS, runtime.GOARCH, runtime.Version())

	// yield back to secure monitor
	log.Printf("supervisor is about to yield back")
	exit()

	// this should be unreachable
	log.Printf("supervisor says goodbye")
}
