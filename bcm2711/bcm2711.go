// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Package bcm2711 provides hardware initialization for the Broadcom BCM2711
// SoC (Raspberry Pi 4) low peripheral mode.
package bcm2711

import (
	"github.com/usbarmory/tamago/arm"
)

// Peripheral registers, low peripheral mode
const (
	PeripheralBase = 0xfe000000

	// PL011 primary UART
	UART0Base = PeripheralBase + 0x201000

	// per-core local peripherals
	LocalControl   = 0xff800000
	LocalPrescaler = 0xff800008

	// GIC-400
	GICBase = 0xff840000

	// generic timer frequency set by the boot stub
	RefFreq = 54000000
)

// ARM processing core instance
var ARM = &arm.CPU{}

// UART0 primary serial console instance
var UART0 = &UART{
	Base: UART0Base,
}

// Init takes over the hardware left behind by the VideoCore firmware: the
// per-core timer source is reset, caches and the MMU are enabled and the
// serial console is brought up.
func Init() {
	// route the crystal oscillator to the core timers, 1:1
	write32(LocalControl, 0)
	write32(LocalPrescaler, 0x80000000)

	// let the prescaler settle, timers are not up yet
	for i := 0; i < 150; i++ {
		write32(LocalControl, 0)
	}

	ARM.Init()
	ARM.EnableVFP()

	// required to take advantage of data cache
	ARM.InitMMU()
	ARM.EnableCache()

	ARM.InitGenericTimers(0, RefFreq)

	UART0.Init()
}

// InitGIC initializes the GIC-400 interrupt controller, with Secure World
// interrupt routing and NonSecure World group assignment for everything
// else.
func InitGIC() {
	arm.InitGIC(GICBase)
}
