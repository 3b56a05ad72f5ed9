// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package bcm2711

// PL011 registers
const (
	uartDR   = 0x00
	uartFR   = 0x18
	uartIBRD = 0x24
	uartFBRD = 0x28
	uartLCRH = 0x2c
	uartCR   = 0x30
	uartICR  = 0x44

	frRXFE = 1 << 4
	frTXFF = 1 << 5

	// 8 bit words, FIFOs enabled
	lcrhFEN   = 1 << 4
	lcrhWLEN8 = 3 << 5

	crUARTEN = 1 << 0
	crTXE    = 1 << 8
	crRXE    = 1 << 9
)

// GPIO registers for the console pins
const (
	gpioFSEL1    = PeripheralBase + 0x200004
	gpioPullCtl0 = PeripheralBase + 0x2000e4
)

// UART represents a PL011 serial port instance.
type UART struct {
	// Base register
	Base uint32
}

// Init initializes the serial port at 115200bps, routing GPIO14 and GPIO15
// to its transmit and receive lines.
func (hw *UART) Init() {
	write32(hw.Base+uartCR, 0)

	// GPIO14, GPIO15: ALT0 (TXD0, RXD0), no pull
	fsel := read32(gpioFSEL1)
	fsel &= ^uint32(0b111111 << 12)
	fsel |= 0b100100 << 12
	write32(gpioFSEL1, fsel)

	pull := read32(gpioPullCtl0)
	pull &= ^uint32(0b1111 << 28)
	write32(gpioPullCtl0, pull)

	// clear pending interrupts
	write32(hw.Base+uartICR, 0x7ff)

	// 115200bps from the 48MHz UART reference clock
	write32(hw.Base+uartIBRD, 26)
	write32(hw.Base+uartFBRD, 3)

	write32(hw.Base+uartLCRH, lcrhFEN|lcrhWLEN8)
	write32(hw.Base+uartCR, crUARTEN|crTXE|crRXE)
}

// Tx transmits a single character to the serial port.
//
//go:nosplit
func (hw *UART) Tx(c byte) {
	wait32(hw.Base+uartFR, frTXFF, 0)
	write32(hw.Base+uartDR, uint32(c))
}

// Rx receives a single character from the serial port.
func (hw *UART) Rx() (c byte, valid bool) {
	if read32(hw.Base+uartFR)&frRXFE != 0 {
		return
	}

	return byte(read32(hw.Base + uartDR)), true
}

// Write data from buffer to serial port.
func (hw *UART) Write(buf []byte) (n int, err error) {
	for n = 0; n < len(buf); n++ {
		hw.Tx(buf[n])
	}

	return
}

// Read available data to buffer from serial port.
func (hw *UART) Read(buf []byte) (n int, err error) {
	var valid bool

	for n = 0; n < len(buf); n++ {
		buf[n], valid = hw.Rx()

		if !valid {
			break
		}
	}

	return
}
