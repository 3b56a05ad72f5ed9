// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package feat

// Regs holds the CP15 c0 identification registers relevant to the feature
// requirement table.
type Regs struct {
	IDPFR0  uint32
	IDPFR1  uint32
	IDPFR2  uint32
	IDDFR0  uint32
	IDMMFR3 uint32
	IDMMFR4 uint32
	IDISAR5 uint32
	IDISAR6 uint32
}

// Identification register field offsets (ARM Architecture Reference Manual,
// AArch32 System Register Descriptions).
const (
	pfr0CSV2 = 16
	pfr0AMU  = 20
	pfr0DIT  = 24
	pfr0RAS  = 28

	pfr1GenTimer = 16

	pfr2CSV3 = 0
	pfr2SSBS = 4

	dfr0TraceFilt = 28

	mmfr3PAN = 16

	mmfr4CnP = 12

	isar5AES   = 4
	isar5CRC32 = 16
	isar5RDM   = 24
	isar5VCMA  = 28

	isar6JSCVT = 0
	isar6DP    = 4
	isar6FHM   = 8
	isar6SB    = 12
	isar6BF16  = 20
	isar6I8MM  = 24
)

func field(reg uint32, shift int) uint32 {
	return (reg >> shift) & 0xf
}
