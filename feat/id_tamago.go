// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package feat

// defined in id_tamago.s
func read_id_pfr0() uint32
func read_id_pfr1() uint32
func read_id_pfr2() uint32
func read_id_dfr0() uint32
func read_id_mmfr3() uint32
func read_id_mmfr4() uint32
func read_id_isar5() uint32
func read_id_isar6() uint32

// ReadRegs returns the identification registers of the executing core.
func ReadRegs() Regs {
	return Regs{
		IDPFR0:  read_id_pfr0(),
		IDPFR1:  read_id_pfr1(),
		IDPFR2:  read_id_pfr2(),
		IDDFR0:  read_id_dfr0(),
		IDMMFR3: read_id_mmfr3(),
		IDMMFR4: read_id_mmfr4(),
		IDISAR5: read_id_isar5(),
		IDISAR6: read_id_isar6(),
	}
}
