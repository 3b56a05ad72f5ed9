// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package feat

// Build feature policy.
//
// Each feature carries one of three states: Disabled features are compiled
// out of use entirely, Always features are mandatory on the target core and
// halt the boot when missing, Check features are detected and used
// adaptively by the components that need them.
//
// The defaults match the BCM2711 Cortex-A72 (ARMv8.0), anything the A72
// does not implement is either Disabled or Check.
const (
	EnableFeatGENTIMER = Always
	EnableFeatCRC32    = Always
	EnableFeatAES      = Check
	EnableFeatSB       = Check
	EnableFeatCSV2_2   = Check
	EnableFeatPAN      = Check
	EnableFeatRDM      = Disabled
	EnableFeatRAS      = Check
	EnableFeatTTCNP    = Check
	EnableFeatFCMA     = Disabled
	EnableFeatJSCVT    = Disabled
	EnableFeatDIT      = Check
	EnableFeatAMU      = Disabled
	EnableFeatTRF      = Disabled
	EnableFeatDP       = Disabled
	EnableFeatFHM      = Disabled
	EnableFeatSSBS     = Check
	EnableFeatCSV3     = Check
	EnableFeatAMUv1p1  = Disabled
	EnableFeatECV      = Check
	EnableFeatBF16     = Disabled
	EnableFeatI8MM     = Disabled
)

// Requirements returns the feature requirement table, ordered by the
// architecture version introducing each feature. The order is fixed, it
// determines diagnostic output.
func Requirements() []Requirement {
	return []Requirement{
		// ARMv7
		{"GENTIMER", "ARMv7", EnableFeatGENTIMER, func(r Regs) uint32 { return field(r.IDPFR1, pfr1GenTimer) }, 1, 2},

		// ARMv8.0
		{"CRC32", "ARMv8.0", EnableFeatCRC32, func(r Regs) uint32 { return field(r.IDISAR5, isar5CRC32) }, 1, 1},
		{"AES", "ARMv8.0", EnableFeatAES, func(r Regs) uint32 { return field(r.IDISAR5, isar5AES) }, 1, 2},
		{"SB", "ARMv8.0", EnableFeatSB, func(r Regs) uint32 { return field(r.IDISAR6, isar6SB) }, 1, 1},
		{"CSV2_2", "ARMv8.0", EnableFeatCSV2_2, func(r Regs) uint32 { return field(r.IDPFR0, pfr0CSV2) }, 2, 2},

		// ARMv8.1
		{"PAN", "ARMv8.1", EnableFeatPAN, func(r Regs) uint32 { return field(r.IDMMFR3, mmfr3PAN) }, 1, 3},
		{"RDM", "ARMv8.1", EnableFeatRDM, func(r Regs) uint32 { return field(r.IDISAR5, isar5RDM) }, 1, 1},

		// ARMv8.2
		{"RAS", "ARMv8.2", EnableFeatRAS, func(r Regs) uint32 { return field(r.IDPFR0, pfr0RAS) }, 1, 2},
		{"TTCNP", "ARMv8.2", EnableFeatTTCNP, func(r Regs) uint32 { return field(r.IDMMFR4, mmfr4CnP) }, 1, 1},

		// ARMv8.3
		{"FCMA", "ARMv8.3", EnableFeatFCMA, func(r Regs) uint32 { return field(r.IDISAR5, isar5VCMA) }, 1, 2},
		{"JSCVT", "ARMv8.3", EnableFeatJSCVT, func(r Regs) uint32 { return field(r.IDISAR6, isar6JSCVT) }, 1, 1},

		// ARMv8.4
		{"DIT", "ARMv8.4", EnableFeatDIT, func(r Regs) uint32 { return field(r.IDPFR0, pfr0DIT) }, 1, 1},
		{"AMUv1", "ARMv8.4", EnableFeatAMU, func(r Regs) uint32 { return field(r.IDPFR0, pfr0AMU) }, 1, 2},
		{"TRF", "ARMv8.4", EnableFeatTRF, func(r Regs) uint32 { return field(r.IDDFR0, dfr0TraceFilt) }, 1, 1},
		{"DP", "ARMv8.4", EnableFeatDP, func(r Regs) uint32 { return field(r.IDISAR6, isar6DP) }, 1, 1},
		{"FHM", "ARMv8.4", EnableFeatFHM, func(r Regs) uint32 { return field(r.IDISAR6, isar6FHM) }, 1, 1},

		// ARMv8.5
		{"SSBS", "ARMv8.5", EnableFeatSSBS, func(r Regs) uint32 { return field(r.IDPFR2, pfr2SSBS) }, 1, 2},
		{"CSV3", "ARMv8.5", EnableFeatCSV3, func(r Regs) uint32 { return field(r.IDPFR2, pfr2CSV3) }, 1, 1},

		// ARMv8.6
		{"AMUv1p1", "ARMv8.6", EnableFeatAMUv1p1, func(r Regs) uint32 { return field(r.IDPFR0, pfr0AMU) }, 2, 2},
		{"ECV", "ARMv8.6", EnableFeatECV, func(r Regs) uint32 { return field(r.IDPFR1, pfr1GenTimer) }, 2, 2},
		{"BF16", "ARMv8.6", EnableFeatBF16, func(r Regs) uint32 { return field(r.IDISAR6, isar6BF16) }, 1, 1},
		{"I8MM", "ARMv8.6", EnableFeatI8MM, func(r Regs) uint32 { return field(r.IDISAR6, isar6I8MM) }, 1, 1},
	}
}
