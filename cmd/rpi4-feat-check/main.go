// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// rpi4-feat-check evaluates the build feature policy against identification
// register values supplied on the command line, allowing the boot gate
// outcome for a given core to be predicted off-target.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"golang.org/x/sys/cpu"

	"github.com/usbarmory/rpi4-monitor/feat"
)

var (
	regs  feat.Regs
	probe = flag.Bool("probe", false, "compare the policy against the host CPU capabilities")
)

// hwcaps maps requirement names to host capability flags, features with no
// userspace visible capability are omitted.
var hwcaps = map[string]func() bool{
	"AES":   func() bool { return cpu.ARM64.HasAES || cpu.ARM.HasAES },
	"CRC32": func() bool { return cpu.ARM64.HasCRC32 || cpu.ARM.HasCRC32 },
	"RDM":   func() bool { return cpu.ARM64.HasASIMDRDM },
	"FCMA":  func() bool { return cpu.ARM64.HasFCMA },
	"JSCVT": func() bool { return cpu.ARM64.HasJSCVT },
	"DP":    func() bool { return cpu.ARM64.HasASIMDDP },
	"FHM":   func() bool { return cpu.ARM64.HasASIMDFHM },
	"DIT":   func() bool { return cpu.ARM64.HasDIT },
}

// probeHost reports policy outcomes from host capabilities alone, presence
// only, version fields are not visible to userspace.
func probeHost() (violations int) {
	for _, req := range feat.Requirements() {
		if req.State == feat.Disabled {
			continue
		}

		has, known := hwcaps[req.Name]

		if !known {
			continue
		}

		if has() {
			fmt.Printf("FEAT_%s present\n", req.Name)
		} else if req.State == feat.Always {
			fmt.Printf("FEAT_%s not supported by the host\n", req.Name)
			violations++
		} else {
			fmt.Printf("FEAT_%s absent (check only)\n", req.Name)
		}
	}

	return
}

func init() {
	reg := func(p *uint32, name string, usage string) {
		flag.Func(name, usage, func(s string) error {
			val, err := strconv.ParseUint(s, 0, 32)

			if err == nil {
				*p = uint32(val)
			}

			return err
		})
	}

	reg(&regs.IDPFR0, "id-pfr0", "ID_PFR0 register value")
	reg(&regs.IDPFR1, "id-pfr1", "ID_PFR1 register value")
	reg(&regs.IDPFR2, "id-pfr2", "ID_PFR2 register value")
	reg(&regs.IDDFR0, "id-dfr0", "ID_DFR0 register value")
	reg(&regs.IDMMFR3, "id-mmfr3", "ID_MMFR3 register value")
	reg(&regs.IDMMFR4, "id-mmfr4", "ID_MMFR4 register value")
	reg(&regs.IDISAR5, "id-isar5", "ID_ISAR5 register value")
	reg(&regs.IDISAR6, "id-isar6", "ID_ISAR6 register value")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *probe {
		if n := probeHost(); n > 0 {
			glog.Flush()
			os.Exit(1)
		}

		return
	}

	violations := feat.Evaluate(regs, feat.Requirements())

	for _, v := range violations {
		fmt.Println(v)
	}

	if len(violations) > 0 {
		glog.Flush()
		os.Exit(1)
	}

	fmt.Println("feature policy satisfied")
}
