// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dtb

import (
	"bytes"
	"fmt"

	"github.com/u-root/u-root/pkg/dt"
)

// addPSCINode advertises PSCI as the core power control interface, invoked
// through SMC. A pre-existing node conforming to an incompatible conduit is
// an error, as the blob author and this stage disagree on who owns core
// bring-up.
func addPSCINode(fdt *dt.FDT) error {
	root := fdt.RootNode

	if root == nil {
		return fmt.Errorf("empty device tree")
	}

	psci := lookupNode(root, "psci")

	if psci != nil {
		if val, ok := lookupProperty(psci, "method"); ok && !bytes.Equal(val, stringProperty("smc")) {
			return fmt.Errorf("psci node already present with conduit %q", bytes.TrimRight(val, "\x00"))
		}
	} else {
		psci = ensureNode(root, "psci")
	}

	compatible := append(stringProperty("arm,psci-1.0"), stringProperty("arm,psci-0.2")...)

	setProperty(psci, "compatible", compatible)
	setProperty(psci, "method", stringProperty("smc"))

	return nil
}

// addCPUEnableMethods marks every core under /cpus as PSCI enabled,
// superseding any spin-table release method left by the GPU firmware.
func addCPUEnableMethods(fdt *dt.FDT) error {
	cpus := lookupNode(fdt.RootNode, "cpus")

	if cpus == nil {
		return fmt.Errorf("no /cpus node")
	}

	var found bool

	for _, node := range cpus.Children {
		if val, ok := lookupProperty(node, "device_type"); !ok || !bytes.Equal(val, stringProperty("cpu")) {
			continue
		}

		setProperty(node, "enable-method", stringProperty("psci"))
		deleteProperty(node, "cpu-release-addr")
		found = true
	}

	if !found {
		return fmt.Errorf("no cpu nodes under /cpus")
	}

	return nil
}
