// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package handoff

import (
	"fmt"
	"log"

	"github.com/usbarmory/armory-boot/exec"

	"github.com/usbarmory/rpi4-monitor/mem"
	"github.com/usbarmory/rpi4-monitor/util"
)

// StageSecureELF loads a TamaGo unikernel as Secure World payload, a
// development alternative to the raw StageSecureImage copy which validates
// the image structure and honors its own entry point.
func StageSecureELF(buf []byte) (err error) {
	image := &exec.ELFImage{
		Region: mem.SecureRegion,
		ELF:    buf,
	}

	if err = image.Load(); err != nil {
		return fmt.Errorf("SM could not load secure payload, %v", err)
	}

	entry := image.Entry()

	if sym, err := util.LookupSym(buf, "runtime.main"); err == nil {
		log.Printf("SM loaded secure payload entry:%#x size:%d main:%#x", entry, len(buf), sym.Value)
	} else {
		log.Printf("SM loaded secure payload entry:%#x size:%d", entry, len(buf))
	}

	Set(Secure, Entry{
		PC:     entry,
		SPSR:   entrySPSR(),
		Secure: true,
		Args:   [4]uint32{2: DTBAddress()},
	})

	return
}
