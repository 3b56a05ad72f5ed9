// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package handoff

import (
	"log"

	"github.com/usbarmory/rpi4-monitor/mem"
)

// StageSecureImage copies the Secure World payload appended to the firmware
// image to its run address and registers its dispatch entry.
//
// The copy is a raw, fixed-offset, fixed-size transfer with no bounds or
// integrity validation: the payload must be exactly placed and sized by the
// image build, an undersized payload drags adjacent memory along and an
// absent one stages garbage. See StageSecureELF for a checked alternative
// during development.
func StageSecureImage() {
	log.Printf("SM copy secure payload (%d bytes) from %#x to %#x", mem.SecureImageSize, uint32(mem.SecureImageOffset), uint32(mem.SecureEntry))

	imageCopy(mem.SecureEntry, mem.SecureImageOffset, mem.SecureImageSize)

	InitSecureEntry()
}
