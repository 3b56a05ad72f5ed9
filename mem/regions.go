// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"github.com/usbarmory/tamago/dma"
)

var (
	SecureRegion    *dma.Region
	NonSecureRegion *dma.Region
)

// Init reserves the memory regions where the next-stage images execute, so
// that the monitor runtime never allocates within them.
func Init() {
	SecureRegion = &dma.Region{
		Start: SecureStart,
		Size:  SecureSize,
	}

	SecureRegion.Init()
	SecureRegion.Reserve(SecureSize, 0)

	NonSecureRegion = &dma.Region{
		Start: NonSecureStart,
		Size:  NonSecureSize,
	}

	NonSecureRegion.Init()
	NonSecureRegion.Reserve(NonSecureSize, 0)
}
