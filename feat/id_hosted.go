// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago

package feat

// ReadRegs returns an empty identification register set on hosted builds,
// conformance tooling supplies explicit values instead (see
// cmd/rpi4-feat-check).
func ReadRegs() Regs {
	return Regs{}
}
