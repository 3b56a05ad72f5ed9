// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago

package handoff

// On hosted builds the staging copy is routed through a variable so tests
// can observe it without touching physical memory.
var imageCopy = func(dst uint32, src uint32, n int) {}
