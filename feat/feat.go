// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package feat validates the build time CPU feature policy against the
// identification registers of the processor executing the firmware.
//
// Context save/restore for the worlds managed by the monitor assumes that
// every feature enabled at build time is implemented by the core, booting
// past a missing one would fault much later and far away from the cause.
// The gate therefore runs before anything else and stops the boot outright
// on the first evaluation pass that records a violation.
package feat

import (
	"fmt"
	"log"
)

// Feature requirement states, set at build time for each table entry.
const (
	// Disabled features are never checked nor used.
	Disabled = iota
	// Always features must be implemented by the core.
	Always
	// Check features are used only when detected, their presence is
	// not required.
	Check
)

// Requirement represents the build time policy for a single architectural
// feature.
type Requirement struct {
	// Name is the feature name, without the FEAT_ prefix.
	Name string
	// Arch is the architecture version introducing the feature.
	Arch string
	// State is one of Disabled, Always, Check.
	State int
	// Field returns the identification register field for the feature.
	Field func(Regs) uint32
	// Min is the smallest field value indicating a usable feature.
	Min uint32
	// Max is the largest field value known to this build.
	Max uint32
}

// Violation represents a single failed requirement.
type Violation struct {
	// Name is the feature name of the violated requirement.
	Name string
	// Version is the field value reported by the core.
	Version uint32
	// Max is the largest field value known to the build, relevant when
	// Unknown is set.
	Max uint32
	// Unknown flags a reported version newer than the build understands,
	// as opposed to a missing feature.
	Unknown bool
}

func (v Violation) String() string {
	if v.Unknown {
		return fmt.Sprintf("FEAT_%s is version %d, but is only known up to version %d", v.Name, v.Version, v.Max)
	}

	return fmt.Sprintf("FEAT_%s not supported by the PE", v.Name)
}

// Evaluate checks every requirement against the passed identification
// registers and returns all recorded violations, in table order.
//
// Disabled requirements are skipped without reading any register field.
// Always requirements record a violation when the reported version is below
// the minimum. Always and Check requirements record a violation when the
// reported version exceeds the maximum the build understands.
func Evaluate(regs Regs, reqs []Requirement) (violations []Violation) {
	for _, req := range reqs {
		if req.State == Disabled {
			continue
		}

		field := req.Field(regs)

		if req.State == Always && field < req.Min {
			violations = append(violations, Violation{
				Name:    req.Name,
				Version: field,
			})
		}

		if field > req.Max {
			violations = append(violations, Violation{
				Name:    req.Name,
				Version: field,
				Max:     req.Max,
				Unknown: true,
			})
		}
	}

	return
}

// DetectArchFeatures evaluates the build feature policy against the running
// core, logging one line per violated requirement. It does not return if any
// violation is recorded, there is no degraded mode past this point.
func DetectArchFeatures() {
	violations := Evaluate(ReadRegs(), Requirements())

	for _, v := range violations {
		log.Printf("SM %s", v)
	}

	if len(violations) > 0 {
		panic("PE does not meet build feature requirements")
	}
}
