// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package feat_test

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/rpi4-monitor/feat"
)

func TestEvaluateRequiredAbsent(t *testing.T) {
	for _, test := range []struct {
		desc  string
		field uint32
		min   uint32
		max   uint32
		want  []feat.Violation
	}{
		{
			desc:  "absent",
			field: 0,
			min:   1,
			max:   1,
			want:  []feat.Violation{{Name: "PAN"}},
		}, {
			desc:  "present",
			field: 1,
			min:   1,
			max:   1,
		}, {
			desc:  "below minimum version",
			field: 1,
			min:   2,
			max:   2,
			want:  []feat.Violation{{Name: "PAN", Version: 1}},
		}, {
			desc:  "version unknown",
			field: 3,
			min:   1,
			max:   2,
			want:  []feat.Violation{{Name: "PAN", Version: 3, Max: 2, Unknown: true}},
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			reqs := []feat.Requirement{{
				Name:  "PAN",
				Arch:  "ARMv8.1",
				State: feat.Always,
				Field: func(feat.Regs) uint32 { return test.field },
				Min:   test.min,
				Max:   test.max,
			}}

			got := feat.Evaluate(feat.Regs{}, reqs)

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Evaluate diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateDisabledNeverChecked(t *testing.T) {
	reads := 0

	reqs := []feat.Requirement{{
		Name:  "TRF",
		Arch:  "ARMv8.4",
		State: feat.Disabled,
		Field: func(feat.Regs) uint32 { reads++; return 0 },
		Min:   1,
		Max:   1,
	}}

	if got := feat.Evaluate(feat.Regs{}, reqs); got != nil {
		t.Errorf("Evaluate = %v, want no violations", got)
	}

	if reads != 0 {
		t.Errorf("disabled requirement read its register field %d times", reads)
	}
}

func TestEvaluateCheckAcceptsAbsence(t *testing.T) {
	reqs := []feat.Requirement{{
		Name:  "SSBS",
		Arch:  "ARMv8.5",
		State: feat.Check,
		Field: func(feat.Regs) uint32 { return 0 },
		Min:   1,
		Max:   2,
	}}

	if got := feat.Evaluate(feat.Regs{}, reqs); got != nil {
		t.Errorf("Evaluate = %v, want no violations", got)
	}
}

func TestEvaluateReportsAllViolationsInOrder(t *testing.T) {
	// Zeroed identification registers violate every Always requirement
	// of the build policy at once.
	violations := feat.Evaluate(feat.Regs{}, feat.Requirements())

	var got []string

	for _, v := range violations {
		got = append(got, v.Name)
	}

	want := []string{"GENTIMER", "CRC32"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violation order diff (-want +got):\n%s", diff)
	}
}

func TestViolationString(t *testing.T) {
	absent := feat.Violation{Name: "GENTIMER"}

	if got, want := absent.String(), "FEAT_GENTIMER not supported by the PE"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}

	unknown := feat.Violation{Name: "RAS", Version: 3, Max: 2, Unknown: true}

	if got, want := unknown.String(), "FEAT_RAS is version 3, but is only known up to version 2"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestDetectArchFeaturesHalts(t *testing.T) {
	// On hosted builds ReadRegs returns zeroed registers, which violate
	// the Always requirements of the build policy.
	buf := &bytes.Buffer{}

	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	defer func() {
		if recover() == nil {
			t.Fatal("DetectArchFeatures returned despite violations")
		}

		for _, want := range []string{
			"FEAT_GENTIMER not supported by the PE",
			"FEAT_CRC32 not supported by the PE",
		} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("log %q does not contain %q", buf.String(), want)
			}
		}
	}()

	feat.DetectArchFeatures()
}
