// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package handoff

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/rpi4-monitor/mem"
)

func reset() {
	params = Params{StubMagic: mem.StubMagic}
	preloadedKernel = 0
	preloadedDTB = 0
	entries = [2]Entry{}
}

func capturedLog(t *testing.T, fn func()) string {
	t.Helper()

	buf := &bytes.Buffer{}

	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	fn()

	return buf.String()
}

func TestNonSecureEntry(t *testing.T) {
	for _, test := range []struct {
		desc      string
		p         Params
		preloaded uint32
		want      uint32
		wantWarn  bool
	}{
		{
			desc: "valid sentinel",
			p:    Params{StubMagic: 0, KernelEntry: 0x200000},
			want: 0x200000,
		}, {
			desc:     "sentinel not cleared",
			p:        Params{StubMagic: mem.StubMagic, KernelEntry: 0x200000},
			want:     mem.DefaultKernelEntry,
			wantWarn: true,
		}, {
			desc:      "preloaded override",
			p:         Params{StubMagic: mem.StubMagic},
			preloaded: 0x1000000,
			want:      0x1000000,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			reset()
			Capture(test.p)
			preloadedKernel = test.preloaded

			var got uint32

			out := capturedLog(t, func() {
				got = NonSecureEntry()
			})

			if got != test.want {
				t.Errorf("NonSecureEntry = %#x, want %#x", got, test.want)
			}

			if warned := strings.Contains(out, "stub magic failure"); warned != test.wantWarn {
				t.Errorf("warning logged = %v, want %v (%q)", warned, test.wantWarn, out)
			}

			// accessors must be idempotent
			if again := NonSecureEntry(); again != got {
				t.Errorf("second NonSecureEntry = %#x, want %#x", again, got)
			}
		})
	}
}

func TestDTBAddress(t *testing.T) {
	reset()
	Capture(Params{StubMagic: 0, DTBPtr: 0x2eff2600})

	if got := DTBAddress(); got != 0x2eff2600 {
		t.Errorf("DTBAddress = %#x, want %#x", got, 0x2eff2600)
	}

	reset()
	Capture(Params{StubMagic: mem.StubMagic, DTBPtr: 0x2eff2600})

	var got uint32

	out := capturedLog(t, func() {
		got = DTBAddress()
	})

	if got != 0 {
		t.Errorf("DTBAddress = %#x, want 0", got)
	}

	if !strings.Contains(out, "DTB address unknown") {
		t.Errorf("missing warning in log %q", out)
	}
}

func TestNextImage(t *testing.T) {
	reset()

	if _, ok := NextImage(Secure); ok {
		t.Error("NextImage(Secure) reported an image before staging")
	}

	if _, ok := NextImage(NonSecure); ok {
		t.Error("NextImage(NonSecure) reported an image before setup")
	}

	Capture(Params{StubMagic: 0, DTBPtr: 0x2eff2600, KernelEntry: 0x200000})

	var copied []uint32

	imageCopy = func(dst uint32, src uint32, n int) {
		copied = []uint32{dst, src, uint32(n)}
	}
	defer func() { imageCopy = func(uint32, uint32, int) {} }()

	capturedLog(t, func() {
		StageSecureImage()
		InitNonSecureEntry()
	})

	want := []uint32{mem.SecureEntry, mem.SecureImageOffset, mem.SecureImageSize}

	if diff := cmp.Diff(want, copied); diff != "" {
		t.Errorf("staging copy diff (-want +got):\n%s", diff)
	}

	e, ok := NextImage(Secure)

	if !ok {
		t.Fatal("NextImage(Secure) reported no image after staging")
	}

	if e.PC != mem.SecureEntry || !e.Secure {
		t.Errorf("secure entry = %+v, want pc %#x, secure", e, uint32(mem.SecureEntry))
	}

	if e.Args[2] != 0x2eff2600 {
		t.Errorf("secure r2 = %#x, want DTB address", e.Args[2])
	}

	e, ok = NextImage(NonSecure)

	if !ok {
		t.Fatal("NextImage(NonSecure) reported no image after setup")
	}

	if e.PC != 0x200000 || e.Secure {
		t.Errorf("non-secure entry = %+v, want pc 0x200000, non-secure", e)
	}

	if e.Args[0] != 0 || e.Args[1] != ^uint32(0) || e.Args[2] != 0x2eff2600 {
		t.Errorf("kernel boot registers = %#x, want r0=0 r1=~0 r2=dtb", e.Args)
	}
}

func TestColdBootRegistersBothWorlds(t *testing.T) {
	reset()
	Capture(Params{StubMagic: 0, DTBPtr: 0x2eff2600, KernelEntry: 0x200000})

	capturedLog(t, func() {
		StageSecureImage()
		InitNonSecureEntry()
	})

	// cold boot setup must leave a consumable dispatch entry for each
	// security state
	for _, s := range []State{Secure, NonSecure} {
		if _, ok := NextImage(s); !ok {
			t.Errorf("no %s image registered after cold boot setup", s)
		}
	}
}

func TestNextImageInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NextImage accepted an invalid security state")
		}
	}()

	NextImage(State(42))
}
