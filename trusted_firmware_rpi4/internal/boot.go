// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fw

import (
	"fmt"
	"log"
	"sync"

	"github.com/usbarmory/tamago/arm"

	"github.com/usbarmory/GoTEE/monitor"

	"github.com/usbarmory/rpi4-monitor/handoff"
	"github.com/usbarmory/rpi4-monitor/mem"
)

// Load builds the execution context for the registered next-stage image of
// a security state.
func Load(s handoff.State) (ctx *monitor.ExecCtx, err error) {
	e, ok := handoff.NextImage(s)

	if !ok {
		return nil, fmt.Errorf("no %s image registered", s)
	}

	region := mem.NonSecureRegion

	if e.Secure {
		region = mem.SecureRegion
	}

	if ctx, err = monitor.Load(e.PC, region, e.Secure); err != nil {
		return nil, fmt.Errorf("could not load %s image, %v", s, err)
	}

	ctx.R0 = e.Args[0]
	ctx.R1 = e.Args[1]
	ctx.R2 = e.Args[2]
	ctx.R3 = e.Args[3]
	ctx.SPSR = e.SPSR

	// set stack pointer to the end of the image memory
	ctx.R13 = region.Start + uint32(region.Size)

	ctx.Handler = logHandler
	ctx.Debug = true

	log.Printf("SM loaded %s image addr:%#x entry:%#x", s, ctx.Memory.Start, ctx.R15)

	return
}

// Boot de-escalates into the registered next-stage image of a security
// state, it returns when the image yields back or stops.
func Boot(s handoff.State) (err error) {
	ctx, err := Load(s)

	if err != nil {
		return
	}

	run(ctx, nil)

	return
}

// BootBoth de-escalates into both registered next-stage images, Secure
// World payload first, scheduling their monitor contexts concurrently.
func BootBoth() (err error) {
	var wg sync.WaitGroup

	sctx, err := Load(handoff.Secure)

	if err != nil {
		log.Printf("SM no secure payload, %v", err)
	}

	nsctx, err := Load(handoff.NonSecure)

	if err != nil {
		return
	}

	if sctx != nil {
		wg.Add(1)
		go run(sctx, &wg)
	}

	wg.Add(1)
	go run(nsctx, &wg)

	log.Printf("SM waiting for payload and kernel")
	wg.Wait()

	return
}

func run(ctx *monitor.ExecCtx, wg *sync.WaitGroup) {
	mode := arm.ModeName(int(ctx.SPSR) & 0x1f)
	ns := ctx.NonSecure()

	log.Printf("SM starting mode:%s ns:%v sp:%#.8x pc:%#.8x", mode, ns, ctx.R13, ctx.R15)

	err := ctx.Run()

	if wg != nil {
		wg.Done()
	}

	log.Printf("SM stopped mode:%s ns:%v sp:%#.8x lr:%#.8x pc:%#.8x err:%v", mode, ns, ctx.R13, ctx.R14, ctx.R15, err)
}
