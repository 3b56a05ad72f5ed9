// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fw

import (
	"errors"

	"github.com/usbarmory/GoTEE/monitor"
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/rpi4-monitor/util"
)

// Console is the active debug console, when one is running its terminal
// receives color coded world logs.
var Console *util.Console

// logHandler overrides the GoTEE default handler to avoid interleaved logs,
// as the monitor and the de-escalated contexts log simultaneously.
func logHandler(ctx *monitor.ExecCtx) (err error) {
	defaultHandler := monitor.SecureHandler

	if ctx.NonSecure() {
		defaultHandler = monitor.NonSecureHandler
	}

	switch {
	case ctx.R0 == syscall.SYS_WRITE:
		if Console != nil && Console.Term != nil {
			util.BufferedTermLog(byte(ctx.R1), !ctx.NonSecure(), Console.Term)
		} else {
			util.BufferedStdoutLog(byte(ctx.R1), !ctx.NonSecure())
		}
	case ctx.NonSecure() && ctx.R0 == syscall.SYS_EXIT:
		if ctx.Debug {
			ctx.Print()
		}

		return errors.New("exit")
	default:
		err = defaultHandler(ctx)
	}

	return
}
