//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/juju/errors"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/probe/regs"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// colorTrace prints every exchanged byte, one per line. Colors are per
// instance; the fatih/color global switch is never touched.
type colorTrace struct {
	mu   sync.Mutex
	w    io.Writer
	cmd  *color.Color
	sent *color.Color
	recv *color.Color
}

func newColorTrace(w io.Writer, colored bool) *colorTrace {
	ct := &colorTrace{
		w:    w,
		cmd:  color.New(color.FgYellow, color.Bold),
		sent: color.New(color.FgCyan),
		recv: color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{ct.cmd, ct.sent, ct.recv} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return ct
}

func (ct *colorTrace) Trace(ev regs.TraceEvent) {
	c := ct.recv
	switch {
	case ev.Command:
		c = ct.cmd
	case ev.Dir == regs.Sent:
		c = ct.sent
	}
	ct.mu.Lock()
	defer ct.mu.Unlock()
	c.Fprintln(ct.w, ev.String())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func wantColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	case colorAuto:
		return isTerminal(w) && os.Getenv("TERM") != "dumb", nil
	}
	return false, errors.NotValidf("color mode %q", mode)
}

// newTraceFromFlags returns the --trace sink writing to w, or nil if tracing
// is off.
func newTraceFromFlags(w *os.File) (regs.TraceSink, error) {
	if !*flags.Trace {
		return nil, nil
	}
	colored, err := wantColor(*flags.Color, w)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var out io.Writer = w
	if colored {
		// Translates escape sequences on Windows consoles.
		out = colorable.NewColorable(w)
	}
	fmt.Fprintf(out, "%-2s %-14s %-4s %-10s %3s\n", "", "register", "hex", "binary", "dec")
	return newColorTrace(out, colored), nil
}
