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
package regs

import (
	"fmt"

	"github.com/golang/glog"
)

type Direction uint8

const (
	Sent Direction = iota
	Received
)

func (d Direction) String() string {
	if d == Received {
		return "<="
	}
	return "=>"
}

// TraceEvent is one byte crossing the transport.
type TraceEvent struct {
	Dir Direction
	Reg Register
	// Command is set for the command byte of an exchange, Byte is then the
	// command code.
	Command bool
	Byte    byte
}

// FormatByte renders b as hex, binary and decimal.
func FormatByte(b byte) string {
	return fmt.Sprintf("0x%02x 0b%08b %3d", b, b, b)
}

func (ev TraceEvent) String() string {
	if ev.Command {
		return fmt.Sprintf("%s %-14s %s", ev.Dir, Command(ev.Byte), FormatByte(ev.Byte))
	}
	return fmt.Sprintf("%s %-14s %s", ev.Dir, ev.Reg, FormatByte(ev.Byte))
}

// TraceSink observes every byte the register client sends or receives. It
// has no influence on the exchange.
type TraceSink interface {
	Trace(ev TraceEvent)
}

type NopTrace struct{}

func (NopTrace) Trace(TraceEvent) {}

// GlogTrace logs bytes at verbosity 4.
type GlogTrace struct{}

func (GlogTrace) Trace(ev TraceEvent) {
	if glog.V(4) {
		glog.Infof("%s", ev)
	}
}

// MultiTrace fans events out to several sinks.
type MultiTrace []TraceSink

func (mt MultiTrace) Trace(ev TraceEvent) {
	for _, s := range mt {
		s.Trace(ev)
	}
}
