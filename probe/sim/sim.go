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
// Package sim is a software model of the probe. It speaks the same byte
// protocol as the hardware and backs the AXI master with a sparse word
// memory, so everything above the transport can run without a board.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/probe/regs"
	"github.com/mongoose-os/axiprobe/probe/transport"
)

// WordSize is how far the address advances after a transaction with
// auto-increment enabled.
const WordSize = 4

type Options struct {
	// Latency is the number of CSR reads a transaction stays busy for before
	// completing. 0 completes on the GO write.
	Latency int
	// Fault picks the response code for a transaction. nil means OKAY for
	// every address.
	Fault func(write bool, addr uint32) regs.Response
}

// Probe implements transport.Session.
type Probe struct {
	mu   sync.Mutex
	opts Options

	gpi   [4]byte
	gpo   [4]byte
	addr  uint32
	rdata uint32
	wdata uint32
	rcsr  regs.CSR
	wcsr  regs.CSR
	// Remaining CSR reads until the transaction on that side completes.
	rbusy int
	wbusy int
	mem   map[uint32]uint32

	pending     regs.Register
	havePending bool
	out         []byte
	wire        []byte
	closed      bool
}

func New(opts *Options) *Probe {
	p := &Probe{mem: map[uint32]uint32{}}
	if opts != nil {
		p.opts = *opts
	}
	return p
}

func (p *Probe) SendByte(ctx context.Context, b byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.Trace(transport.ErrNotOpen)
	}
	p.wire = append(p.wire, b)
	if p.havePending {
		p.havePending = false
		p.writeReg(p.pending, b)
		return nil
	}
	reg, dir, ok := regs.Command(b).Decode()
	if !ok {
		glog.Warningf("sim: ignoring unknown command 0x%02x", b)
		return nil
	}
	if dir == regs.AccessRead {
		p.out = append(p.out, p.readReg(reg))
	} else {
		p.pending, p.havePending = reg, true
	}
	return nil
}

func (p *Probe) RecvByte(ctx context.Context, timeout time.Duration) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Trace(err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.Trace(transport.ErrNotOpen)
	}
	if len(p.out) == 0 {
		return 0, errors.Timeoutf("reading from sim after %s", timeout)
	}
	b := p.out[0]
	p.out = p.out[1:]
	return b, nil
}

func (p *Probe) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

func (p *Probe) RemoteAddr() string {
	return "sim"
}

func (p *Probe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func setByte(w uint32, i int, b byte) uint32 {
	bs := regs.SplitWord(w)
	bs[i] = b
	return regs.JoinWord(bs)
}

func fieldIndex(r, base regs.Register) int {
	return int(r - base)
}

func (p *Probe) readReg(r regs.Register) byte {
	switch {
	case r >= regs.GPI0 && r <= regs.GPI3:
		return p.gpi[fieldIndex(r, regs.GPI0)]
	case r >= regs.GPO0 && r <= regs.GPO3:
		return p.gpo[fieldIndex(r, regs.GPO0)]
	case r >= regs.AXIAddr0 && r <= regs.AXIAddr3:
		return regs.SplitWord(p.addr)[fieldIndex(r, regs.AXIAddr0)]
	case r >= regs.AXIReadData0 && r <= regs.AXIReadData3:
		return regs.SplitWord(p.rdata)[fieldIndex(r, regs.AXIReadData0)]
	case r == regs.AXIReadCSR:
		if p.rbusy > 0 {
			if p.rbusy--; p.rbusy == 0 {
				p.completeRead()
			}
		}
		return byte(p.rcsr)
	case r == regs.AXIWriteCSR:
		if p.wbusy > 0 {
			if p.wbusy--; p.wbusy == 0 {
				p.completeWrite()
			}
		}
		return byte(p.wcsr)
	}
	return 0
}

func (p *Probe) writeReg(r regs.Register, b byte) {
	switch {
	case r >= regs.GPO0 && r <= regs.GPO3:
		p.gpo[fieldIndex(r, regs.GPO0)] = b
	case r >= regs.AXIAddr0 && r <= regs.AXIAddr3:
		p.addr = setByte(p.addr, fieldIndex(r, regs.AXIAddr0), b)
	case r >= regs.AXIWriteData0 && r <= regs.AXIWriteData3:
		p.wdata = setByte(p.wdata, fieldIndex(r, regs.AXIWriteData0), b)
	case r == regs.AXIReadCSR:
		if p.writeCSR(&p.rcsr, regs.CSR(b), regs.CSRReadValid) {
			if p.rbusy = p.opts.Latency; p.rbusy == 0 {
				p.completeRead()
			}
		}
	case r == regs.AXIWriteCSR:
		if p.writeCSR(&p.wcsr, regs.CSR(b), regs.CSRWriteValid) {
			if p.wbusy = p.opts.Latency; p.wbusy == 0 {
				p.completeWrite()
			}
		}
	}
}

// writeCSR applies a host write to a CSR and reports whether it started a
// transaction. GO, the side's valid bit and the response code belong to the
// probe: GO can only be raised while idle, valid can only be cleared.
func (p *Probe) writeCSR(csr *regs.CSR, v, valid regs.CSR) bool {
	owned := regs.CSRGo | valid | regs.CSRResponseMask
	next := (*csr & owned) | (v &^ owned)
	if v&valid == 0 {
		next &^= valid
	}
	start := v.Go() && !csr.Go()
	if start {
		next |= regs.CSRGo
	}
	*csr = next
	return start
}

func (p *Probe) response(write bool, addr uint32) regs.Response {
	if p.opts.Fault == nil {
		return regs.ResponseOK
	}
	return p.opts.Fault(write, addr)
}

func (p *Probe) advance() {
	if p.rcsr.AutoIncrement() {
		p.addr += WordSize
	}
}

func (p *Probe) completeRead() {
	resp := p.response(false, p.addr)
	if resp == regs.ResponseOK || resp == regs.ResponseExOK {
		p.rdata = p.mem[p.addr]
	} else {
		p.rdata = 0
	}
	glog.V(3).Infof("sim: read [0x%08x] = 0x%08x %s", p.addr, p.rdata, resp)
	p.rcsr = (p.rcsr &^ regs.CSRGo | regs.CSRReadValid).WithResponse(resp)
	p.advance()
}

func (p *Probe) completeWrite() {
	resp := p.response(true, p.addr)
	if resp == regs.ResponseOK || resp == regs.ResponseExOK {
		p.mem[p.addr] = p.wdata
	}
	glog.V(3).Infof("sim: write [0x%08x] = 0x%08x %s", p.addr, p.wdata, resp)
	p.wcsr = (p.wcsr &^ regs.CSRGo | regs.CSRWriteValid).WithResponse(resp)
	p.advance()
}
