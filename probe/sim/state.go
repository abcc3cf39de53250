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
package sim

import "github.com/mongoose-os/axiprobe/probe/regs"

// The accessors below inspect and seed the model directly, bypassing the
// wire. They are meant for tests and demos.

func (p *Probe) SetGPI(bank int, v byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gpi[bank] = v
}

func (p *Probe) GPO() [4]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gpo
}

func (p *Probe) Poke(addr, v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mem[addr] = v
}

func (p *Probe) Peek(addr uint32) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mem[addr]
}

// Address returns the probe's AXI address pointer.
func (p *Probe) Address() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

func (p *Probe) SetAddress(addr uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addr = addr
}

func (p *Probe) ReadCSR() regs.CSR {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rcsr
}

// SetReadCSR forces the read CSR, including probe-owned bits. It does not
// start a transaction.
func (p *Probe) SetReadCSR(v regs.CSR) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rcsr = v
}

func (p *Probe) WriteCSR() regs.CSR {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wcsr
}

func (p *Probe) SetWriteCSR(v regs.CSR) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wcsr = v
}

// Wire returns every byte the host has sent so far.
func (p *Probe) Wire() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.wire...)
}

func (p *Probe) ResetWire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wire = nil
}
