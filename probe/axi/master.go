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
// Package axi drives the probe's AXI bus-master front end: 32-bit address
// and data registers plus the read/write control/status handshake.
package axi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/jpillora/backoff"
	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/probe/regs"
)

const (
	DefaultPollBudget = 64

	wordSize = 4
)

type Options struct {
	// PollBudget is the number of CSR reads after GO before giving up.
	PollBudget int
	// PollInterval is the initial delay between polls. It doubles up to
	// MaxPollInterval. Zero polls back to back.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	// ClearValidOnIssue clears the side's valid bit in the same write that
	// sets GO, so a leftover valid bit from the previous transaction can't be
	// mistaken for completion. Firmware that ignores the clear degrades to
	// trusting the sticky bit.
	ClearValidOnIssue bool
}

func DefaultOptions() Options {
	return Options{
		PollBudget:        DefaultPollBudget,
		ClearValidOnIssue: true,
	}
}

// Master is the AXI master facade. Every method is exclusive on a Master,
// but the probe itself has a single address/data register set: two Masters
// sharing one probe must be serialized by the caller.
type Master struct {
	mu   sync.Mutex
	a    regs.Accessor
	opts Options
}

func NewMaster(a regs.Accessor, opts *Options) *Master {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.PollBudget <= 0 {
		o.PollBudget = DefaultPollBudget
	}
	if o.MaxPollInterval < o.PollInterval {
		o.MaxPollInterval = o.PollInterval
	}
	return &Master{a: a, opts: o}
}

type side struct {
	name  string
	csr   regs.Register
	valid regs.CSR
}

var (
	readSide  = side{name: "read", csr: regs.AXIReadCSR, valid: regs.CSRReadValid}
	writeSide = side{name: "write", csr: regs.AXIWriteCSR, valid: regs.CSRWriteValid}
)

// Status is the decoded state of both CSRs.
type Status struct {
	AutoIncrement bool
	ReadValid     bool
	WriteValid    bool
	ReadResponse  regs.Response
	WriteResponse regs.Response

	ReadCSR  regs.CSR
	WriteCSR regs.CSR
}

func (s Status) String() string {
	return fmt.Sprintf("auto-increment: %t, read: valid=%t resp=%s, write: valid=%t resp=%s",
		s.AutoIncrement, s.ReadValid, s.ReadResponse, s.WriteValid, s.WriteResponse)
}

func (m *Master) readCSR(ctx context.Context, r regs.Register) (regs.CSR, error) {
	v, err := m.a.ReadReg(ctx, r)
	return regs.CSR(v), errors.Trace(err)
}

func (m *Master) setAddress(ctx context.Context, addr uint32) error {
	glog.V(3).Infof("AXI address = 0x%08x", addr)
	return errors.Annotatef(regs.WriteField(ctx, m.a, regs.AddressField, addr), "set address 0x%08x", addr)
}

func (m *Master) readData(ctx context.Context) (uint32, error) {
	v, err := regs.ReadField(ctx, m.a, regs.ReadDataField)
	return v, errors.Annotatef(err, "get read data")
}

func (m *Master) setWriteData(ctx context.Context, data uint32) error {
	glog.V(3).Infof("AXI write data = 0x%08x", data)
	return errors.Annotatef(regs.WriteField(ctx, m.a, regs.WriteDataField, data), "set write data")
}

func (m *Master) setAutoIncrement(ctx context.Context, enabled bool) error {
	csr, err := m.readCSR(ctx, regs.AXIReadCSR)
	if err != nil {
		return errors.Annotatef(err, "set auto-increment")
	}
	next := csr.With(regs.CSRAutoIncrement, enabled)
	glog.V(3).Infof("AXI auto-increment %t: %s -> %s", enabled, csr, next)
	return errors.Annotatef(m.a.WriteReg(ctx, regs.AXIReadCSR, uint8(next)), "set auto-increment")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// issue starts a transaction on side s and polls until the probe reports it
// complete. It returns the CSR value that showed completion.
func (m *Master) issue(ctx context.Context, s side) (regs.CSR, error) {
	csr, err := m.readCSR(ctx, s.csr)
	if err != nil {
		return 0, errors.Annotatef(err, "AXI %s", s.name)
	}
	next := csr | regs.CSRGo
	if csr&s.valid != 0 {
		if m.opts.ClearValidOnIssue {
			glog.V(2).Infof("AXI %s: clearing valid bit left from the previous transaction (%s)", s.name, csr)
		} else {
			glog.Warningf("AXI %s: valid bit already set before GO (%s), completion may belong to the previous transaction", s.name, csr)
		}
	}
	if m.opts.ClearValidOnIssue {
		next &^= s.valid
	}
	glog.V(3).Infof("AXI %s: %s -> %s", s.name, csr, next)
	if err := m.a.WriteReg(ctx, s.csr, uint8(next)); err != nil {
		return 0, errors.Annotatef(err, "AXI %s", s.name)
	}

	var b *backoff.Backoff
	if m.opts.PollInterval > 0 {
		b = &backoff.Backoff{Min: m.opts.PollInterval, Max: m.opts.MaxPollInterval, Factor: 2}
	}
	for i := 1; i <= m.opts.PollBudget; i++ {
		if b != nil && i > 1 {
			if err := sleep(ctx, b.Duration()); err != nil {
				return 0, errors.Trace(err)
			}
		}
		if csr, err = m.readCSR(ctx, s.csr); err != nil {
			return 0, errors.Annotatef(err, "AXI %s poll %d", s.name, i)
		}
		if csr&s.valid != 0 {
			glog.V(3).Infof("AXI %s complete after %d poll(s): %s", s.name, i, csr)
			return csr, nil
		}
	}
	return csr, errors.Trace(&TimeoutError{Op: s.name, Polls: m.opts.PollBudget, CSR: csr})
}

func checkResponse(op string, addr uint32, csr regs.CSR) error {
	switch csr.Response() {
	case regs.ResponseOK, regs.ResponseExOK:
		return nil
	}
	return errors.Trace(&ResponseError{Op: op, Addr: addr, Response: csr.Response()})
}

// Address reads back the probe's AXI address register. With auto-increment
// enabled this reflects the probe's advanced pointer, not the last value set.
func (m *Master) Address(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := regs.ReadField(ctx, m.a, regs.AddressField)
	return v, errors.Annotatef(err, "get address")
}

// SetAddress writes the four address bytes, byte 0 first. The write is not
// atomic on the probe side; a failure leaves the earlier bytes written.
func (m *Master) SetAddress(ctx context.Context, addr uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setAddress(ctx, addr)
}

// ReadData returns the data of the last completed read. It is only
// meaningful after IssueRead succeeded.
func (m *Master) ReadData(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readData(ctx)
}

// SetWriteData stages data for the next IssueWrite.
func (m *Master) SetWriteData(ctx context.Context, data uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setWriteData(ctx, data)
}

// IssueRead starts a read at the current address and waits for the read
// valid bit.
func (m *Master) IssueRead(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.issue(ctx, readSide)
	return err
}

// IssueWrite starts a write of the staged data at the current address and
// waits for the write valid bit.
func (m *Master) IssueWrite(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.issue(ctx, writeSide)
	return err
}

// SetAutoIncrement flips the AE bit of the read CSR, which controls address
// advance for both directions. All other CSR bits are written back as read.
func (m *Master) SetAutoIncrement(ctx context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setAutoIncrement(ctx, enabled)
}

// Status reads both CSRs. It never writes.
func (m *Master) Status(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rcsr, err := m.readCSR(ctx, regs.AXIReadCSR)
	if err != nil {
		return Status{}, errors.Annotatef(err, "get status")
	}
	wcsr, err := m.readCSR(ctx, regs.AXIWriteCSR)
	if err != nil {
		return Status{}, errors.Annotatef(err, "get status")
	}
	return Status{
		AutoIncrement: rcsr.AutoIncrement(),
		ReadValid:     rcsr.ReadValid(),
		WriteValid:    wcsr.WriteValid(),
		ReadResponse:  rcsr.Response(),
		WriteResponse: wcsr.Response(),
		ReadCSR:       rcsr,
		WriteCSR:      wcsr,
	}, nil
}
