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
	"context"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/probe/transport"
)

// Accessor reads and writes single probe registers.
type Accessor interface {
	ReadReg(ctx context.Context, r Register) (uint8, error)
	WriteReg(ctx context.Context, r Register, value uint8) error
}

type Options struct {
	// Timeout for the response byte of a read. Zero means the transport default.
	Timeout time.Duration
	// Trace receives every byte exchanged. Defaults to NopTrace.
	Trace TraceSink
}

// Client is the Accessor backed by a byte transport. Each exchange (command
// byte plus payload or response byte) is atomic with respect to other
// callers of the same Client.
type Client struct {
	mu      sync.Mutex
	t       transport.ByteTransport
	timeout time.Duration
	trace   TraceSink
}

func NewClient(t transport.ByteTransport, opts *Options) *Client {
	c := &Client{t: t, trace: NopTrace{}}
	if opts != nil {
		c.timeout = opts.Timeout
		if opts.Trace != nil {
			c.trace = opts.Trace
		}
	}
	return c
}

// IsPrecondition returns true if err is a misuse of a register: wrong
// direction, unknown register or an out-of-range value.
func IsPrecondition(err error) bool {
	return errors.IsNotValid(err)
}

// ByteValue checks that v fits in a single register.
func ByteValue(v uint64) (uint8, error) {
	if v > 0xff {
		return 0, errors.NotValidf("value 0x%x for a byte register", v)
	}
	return uint8(v), nil
}

func (c *Client) send(ctx context.Context, r Register, b byte, cmd bool) error {
	if err := c.t.SendByte(ctx, b); err != nil {
		return errors.Trace(err)
	}
	c.trace.Trace(TraceEvent{Dir: Sent, Reg: r, Command: cmd, Byte: b})
	return nil
}

func (c *Client) ReadReg(ctx context.Context, r Register) (uint8, error) {
	cmd, ok := r.ReadCommand()
	if !ok {
		return 0, errors.NotValidf("read of %s (access %s)", r, r.Access())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send(ctx, r, byte(cmd), true); err != nil {
		return 0, errors.Annotatef(err, "read %s", r)
	}
	v, err := c.t.RecvByte(ctx, c.timeout)
	if err != nil {
		return 0, errors.Annotatef(err, "read %s", r)
	}
	c.trace.Trace(TraceEvent{Dir: Received, Reg: r, Byte: v})
	return v, nil
}

func (c *Client) WriteReg(ctx context.Context, r Register, value uint8) error {
	cmd, ok := r.WriteCommand()
	if !ok {
		return errors.NotValidf("write of %s (access %s)", r, r.Access())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send(ctx, r, byte(cmd), true); err != nil {
		return errors.Annotatef(err, "write %s", r)
	}
	if err := c.send(ctx, r, value, false); err != nil {
		return errors.Annotatef(err, "write %s", r)
	}
	return nil
}
