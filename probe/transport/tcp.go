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
package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
)

type TCPOptions struct {
	// Timeout is the default RecvByte timeout.
	Timeout time.Duration
}

// TCPSession talks to a probe behind a raw TCP serial bridge (ser2net and
// the like).
type TCPSession struct {
	addr string
	conn net.Conn
	opts TCPOptions

	mu       sync.Mutex
	isClosed bool
}

func DialTCP(ctx context.Context, addr string, opts *TCPOptions) (*TCPSession, error) {
	o := TCPOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	glog.Infof("Connecting to %s...", addr)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &Error{Op: "dial", Addr: addr, Err: err}
	}
	return &TCPSession{addr: addr, conn: conn, opts: o}, nil
}

func (s *TCPSession) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

func (s *TCPSession) SendByte(ctx context.Context, b byte) error {
	if s.closed() {
		return errors.Trace(ErrNotOpen)
	}
	if dl, ok := ctx.Deadline(); ok {
		s.conn.SetWriteDeadline(dl)
	} else {
		s.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := s.conn.Write([]byte{b}); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return errors.Trace(ctx.Err())
		}
		return &Error{Op: "write", Addr: s.addr, Err: err}
	}
	glog.V(4).Infof("%s => 0x%02x", s.addr, b)
	return nil
}

func (s *TCPSession) RecvByte(ctx context.Context, timeout time.Duration) (byte, error) {
	if s.closed() {
		return 0, errors.Trace(ErrNotOpen)
	}
	if timeout == 0 {
		timeout = s.opts.Timeout
	}
	dl := time.Now().Add(timeout)
	if cdl, ok := ctx.Deadline(); ok && cdl.Before(dl) {
		dl = cdl
	}
	s.conn.SetReadDeadline(dl)
	buf := []byte{0}
	if _, err := s.conn.Read(buf); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			if ctx.Err() != nil {
				return 0, errors.Trace(ctx.Err())
			}
			return 0, timeoutError(s.addr, timeout)
		}
		return 0, &Error{Op: "read", Addr: s.addr, Err: err}
	}
	glog.V(4).Infof("%s <= 0x%02x", s.addr, buf[0])
	return buf[0], nil
}

func (s *TCPSession) Connected() bool {
	return !s.closed()
}

func (s *TCPSession) RemoteAddr() string {
	return s.addr
}

func (s *TCPSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return nil
	}
	glog.Infof("closing %s", s.addr)
	s.isClosed = true
	return errors.Trace(s.conn.Close())
}
