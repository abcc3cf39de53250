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
	"io"
	"sync"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/golang/glog"
	"github.com/juju/errors"
)

const (
	// Reads return with nothing after this much idle line time, which lets
	// RecvByte check its deadline and the context.
	interCharacterTimeout time.Duration = 100 * time.Millisecond
)

type SerialOptions struct {
	BaudRate            uint
	HardwareFlowControl bool
	// Timeout is the default RecvByte timeout.
	Timeout time.Duration
	// NoLock skips the exclusive port lock.
	NoLock bool
}

// SerialSession is a probe session over a local serial port.
type SerialSession struct {
	portName string
	conn     io.ReadWriteCloser
	opts     SerialOptions
	lock     *portLock

	// Reads and writes take closeLock for reading, Close takes it for writing,
	// so that Close never races an in-progress exchange.
	closeLock sync.RWMutex
	isClosed  bool
}

// OpenSerial opens portName and takes the port lock.
func OpenSerial(ctx context.Context, portName string, opts *SerialOptions) (*SerialSession, error) {
	o := SerialOptions{}
	if opts != nil {
		o = *opts
	}
	if o.BaudRate == 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}

	var pl *portLock
	if !o.NoLock {
		var err error
		if pl, err = lockPort(portName); err != nil {
			return nil, errors.Trace(err)
		}
	}

	glog.Infof("Opening %s at %d baud...", portName, o.BaudRate)
	s, err := serial.Open(serial.OpenOptions{
		PortName:              portName,
		BaudRate:              o.BaudRate,
		DataBits:              8,
		ParityMode:            serial.PARITY_NONE,
		StopBits:              1,
		HardwareFlowControl:   o.HardwareFlowControl,
		InterCharacterTimeout: uint(interCharacterTimeout / time.Millisecond),
		MinimumReadSize:       0,
	})
	glog.Infof("%s opened: %v, err: %v", portName, s, err)
	if err != nil {
		if pl != nil {
			pl.release()
		}
		return nil, &Error{Op: "open", Addr: portName, Err: err}
	}
	return newSerialSession(portName, s, o, pl), nil
}

func newSerialSession(portName string, conn io.ReadWriteCloser, opts SerialOptions, pl *portLock) *SerialSession {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &SerialSession{
		portName: portName,
		conn:     conn,
		opts:     opts,
		lock:     pl,
	}
}

func (s *SerialSession) SendByte(ctx context.Context, b byte) error {
	s.closeLock.RLock()
	defer s.closeLock.RUnlock()
	if s.isClosed {
		return errors.Trace(ErrNotOpen)
	}
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}
	n, err := s.conn.Write([]byte{b})
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &Error{Op: "write", Addr: s.portName, Err: err}
	}
	glog.V(4).Infof("%s => 0x%02x", s.portName, b)
	return nil
}

func (s *SerialSession) RecvByte(ctx context.Context, timeout time.Duration) (byte, error) {
	s.closeLock.RLock()
	defer s.closeLock.RUnlock()
	if s.isClosed {
		return 0, errors.Trace(ErrNotOpen)
	}
	if timeout == 0 {
		timeout = s.opts.Timeout
	}
	deadline := time.Now().Add(timeout)
	buf := []byte{0}
	for {
		n, err := s.conn.Read(buf)
		if n == 1 {
			glog.V(4).Infof("%s <= 0x%02x", s.portName, buf[0])
			return buf[0], nil
		}
		// With MinimumReadSize 0 an idle line shows up as a zero-length read,
		// usually with io.EOF. That is not the end of the stream.
		if err != nil && err != io.EOF {
			return 0, &Error{Op: "read", Addr: s.portName, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return 0, errors.Trace(err)
		}
		if !time.Now().Before(deadline) {
			return 0, timeoutError(s.portName, timeout)
		}
	}
}

func (s *SerialSession) Connected() bool {
	s.closeLock.RLock()
	defer s.closeLock.RUnlock()
	return !s.isClosed
}

func (s *SerialSession) RemoteAddr() string {
	return s.portName
}

func (s *SerialSession) Close() error {
	s.closeLock.Lock()
	defer s.closeLock.Unlock()
	if s.isClosed {
		return nil
	}
	glog.Infof("closing serial %s", s.portName)
	s.isClosed = true
	err := s.conn.Close()
	if s.lock != nil {
		s.lock.release()
	}
	return errors.Trace(err)
}
