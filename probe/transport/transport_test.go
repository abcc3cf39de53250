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
	"net"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineConn behaves like an idle serial line: reads with nothing queued
// return (0, io.EOF).
type lineConn struct {
	mu      sync.Mutex
	in      []byte
	out     []byte
	readErr error
	closed  bool
}

func (c *lineConn) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return 0, c.readErr
	}
	if len(c.in) == 0 {
		time.Sleep(time.Millisecond)
		return 0, io.EOF
	}
	n := copy(buf, c.in)
	c.in = c.in[n:]
	return n, nil
}

func (c *lineConn) Write(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, buf...)
	return len(buf), nil
}

func (c *lineConn) Close() error {
	c.closed = true
	return nil
}

func TestSerialSessionExchange(t *testing.T) {
	conn := &lineConn{in: []byte{0xa5}}
	s := newSerialSession("test0", conn, SerialOptions{Timeout: 50 * time.Millisecond}, nil)
	ctx := context.Background()

	require.NoError(t, s.SendByte(ctx, 0x1e))
	b, err := s.RecvByte(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0xa5), b)
	assert.Equal(t, []byte{0x1e}, conn.out)
	assert.True(t, s.Connected())
	assert.Equal(t, "test0", s.RemoteAddr())
}

func TestSerialSessionTimeout(t *testing.T) {
	s := newSerialSession("test0", &lineConn{}, SerialOptions{}, nil)
	start := time.Now()
	_, err := s.RecvByte(context.Background(), 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "%s", err)
	assert.False(t, IsFailure(err))
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
}

func TestSerialSessionReadError(t *testing.T) {
	s := newSerialSession("test0", &lineConn{readErr: errors.New("device unplugged")}, SerialOptions{}, nil)
	_, err := s.RecvByte(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsFailure(err))
	assert.False(t, IsTimeout(err))
	assert.Contains(t, err.Error(), "device unplugged")
}

func TestSerialSessionCancel(t *testing.T) {
	s := newSerialSession("test0", &lineConn{}, SerialOptions{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.RecvByte(ctx, time.Hour)
	require.Error(t, err)
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Equal(t, context.Canceled, errors.Cause(s.SendByte(ctx, 0)))
}

func TestSerialSessionClosed(t *testing.T) {
	conn := &lineConn{}
	s := newSerialSession("test0", conn, SerialOptions{}, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, conn.closed)
	assert.False(t, s.Connected())

	err := s.SendByte(context.Background(), 0x02)
	assert.True(t, IsFailure(err))
	_, err = s.RecvByte(context.Background(), 0)
	assert.True(t, IsFailure(err))
}

func TestLockFileName(t *testing.T) {
	for _, c := range []struct {
		port string
		want string
	}{
		{port: "/dev/ttyUSB0", want: "axiprobe-_dev_ttyUSB0.lock"},
		{port: "COM3", want: "axiprobe-COM3.lock"},
		{port: "/dev/cu.usbmodem1421", want: "axiprobe-_dev_cu.usbmodem1421.lock"},
	} {
		fn := lockFileName(c.port)
		assert.Equal(t, c.want, fn[len(fn)-len(c.want):], "port %s", c.port)
	}
}

func TestPortLockExclusive(t *testing.T) {
	port := "lock-test-" + time.Now().Format("150405.000000")
	pl, err := lockPort(port)
	require.NoError(t, err)
	_, err = lockPort(port)
	assert.Error(t, err)
	pl.release()
	pl2, err := lockPort(port)
	require.NoError(t, err)
	pl2.release()
}

func TestTCPSession(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	// Echo each byte back incremented by one.
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := []byte{0}
		for {
			if _, err := c.Read(buf); err != nil {
				return
			}
			buf[0]++
			if _, err := c.Write(buf); err != nil {
				return
			}
		}
	}()

	ctx := context.Background()
	s, err := DialTCP(ctx, l.Addr().String(), &TCPOptions{Timeout: time.Second})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendByte(ctx, 0x41))
	b, err := s.RecvByte(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), b)

	_, err = s.RecvByte(ctx, 20*time.Millisecond)
	assert.True(t, IsTimeout(err), "%s", err)

	require.NoError(t, s.Close())
	assert.False(t, s.Connected())
	assert.True(t, IsFailure(s.SendByte(ctx, 0)))
}

func TestDialTCPFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	_, err = DialTCP(context.Background(), addr, nil)
	require.Error(t, err)
	assert.True(t, IsFailure(err))
}
