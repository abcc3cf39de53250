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
// +build linux darwin

package transport

import (
	"context"
	"testing"
	"time"

	"github.com/kr/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSerialPty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty: %s", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	ctx := context.Background()
	s, err := OpenSerial(ctx, tty.Name(), &SerialOptions{BaudRate: 115200, Timeout: time.Second, NoLock: true})
	if err != nil {
		t.Skipf("cannot configure %s as a serial port: %s", tty.Name(), err)
	}
	defer s.Close()

	require.NoError(t, s.SendByte(ctx, 0x1e))
	buf := make([]byte, 1)
	_, err = ptmx.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x1e), buf[0])

	_, err = ptmx.Write([]byte{0x55})
	require.NoError(t, err)
	b, err := s.RecvByte(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), b)

	_, err = s.RecvByte(ctx, 250*time.Millisecond)
	assert.True(t, IsTimeout(err), "%v", err)
}
