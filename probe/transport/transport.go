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
	"time"
)

// ByteTransport moves single bytes between the host and the probe. Only one
// operation may be in flight at a time.
type ByteTransport interface {
	// SendByte writes one byte to the probe.
	SendByte(ctx context.Context, b byte) error
	// RecvByte waits up to timeout for one byte from the probe. A zero timeout
	// means the session default.
	RecvByte(ctx context.Context, timeout time.Duration) (byte, error)
}

// Session is an open connection to a probe.
type Session interface {
	ByteTransport

	// Connected reports whether the session is open.
	Connected() bool
	// RemoteAddr returns the port name or address of the probe.
	RemoteAddr() string
	Close() error
}

const (
	// DefaultTimeout bounds a single RecvByte when the caller passes zero.
	DefaultTimeout = 1 * time.Second

	// DefaultBaudRate is what the probe firmware comes up with.
	DefaultBaudRate = 9600
)
