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
	"fmt"
	"time"

	"github.com/juju/errors"
)

// ErrNotOpen is returned for any I/O on a closed session.
var ErrNotOpen = errors.New("transport is not open")

// Error is a failed send or receive on the underlying port.
type Error struct {
	Op   string
	Addr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, e.Err)
}

// IsFailure returns true if err was caused by a broken or closed transport.
func IsFailure(err error) bool {
	switch errors.Cause(err).(type) {
	case *Error:
		return true
	}
	return errors.Cause(err) == ErrNotOpen
}

// IsTimeout returns true if err was caused by a byte exchange exceeding its
// timeout.
func IsTimeout(err error) bool {
	return errors.IsTimeout(err)
}

// The message reads "reading from <addr> after <timeout> timeout".
func timeoutError(addr string, timeout time.Duration) error {
	return errors.Timeoutf("reading from %s after %s", addr, timeout)
}
