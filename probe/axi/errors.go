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
package axi

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/probe/regs"
)

// TimeoutError means a transaction did not report completion within the poll
// budget. CSR is the last value observed; re-read status before doing
// anything else on the bus.
type TimeoutError struct {
	Op    string
	Polls int
	CSR   regs.CSR
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("AXI %s did not complete after %d polls (csr %s)", e.Op, e.Polls, e.CSR)
}

// IsTimeout returns true if err was caused by an exhausted poll budget.
func IsTimeout(err error) bool {
	_, ok := errors.Cause(err).(*TimeoutError)
	return ok
}

// ResponseError is a completed transaction with a non-OKAY response code.
type ResponseError struct {
	Op       string
	Addr     uint32
	Response regs.Response
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("AXI %s at 0x%08x failed: %s", e.Op, e.Addr, e.Response)
}

func IsResponseError(err error) bool {
	_, ok := errors.Cause(err).(*ResponseError)
	return ok
}
