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
	"fmt"
	"strings"
)

// CSR is an AXI control/status register value. The read and write CSRs share
// one layout.
//
// NOTE: older probe firmware revisions placed AE and the valid bits
// differently. This layout has to match the firmware being driven.
type CSR uint8

const (
	// CSRGo starts a transaction on the CSR's side.
	CSRGo CSR = 1 << 0
	// CSRAutoIncrement makes the probe advance its address pointer after
	// each transaction. Only the read CSR's copy is honored.
	CSRAutoIncrement CSR = 1 << 1
	// CSRReadValid is set by the probe when a read has completed.
	CSRReadValid CSR = 1 << 2
	// CSRWriteValid is set by the probe when a write has completed.
	CSRWriteValid CSR = 1 << 3

	csrResponseShift      = 4
	CSRResponseMask   CSR = 3 << csrResponseShift
)

// Response is the 2-bit completion code of the last transaction.
type Response uint8

const (
	ResponseOK Response = iota
	ResponseExOK
	ResponseSlaveError
	ResponseDecodeError
)

func (r Response) String() string {
	switch r {
	case ResponseOK:
		return "OKAY"
	case ResponseExOK:
		return "EXOKAY"
	case ResponseSlaveError:
		return "SLVERR"
	case ResponseDecodeError:
		return "DECERR"
	}
	return fmt.Sprintf("RESP(%d)", uint8(r))
}

func (c CSR) Go() bool            { return c&CSRGo != 0 }
func (c CSR) AutoIncrement() bool { return c&CSRAutoIncrement != 0 }
func (c CSR) ReadValid() bool     { return c&CSRReadValid != 0 }
func (c CSR) WriteValid() bool    { return c&CSRWriteValid != 0 }

func (c CSR) Response() Response {
	return Response((c & CSRResponseMask) >> csrResponseShift)
}

// WithResponse returns c with the response code field replaced.
func (c CSR) WithResponse(r Response) CSR {
	return (c &^ CSRResponseMask) | (CSR(r)<<csrResponseShift)&CSRResponseMask
}

// With returns c with the bits in mask set or cleared. Bits outside mask are
// left alone.
func (c CSR) With(mask CSR, on bool) CSR {
	if on {
		return c | mask
	}
	return c &^ mask
}

func (c CSR) String() string {
	var flags []string
	if c.Go() {
		flags = append(flags, "GO")
	}
	if c.AutoIncrement() {
		flags = append(flags, "AE")
	}
	if c.ReadValid() {
		flags = append(flags, "RV")
	}
	if c.WriteValid() {
		flags = append(flags, "WV")
	}
	flags = append(flags, c.Response().String())
	if rest := c &^ (CSRGo | CSRAutoIncrement | CSRReadValid | CSRWriteValid | CSRResponseMask); rest != 0 {
		flags = append(flags, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return fmt.Sprintf("0x%02x[%s]", uint8(c), strings.Join(flags, " "))
}
