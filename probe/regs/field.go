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
	"encoding/binary"

	"github.com/juju/errors"
)

// Field is four byte registers that together hold one 32-bit value, least
// significant byte first. Byte 0 is always transferred first.
type Field [4]Register

var (
	AddressField   = Field{AXIAddr0, AXIAddr1, AXIAddr2, AXIAddr3}
	ReadDataField  = Field{AXIReadData0, AXIReadData1, AXIReadData2, AXIReadData3}
	WriteDataField = Field{AXIWriteData0, AXIWriteData1, AXIWriteData2, AXIWriteData3}
	GPIField       = Field{GPI0, GPI1, GPI2, GPI3}
	GPOField       = Field{GPO0, GPO1, GPO2, GPO3}
)

func SplitWord(v uint32) [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b
}

func JoinWord(b [4]byte) uint32 {
	return binary.LittleEndian.Uint32(b[:])
}

// ReadField reads the four registers of f in order and assembles them.
func ReadField(ctx context.Context, a Accessor, f Field) (uint32, error) {
	var b [4]byte
	for i, r := range f {
		v, err := a.ReadReg(ctx, r)
		if err != nil {
			return 0, errors.Trace(err)
		}
		b[i] = v
	}
	return JoinWord(b), nil
}

// WriteField writes v to the four registers of f in order. There is no
// rollback: if byte i fails, bytes 0..i-1 have already been written.
func WriteField(ctx context.Context, a Accessor, f Field, v uint32) error {
	for i, b := range SplitWord(v) {
		if err := a.WriteReg(ctx, f[i], b); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
