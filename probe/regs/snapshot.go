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
	"bytes"
	"context"
	"fmt"

	"github.com/juju/errors"
)

// Snapshot holds every readable register of the probe.
type Snapshot struct {
	GPI      [4]uint8 `yaml:"gpi,flow"`
	GPO      [4]uint8 `yaml:"gpo,flow"`
	Address  uint32   `yaml:"axi_address"`
	ReadData uint32   `yaml:"axi_read_data"`
	ReadCSR  CSR      `yaml:"axi_read_csr"`
	WriteCSR CSR      `yaml:"axi_write_csr"`
}

// ReadSnapshot reads all readable registers. It only reads, so it never
// disturbs a transaction in progress.
func ReadSnapshot(ctx context.Context, a Accessor) (*Snapshot, error) {
	s := &Snapshot{}
	for i := range s.GPI {
		v, err := a.ReadReg(ctx, GPIField[i])
		if err != nil {
			return nil, errors.Trace(err)
		}
		s.GPI[i] = v
	}
	for i := range s.GPO {
		v, err := a.ReadReg(ctx, GPOField[i])
		if err != nil {
			return nil, errors.Trace(err)
		}
		s.GPO[i] = v
	}
	var err error
	if s.Address, err = ReadField(ctx, a, AddressField); err != nil {
		return nil, errors.Trace(err)
	}
	if s.ReadData, err = ReadField(ctx, a, ReadDataField); err != nil {
		return nil, errors.Trace(err)
	}
	rcsr, err := a.ReadReg(ctx, AXIReadCSR)
	if err != nil {
		return nil, errors.Trace(err)
	}
	wcsr, err := a.ReadReg(ctx, AXIWriteCSR)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.ReadCSR, s.WriteCSR = CSR(rcsr), CSR(wcsr)
	return s, nil
}

func (s *Snapshot) String() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "GPI    : %02x %02x %02x %02x\n", s.GPI[0], s.GPI[1], s.GPI[2], s.GPI[3])
	fmt.Fprintf(buf, "GPO    : %02x %02x %02x %02x\n", s.GPO[0], s.GPO[1], s.GPO[2], s.GPO[3])
	fmt.Fprintf(buf, "AXI A  : 0x%08x\n", s.Address)
	fmt.Fprintf(buf, "AXI D  : 0x%08x\n", s.ReadData)
	fmt.Fprintf(buf, "RD Ctl : %s\n", s.ReadCSR)
	fmt.Fprintf(buf, "WR Ctl : %s\n", s.WriteCSR)
	return buf.String()
}
