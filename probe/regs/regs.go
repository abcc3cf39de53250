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
// Package regs implements the probe's register access layer: the register
// map, the one-byte command codes, and the command/payload exchange.
package regs

import "fmt"

// Command is a single command byte on the wire.
type Command uint8

const (
	CmdReadGPI0 Command = 0x02 + iota
	CmdReadGPI1
	CmdReadGPI2
	CmdReadGPI3
	CmdReadGPO0
	CmdReadGPO1
	CmdReadGPO2
	CmdReadGPO3
	CmdWriteGPO0
	CmdWriteGPO1
	CmdWriteGPO2
	CmdWriteGPO3
	CmdReadAXIAddr0
	CmdReadAXIAddr1
	CmdReadAXIAddr2
	CmdReadAXIAddr3
	CmdWriteAXIAddr0
	CmdWriteAXIAddr1
	CmdWriteAXIAddr2
	CmdWriteAXIAddr3
	CmdReadAXIData0
	CmdReadAXIData1
	CmdReadAXIData2
	CmdReadAXIData3
	CmdWriteAXIData0
	CmdWriteAXIData1
	CmdWriteAXIData2
	CmdWriteAXIData3
	CmdReadAXIReadCSR
	CmdWriteAXIReadCSR
	CmdReadAXIWriteCSR
	CmdWriteAXIWriteCSR
)

// Register is one byte-wide probe register.
type Register uint8

const (
	GPI0 Register = iota
	GPI1
	GPI2
	GPI3
	GPO0
	GPO1
	GPO2
	GPO3
	AXIAddr0
	AXIAddr1
	AXIAddr2
	AXIAddr3
	AXIReadData0
	AXIReadData1
	AXIReadData2
	AXIReadData3
	AXIWriteData0
	AXIWriteData1
	AXIWriteData2
	AXIWriteData3
	AXIReadCSR
	AXIWriteCSR

	numRegisters
)

// Access says which directions a register supports.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite

	AccessReadWrite = AccessRead | AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

type regInfo struct {
	name     string
	readCmd  Command
	writeCmd Command
}

// A zero command means the direction does not exist; real codes start at 0x02.
var registers = [numRegisters]regInfo{
	GPI0:          {"GPI0", CmdReadGPI0, 0},
	GPI1:          {"GPI1", CmdReadGPI1, 0},
	GPI2:          {"GPI2", CmdReadGPI2, 0},
	GPI3:          {"GPI3", CmdReadGPI3, 0},
	GPO0:          {"GPO0", CmdReadGPO0, CmdWriteGPO0},
	GPO1:          {"GPO1", CmdReadGPO1, CmdWriteGPO1},
	GPO2:          {"GPO2", CmdReadGPO2, CmdWriteGPO2},
	GPO3:          {"GPO3", CmdReadGPO3, CmdWriteGPO3},
	AXIAddr0:      {"AXI_ADDR0", CmdReadAXIAddr0, CmdWriteAXIAddr0},
	AXIAddr1:      {"AXI_ADDR1", CmdReadAXIAddr1, CmdWriteAXIAddr1},
	AXIAddr2:      {"AXI_ADDR2", CmdReadAXIAddr2, CmdWriteAXIAddr2},
	AXIAddr3:      {"AXI_ADDR3", CmdReadAXIAddr3, CmdWriteAXIAddr3},
	AXIReadData0:  {"AXI_RDATA0", CmdReadAXIData0, 0},
	AXIReadData1:  {"AXI_RDATA1", CmdReadAXIData1, 0},
	AXIReadData2:  {"AXI_RDATA2", CmdReadAXIData2, 0},
	AXIReadData3:  {"AXI_RDATA3", CmdReadAXIData3, 0},
	AXIWriteData0: {"AXI_WDATA0", 0, CmdWriteAXIData0},
	AXIWriteData1: {"AXI_WDATA1", 0, CmdWriteAXIData1},
	AXIWriteData2: {"AXI_WDATA2", 0, CmdWriteAXIData2},
	AXIWriteData3: {"AXI_WDATA3", 0, CmdWriteAXIData3},
	AXIReadCSR:    {"AXI_RCSR", CmdReadAXIReadCSR, CmdWriteAXIReadCSR},
	AXIWriteCSR:   {"AXI_WCSR", CmdReadAXIWriteCSR, CmdWriteAXIWriteCSR},
}

type cmdInfo struct {
	reg Register
	dir Access
}

var commands = map[Command]cmdInfo{}

func init() {
	for i, ri := range registers {
		if ri.readCmd != 0 {
			commands[ri.readCmd] = cmdInfo{Register(i), AccessRead}
		}
		if ri.writeCmd != 0 {
			commands[ri.writeCmd] = cmdInfo{Register(i), AccessWrite}
		}
	}
}

// Registers returns every register in command-code order.
func Registers() []Register {
	res := make([]Register, 0, numRegisters)
	for r := Register(0); r < numRegisters; r++ {
		res = append(res, r)
	}
	return res
}

func (r Register) valid() bool {
	return r < numRegisters
}

func (r Register) String() string {
	if !r.valid() {
		return fmt.Sprintf("Register(%d)", uint8(r))
	}
	return registers[r].name
}

func (r Register) Access() Access {
	if !r.valid() {
		return 0
	}
	var a Access
	if registers[r].readCmd != 0 {
		a |= AccessRead
	}
	if registers[r].writeCmd != 0 {
		a |= AccessWrite
	}
	return a
}

// ReadCommand returns the command that reads r, if there is one.
func (r Register) ReadCommand() (Command, bool) {
	if !r.valid() || registers[r].readCmd == 0 {
		return 0, false
	}
	return registers[r].readCmd, true
}

// WriteCommand returns the command that writes r, if there is one.
func (r Register) WriteCommand() (Command, bool) {
	if !r.valid() || registers[r].writeCmd == 0 {
		return 0, false
	}
	return registers[r].writeCmd, true
}

// Decode maps a command byte back to its register and direction
// (AccessRead or AccessWrite).
func (c Command) Decode() (Register, Access, bool) {
	e, ok := commands[c]
	return e.reg, e.dir, ok
}

func (c Command) String() string {
	r, dir, ok := c.Decode()
	if !ok {
		return fmt.Sprintf("0x%02x", uint8(c))
	}
	op := "RD"
	if dir == AccessWrite {
		op = "WR"
	}
	return fmt.Sprintf("%s_%s", op, r)
}
