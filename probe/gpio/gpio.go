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
// Package gpio gives bit and byte access to the probe's general purpose
// inputs and outputs: four input banks and four output banks of eight bits.
package gpio

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/probe/regs"
)

const (
	NumBanks = 4
	NumBits  = NumBanks * 8
)

type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) field() (regs.Field, error) {
	switch d {
	case Input:
		return regs.GPIField, nil
	case Output:
		return regs.GPOField, nil
	}
	return regs.Field{}, errors.NotValidf("direction %d", int(d))
}

type GPIO struct {
	a regs.Accessor
}

func New(a regs.Accessor) *GPIO {
	return &GPIO{a: a}
}

func checkBank(bank int) error {
	if bank < 0 || bank >= NumBanks {
		return errors.NotValidf("bank %d (0-%d)", bank, NumBanks-1)
	}
	return nil
}

// bitPos maps a logical bit index to its bank and mask. Bits are numbered
// MSB first within a bank: index 0 is bit 7 of bank 0.
func bitPos(index int) (int, uint8, error) {
	if index < 0 || index >= NumBits {
		return 0, 0, errors.NotValidf("bit %d (0-%d)", index, NumBits-1)
	}
	return index / 8, 1 << uint(7-index%8), nil
}

func (g *GPIO) Byte(ctx context.Context, d Direction, bank int) (uint8, error) {
	f, err := d.field()
	if err != nil {
		return 0, errors.Trace(err)
	}
	if err := checkBank(bank); err != nil {
		return 0, errors.Trace(err)
	}
	v, err := g.a.ReadReg(ctx, f[bank])
	return v, errors.Annotatef(err, "%s bank %d", d, bank)
}

func (g *GPIO) SetByte(ctx context.Context, bank int, v uint8) error {
	if err := checkBank(bank); err != nil {
		return errors.Trace(err)
	}
	return errors.Annotatef(g.a.WriteReg(ctx, regs.GPOField[bank], v), "output bank %d", bank)
}

func (g *GPIO) Bit(ctx context.Context, d Direction, index int) (bool, error) {
	bank, mask, err := bitPos(index)
	if err != nil {
		return false, errors.Trace(err)
	}
	v, err := g.Byte(ctx, d, bank)
	if err != nil {
		return false, errors.Trace(err)
	}
	return v&mask != 0, nil
}

// SetBit changes a single output bit, leaving the other seven bits of its
// bank as read back from the probe.
func (g *GPIO) SetBit(ctx context.Context, index int, on bool) error {
	bank, mask, err := bitPos(index)
	if err != nil {
		return errors.Trace(err)
	}
	v, err := g.Byte(ctx, Output, bank)
	if err != nil {
		return errors.Trace(err)
	}
	if on {
		v |= mask
	} else {
		v &^= mask
	}
	return errors.Trace(g.SetByte(ctx, bank, v))
}

// Word returns all four banks of one direction, bank 0 in bits 0-7.
func (g *GPIO) Word(ctx context.Context, d Direction) (uint32, error) {
	f, err := d.field()
	if err != nil {
		return 0, errors.Trace(err)
	}
	v, err := regs.ReadField(ctx, g.a, f)
	return v, errors.Annotatef(err, "%s banks", d)
}
