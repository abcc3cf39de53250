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
	"context"

	"github.com/golang/glog"
	"github.com/juju/errors"
)

// ReadWord performs one read transaction at addr.
func (m *Master) ReadWord(ctx context.Context, addr uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setAddress(ctx, addr); err != nil {
		return 0, errors.Trace(err)
	}
	csr, err := m.issue(ctx, readSide)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if err := checkResponse("read", addr, csr); err != nil {
		return 0, err
	}
	v, err := m.readData(ctx)
	glog.V(2).Infof("ReadWord(0x%08x) == 0x%08x", addr, v)
	return v, errors.Trace(err)
}

// WriteWord performs one write transaction at addr.
func (m *Master) WriteWord(ctx context.Context, addr, value uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	glog.V(2).Infof("WriteWord(0x%08x, 0x%08x)", addr, value)
	if err := m.setAddress(ctx, addr); err != nil {
		return errors.Trace(err)
	}
	if err := m.setWriteData(ctx, value); err != nil {
		return errors.Trace(err)
	}
	csr, err := m.issue(ctx, writeSide)
	if err != nil {
		return errors.Trace(err)
	}
	return checkResponse("write", addr, csr)
}

func (m *Master) ReadTargetReg(ctx context.Context, addr uint32) (uint32, error) {
	return m.ReadWord(ctx, addr)
}

func (m *Master) WriteTargetReg(ctx context.Context, addr uint32, value uint32) error {
	return m.WriteWord(ctx, addr, value)
}

// withAutoIncrement enables AE for the duration of f and restores the
// previous setting if f succeeds.
func (m *Master) withAutoIncrement(ctx context.Context, f func() error) error {
	csr, err := m.readCSR(ctx, readSide.csr)
	if err != nil {
		return errors.Trace(err)
	}
	wasOn := csr.AutoIncrement()
	if !wasOn {
		if err := m.setAutoIncrement(ctx, true); err != nil {
			return errors.Trace(err)
		}
	}
	if err := f(); err != nil {
		return errors.Trace(err)
	}
	if !wasOn {
		return errors.Trace(m.setAutoIncrement(ctx, false))
	}
	return nil
}

// ReadTargetMem reads length words starting at addr as a run of single
// read transactions, letting the probe advance the address.
func (m *Master) ReadTargetMem(ctx context.Context, addr uint32, length int) ([]uint32, error) {
	glog.V(2).Infof("ReadTargetMem(0x%08x, %d)", addr, length)
	if addr%wordSize != 0 {
		return nil, errors.NotValidf("unaligned address 0x%08x", addr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]uint32, 0, length)
	err := m.withAutoIncrement(ctx, func() error {
		if err := m.setAddress(ctx, addr); err != nil {
			return errors.Trace(err)
		}
		for i := 0; i < length; i++ {
			a := addr + uint32(i*wordSize)
			csr, err := m.issue(ctx, readSide)
			if err != nil {
				return errors.Annotatef(err, "word %d (0x%08x)", i, a)
			}
			if err := checkResponse("read", a, csr); err != nil {
				return err
			}
			v, err := m.readData(ctx)
			if err != nil {
				return errors.Trace(err)
			}
			res = append(res, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// WriteTargetMem writes data to consecutive words starting at addr.
func (m *Master) WriteTargetMem(ctx context.Context, addr uint32, data []uint32) error {
	glog.V(2).Infof("WriteTargetMem(0x%08x, %d)", addr, len(data))
	if addr%wordSize != 0 {
		return errors.NotValidf("unaligned address 0x%08x", addr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withAutoIncrement(ctx, func() error {
		if err := m.setAddress(ctx, addr); err != nil {
			return errors.Trace(err)
		}
		for i, v := range data {
			a := addr + uint32(i*wordSize)
			if err := m.setWriteData(ctx, v); err != nil {
				return errors.Trace(err)
			}
			csr, err := m.issue(ctx, writeSide)
			if err != nil {
				return errors.Annotatef(err, "word %d (0x%08x)", i, a)
			}
			if err := checkResponse("write", a, csr); err != nil {
				return err
			}
		}
		return nil
	})
}
