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
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoose-os/axiprobe/probe/regs"
	"github.com/mongoose-os/axiprobe/probe/sim"
	"github.com/mongoose-os/axiprobe/probe/transport"
)

// regFile is a plain byte store: no handshake, it just remembers what was
// written and logs every access.
type regFile struct {
	vals map[regs.Register]uint8
	ops  []string
}

func newRegFile() *regFile {
	return &regFile{vals: map[regs.Register]uint8{}}
}

func (rf *regFile) ReadReg(ctx context.Context, r regs.Register) (uint8, error) {
	rf.ops = append(rf.ops, fmt.Sprintf("R %s", r))
	return rf.vals[r], nil
}

func (rf *regFile) WriteReg(ctx context.Context, r regs.Register, v uint8) error {
	rf.ops = append(rf.ops, fmt.Sprintf("W %s", r))
	rf.vals[r] = v
	return nil
}

// flakyTransport fails the n-th SendByte (0-based) with a timeout.
type flakyTransport struct {
	transport.ByteTransport
	failAt int
	sent   int
}

func (ft *flakyTransport) SendByte(ctx context.Context, b byte) error {
	n := ft.sent
	ft.sent++
	if n == ft.failAt {
		return errors.Timeoutf("injected send")
	}
	return ft.ByteTransport.SendByte(ctx, b)
}

func newSimMaster(simOpts *sim.Options, opts *Options) (*sim.Probe, *Master) {
	p := sim.New(simOpts)
	return p, NewMaster(regs.NewClient(p, nil), opts)
}

func TestAddressRoundTrip(t *testing.T) {
	_, m := newSimMaster(nil, nil)
	ctx := context.Background()
	values := []uint32{0, 1, 0xff, 0x100, 0xdeadbeef, 0x7fffffff, 0x80000000, 0xffffffff}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 64; i++ {
		values = append(values, rnd.Uint32())
	}
	for _, v := range values {
		require.NoError(t, m.SetAddress(ctx, v))
		got, err := m.Address(ctx)
		require.NoError(t, err)
		assert.Equal(t, v, got, "0x%08x", v)
	}
}

func TestSetAddressWireOrder(t *testing.T) {
	p, m := newSimMaster(nil, nil)
	require.NoError(t, m.SetAddress(context.Background(), 0xdeadbeef))
	assert.Equal(t, []byte{
		byte(regs.CmdWriteAXIAddr0), 0xef,
		byte(regs.CmdWriteAXIAddr1), 0xbe,
		byte(regs.CmdWriteAXIAddr2), 0xad,
		byte(regs.CmdWriteAXIAddr3), 0xde,
	}, p.Wire())
}

func TestSetAddressPartialFailure(t *testing.T) {
	p := sim.New(nil)
	p.SetAddress(0x11223344)
	// Sends 0-3 carry address bytes 0 and 1; send 4 is the command byte of
	// the third write.
	ft := &flakyTransport{ByteTransport: p, failAt: 4}
	m := NewMaster(regs.NewClient(ft, nil), nil)
	ctx := context.Background()

	err := m.SetAddress(ctx, 0xaabbccdd)
	require.Error(t, err)
	assert.True(t, transport.IsTimeout(err), "%s", err)
	assert.Equal(t, 5, ft.sent, "no retry after the failure")

	got, err := m.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1122ccdd), got)
}

func TestReadTransaction(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 3}, nil)
	p.Poke(0x40000000, 0xcafef00d)
	ctx := context.Background()

	require.NoError(t, m.SetAddress(ctx, 0x40000000))
	require.NoError(t, m.IssueRead(ctx))
	v, err := m.ReadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xcafef00d), v)

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.ReadValid)
	assert.Equal(t, regs.ResponseOK, st.ReadResponse)
	assert.False(t, st.AutoIncrement)
}

func TestWriteTransaction(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 1}, nil)
	ctx := context.Background()

	require.NoError(t, m.SetAddress(ctx, 0x1000))
	require.NoError(t, m.SetWriteData(ctx, 0x01020304))
	assert.Equal(t, uint32(0), p.Peek(0x1000), "nothing moves before GO")
	require.NoError(t, m.IssueWrite(ctx))
	assert.Equal(t, uint32(0x01020304), p.Peek(0x1000))

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.WriteValid)
	assert.False(t, st.ReadValid)
}

func TestPollBudgetExhausted(t *testing.T) {
	_, m := newSimMaster(&sim.Options{Latency: 10}, &Options{PollBudget: 3, ClearValidOnIssue: true})
	err := m.IssueRead(context.Background())
	require.Error(t, err)
	require.True(t, IsTimeout(err), "%s", err)
	te := errors.Cause(err).(*TimeoutError)
	assert.Equal(t, 3, te.Polls)
	assert.Equal(t, "read", te.Op)
	assert.True(t, te.CSR.Go())
	assert.False(t, te.CSR.ReadValid())
}

func TestStaleValidTrusted(t *testing.T) {
	// The previous transaction left RV set and the new one never completes.
	// Without clearing, the first poll sees the old bit and reports success.
	p, m := newSimMaster(&sim.Options{Latency: 1000}, &Options{PollBudget: 1})
	p.SetReadCSR(regs.CSRReadValid)
	require.NoError(t, m.IssueRead(context.Background()))
}

func TestStaleValidCleared(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 1000}, &Options{PollBudget: 1, ClearValidOnIssue: true})
	p.SetReadCSR(regs.CSRReadValid)
	err := m.IssueRead(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestStaleValidClearedThenCompletes(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 2}, nil)
	p.SetReadCSR(regs.CSRReadValid)
	p.Poke(0, 7)
	ctx := context.Background()
	require.NoError(t, m.IssueRead(ctx))
	v, err := m.ReadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}

func TestIssueKeepsAutoIncrement(t *testing.T) {
	p, m := newSimMaster(nil, nil)
	ctx := context.Background()
	require.NoError(t, m.SetAutoIncrement(ctx, true))
	require.NoError(t, m.SetAddress(ctx, 0x100))
	require.NoError(t, m.IssueRead(ctx))
	require.NoError(t, m.IssueRead(ctx))
	assert.True(t, p.ReadCSR().AutoIncrement())

	// The probe advanced the pointer; it is the source of truth now.
	addr, err := m.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x108), addr)
}

func TestIssueReadModifyWrite(t *testing.T) {
	rf := newRegFile()
	rf.vals[regs.AXIWriteCSR] = uint8(regs.CSRWriteValid | regs.CSRAutoIncrement)
	m := NewMaster(rf, &Options{PollBudget: 1, ClearValidOnIssue: false})
	require.NoError(t, m.IssueWrite(context.Background()))
	assert.Equal(t, []string{"R AXI_WCSR", "W AXI_WCSR", "R AXI_WCSR"}, rf.ops)
	assert.Equal(t, uint8(regs.CSRGo|regs.CSRWriteValid|regs.CSRAutoIncrement), rf.vals[regs.AXIWriteCSR])
}

func TestSetAutoIncrementPreservesOtherBits(t *testing.T) {
	ctx := context.Background()
	for b := 0; b < 256; b++ {
		rf := newRegFile()
		orig := uint8(b)
		rf.vals[regs.AXIReadCSR] = orig
		m := NewMaster(rf, nil)

		first := !regs.CSR(orig).AutoIncrement()
		require.NoError(t, m.SetAutoIncrement(ctx, first))
		assert.Equal(t, first, regs.CSR(rf.vals[regs.AXIReadCSR]).AutoIncrement())
		assert.Equal(t, orig&^uint8(regs.CSRAutoIncrement), rf.vals[regs.AXIReadCSR]&^uint8(regs.CSRAutoIncrement))
		require.NoError(t, m.SetAutoIncrement(ctx, !first))
		assert.Equal(t, orig, rf.vals[regs.AXIReadCSR], "initial 0x%02x", orig)

		assert.Equal(t, []string{"R AXI_RCSR", "W AXI_RCSR", "R AXI_RCSR", "W AXI_RCSR"}, rf.ops)
		_, touched := rf.vals[regs.AXIWriteCSR]
		assert.False(t, touched)
	}
}

func TestStatusIsReadOnly(t *testing.T) {
	rf := newRegFile()
	rf.vals[regs.AXIReadCSR] = uint8((regs.CSRAutoIncrement | regs.CSRReadValid).WithResponse(regs.ResponseSlaveError))
	rf.vals[regs.AXIWriteCSR] = uint8(regs.CSRWriteValid.WithResponse(regs.ResponseDecodeError))
	m := NewMaster(rf, nil)
	st, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Status{
		AutoIncrement: true,
		ReadValid:     true,
		WriteValid:    true,
		ReadResponse:  regs.ResponseSlaveError,
		WriteResponse: regs.ResponseDecodeError,
		ReadCSR:       regs.CSR(rf.vals[regs.AXIReadCSR]),
		WriteCSR:      regs.CSR(rf.vals[regs.AXIWriteCSR]),
	}, st)
	assert.Equal(t, []string{"R AXI_RCSR", "R AXI_WCSR"}, rf.ops)
}

func TestStatusDuringTransaction(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 1000}, nil)
	ctx := context.Background()
	p.SetReadCSR(regs.CSRGo | regs.CSRAutoIncrement)
	p.ResetWire()
	for i := 0; i < 3; i++ {
		st, err := m.Status(ctx)
		require.NoError(t, err)
		assert.False(t, st.ReadValid)
	}
	for _, b := range p.Wire() {
		_, dir, ok := regs.Command(b).Decode()
		require.True(t, ok)
		assert.Equal(t, regs.AccessRead, dir)
	}
	assert.Equal(t, regs.CSRGo|regs.CSRAutoIncrement, p.ReadCSR())
}

func TestWordHelpers(t *testing.T) {
	_, m := newSimMaster(&sim.Options{Latency: 1}, nil)
	ctx := context.Background()
	require.NoError(t, m.WriteWord(ctx, 0x2000, 0x55aa55aa))
	v, err := m.ReadWord(ctx, 0x2000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x55aa55aa), v)

	v, err = m.ReadTargetReg(ctx, 0x2004)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
	require.NoError(t, m.WriteTargetReg(ctx, 0x2004, 9))
}

func TestResponseError(t *testing.T) {
	_, m := newSimMaster(&sim.Options{Fault: func(write bool, addr uint32) regs.Response {
		if addr == 0xbad0 {
			return regs.ResponseSlaveError
		}
		return regs.ResponseOK
	}}, nil)
	ctx := context.Background()
	_, err := m.ReadWord(ctx, 0xbad0)
	require.Error(t, err)
	assert.True(t, IsResponseError(err))
	assert.Equal(t, "AXI read at 0x0000bad0 failed: SLVERR", errors.Cause(err).Error())

	err = m.WriteWord(ctx, 0xbad0, 1)
	assert.True(t, IsResponseError(err))

	// Raw issue reports completion; the code is the caller's to inspect.
	require.NoError(t, m.SetAddress(ctx, 0xbad0))
	require.NoError(t, m.IssueRead(ctx))
	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, regs.ResponseSlaveError, st.ReadResponse)
}

func TestTargetMem(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 2}, nil)
	ctx := context.Background()
	data := []uint32{1, 2, 3, 0xdeadbeef, 0xffffffff}
	require.NoError(t, m.WriteTargetMem(ctx, 0x100, data))
	for i, v := range data {
		assert.Equal(t, v, p.Peek(0x100+uint32(i*4)))
	}
	assert.False(t, p.ReadCSR().AutoIncrement(), "AE restored")

	got, err := m.ReadTargetMem(ctx, 0x100, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, m.SetAutoIncrement(ctx, true))
	_, err = m.ReadTargetMem(ctx, 0x100, 2)
	require.NoError(t, err)
	assert.True(t, p.ReadCSR().AutoIncrement(), "AE left as found")

	_, err = m.ReadTargetMem(ctx, 0x102, 1)
	assert.True(t, regs.IsPrecondition(err))
	assert.True(t, regs.IsPrecondition(m.WriteTargetMem(ctx, 0x1, []uint32{0})))
}

func TestTargetMemResponseError(t *testing.T) {
	_, m := newSimMaster(&sim.Options{Fault: func(write bool, addr uint32) regs.Response {
		if addr >= 0x108 {
			return regs.ResponseDecodeError
		}
		return regs.ResponseOK
	}}, nil)
	_, err := m.ReadTargetMem(context.Background(), 0x100, 4)
	require.Error(t, err)
	re, ok := errors.Cause(err).(*ResponseError)
	require.True(t, ok, "%s", err)
	assert.Equal(t, uint32(0x108), re.Addr)
}

func TestPollIntervalCancel(t *testing.T) {
	_, m := newSimMaster(&sim.Options{Latency: 1 << 30}, &Options{
		PollBudget:      1 << 20,
		PollInterval:    5 * time.Millisecond,
		MaxPollInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := m.IssueRead(ctx)
	require.Error(t, err)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
}

func TestTransportFailureDuringPoll(t *testing.T) {
	p, m := newSimMaster(&sim.Options{Latency: 5}, nil)
	ctx := context.Background()
	require.NoError(t, m.SetAddress(ctx, 0))
	require.NoError(t, p.Close())
	err := m.IssueRead(ctx)
	require.Error(t, err)
	assert.True(t, transport.IsFailure(err))
	assert.False(t, IsTimeout(err))
}
