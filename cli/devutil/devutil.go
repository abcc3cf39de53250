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
package devutil

import (
	"context"
	"strings"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/probe/axi"
	"github.com/mongoose-os/axiprobe/probe/gpio"
	"github.com/mongoose-os/axiprobe/probe/regs"
	"github.com/mongoose-os/axiprobe/probe/sim"
	"github.com/mongoose-os/axiprobe/probe/transport"
)

const (
	SimPort = "sim"

	tcpPrefix    = "tcp://"
	serialPrefix = "serial://"
)

// Probe is an open session together with the register client and the
// facades that share it.
type Probe struct {
	Session transport.Session
	Regs    *regs.Client
	AXI     *axi.Master
	GPIO    *gpio.GPIO
}

func (p *Probe) Close() error {
	glog.Infof("Closing %s", p.Session.RemoteAddr())
	return errors.Trace(p.Session.Close())
}

func openSession(ctx context.Context, port string) (transport.Session, error) {
	switch {
	case port == SimPort:
		glog.Infof("Using simulated probe")
		return sim.New(&sim.Options{Latency: *flags.SimLatency}), nil
	case strings.HasPrefix(port, tcpPrefix):
		s, err := transport.DialTCP(ctx, strings.TrimPrefix(port, tcpPrefix), &transport.TCPOptions{
			Timeout: *flags.Timeout,
		})
		return s, errors.Trace(err)
	}
	if *flags.BaudRate <= 0 {
		return nil, errors.NotValidf("baud rate %d", *flags.BaudRate)
	}
	s, err := transport.OpenSerial(ctx, strings.TrimPrefix(port, serialPrefix), &transport.SerialOptions{
		BaudRate:            uint(*flags.BaudRate),
		HardwareFlowControl: *flags.HWFC,
		Timeout:             *flags.Timeout,
		NoLock:              *flags.NoLock,
	})
	return s, errors.Trace(err)
}

// OpenProbeFromFlags connects to the probe selected by --port. Every byte is
// reported to trace, which may be nil.
func OpenProbeFromFlags(ctx context.Context, trace regs.TraceSink) (*Probe, error) {
	port, err := GetPort()
	if err != nil {
		return nil, errors.Trace(err)
	}
	s, err := openSession(ctx, port)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to open %s", port)
	}
	ts := regs.MultiTrace{regs.GlogTrace{}}
	if trace != nil {
		ts = append(ts, trace)
	}
	c := regs.NewClient(s, &regs.Options{Timeout: *flags.Timeout, Trace: ts})
	return &Probe{
		Session: s,
		Regs:    c,
		AXI: axi.NewMaster(c, &axi.Options{
			PollBudget:        *flags.PollBudget,
			PollInterval:      *flags.PollInterval,
			MaxPollInterval:   *flags.MaxPollInterval,
			ClearValidOnIssue: *flags.ClearValidOnIssue,
		}),
		GPIO: gpio.New(c),
	}, nil
}
