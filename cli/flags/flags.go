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
package flags

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/axiprobe/probe/axi"
	"github.com/mongoose-os/axiprobe/probe/transport"
)

var (
	Port = flag.String("port", "auto", "Serial port where the probe is connected. "+
		"If set to 'auto', ports on the system will be enumerated and the first will be used. "+
		"'sim' uses a built-in simulated probe, tcp://host:port connects to a serial bridge.")
	BaudRate = flag.Int("baud-rate", transport.DefaultBaudRate, "Serial port speed")
	HWFC     = flag.Bool("hw-flow-control", false, "Enable hardware flow control (CTS/RTS)")
	Timeout  = flag.Duration("timeout", transport.DefaultTimeout, "Timeout for each byte read from the probe")
	NoLock   = flag.Bool("no-lock", false, "Do not take the exclusive port lock")

	PollBudget        = flag.Int("poll-budget", axi.DefaultPollBudget, "Number of status reads to wait for an AXI transaction to complete")
	PollInterval      = flag.Duration("poll-interval", 0, "Initial delay between status reads, 0 to poll back to back")
	MaxPollInterval   = flag.Duration("max-poll-interval", 100*time.Millisecond, "Delay between status reads grows up to this value")
	ClearValidOnIssue = flag.Bool("clear-valid-on-issue", true, "Clear the response valid bit when starting a transaction. "+
		"Disable for firmware that does not allow clearing it; a leftover valid bit may then be taken for completion")

	SimLatency = flag.Int("sim-latency", 2, "Status reads a simulated transaction stays busy for (--port sim only)")

	Trace  = flag.Bool("trace", false, "Print every byte exchanged with the probe")
	Color  = flag.String("color", "auto", "Colorize trace output: auto, always or never")
	Format = flag.String("format", "text", "Output format: text or yaml")
	Config = flag.String("config", "", "Config file (.yaml, .yml or .ini) with default flag values")
)
