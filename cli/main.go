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
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/axiprobe/cli/devutil"
	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/common/pflagenv"
	"github.com/mongoose-os/axiprobe/version"
)

const (
	envPrefix = "AXIPROBE_"
)

var (
	versionFlag = flag.Bool("version", false, "Print version and exit")
	helpFull    = flag.Bool("helpfull", false, "Show full help, including advanced flags")
)

// commands is filled in init because the script command looks it up.
var commands []command

func init() {
	commands = []command{
		{"test", testProbe, `Check that the probe answers`, "", []string{"port"}},
		{"print-registers", printRegisters, `Print all readable probe registers`, "", []string{"port", "format"}},
		{"gpi", gpiCmd, `Read general purpose inputs, all or one bit`, "[BIT]", []string{"port"}},
		{"gpo", gpoCmd, `Read general purpose outputs, or read or set one bit`, "[BIT [0|1]]", []string{"port"}},
		{"gpo-byte", gpoByteCmd, `Read or set a whole output bank`, "BANK [VALUE]", []string{"port"}},
		{"axi-read", axiRead, `Read COUNT words from the AXI bus`, "ADDR [COUNT]", []string{"port", "poll-budget", "poll-interval"}},
		{"axi-write", axiWrite, `Write words to consecutive AXI addresses`, "ADDR VALUE...", []string{"port", "poll-budget", "poll-interval"}},
		{"axi-status", axiStatus, `Print the AXI control/status registers`, "", []string{"port"}},
		{"axi-autoinc", axiAutoInc, `Enable or disable AXI address auto-increment`, "on|off", []string{"port"}},
		{"script", runScript, `Run commands from a file, one per line, on a single connection`, "FILE", []string{"port"}},
	}
}

type command struct {
	name     string
	handler  handler
	short    string
	args     string
	optional []string
}

type handler func(ctx context.Context, pr *devutil.Probe, args []string) error

func findCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

func run(ctx context.Context) error {
	if flag.NArg() == 0 {
		usage()
		return nil
	}
	c := findCommand(flag.Arg(0))
	if c == nil {
		usage()
		return errors.Errorf("unknown command %q", flag.Arg(0))
	}
	if err := checkFlags(); err != nil {
		return errors.Trace(err)
	}
	trace, err := newTraceFromFlags(os.Stderr)
	if err != nil {
		return errors.Trace(err)
	}
	pr, err := devutil.OpenProbeFromFlags(ctx, trace)
	if err != nil {
		return errors.Trace(err)
	}
	defer pr.Close()
	return errors.Annotatef(c.handler(ctx, pr, flag.Args()[1:]), "%s", c.name)
}

func main() {
	initFlags()
	flag.Parse()
	if err := applyFlagSources(flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if *helpFull {
		unhideFlags()
		usage()
		return
	} else if *versionFlag {
		fmt.Println(version.String())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		glog.Infof("Interrupted")
		cancel()
	}()

	err := run(ctx)
	cancel()
	glog.Flush()
	if err != nil {
		glog.Infof("Error: %+v", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// applyFlagSources fills flags not given on the command line, first from
// the environment and then from the --config file.
func applyFlagSources(fs *flag.FlagSet) error {
	if err := pflagenv.ParseFlagSet(fs, envPrefix); err != nil {
		return errors.Trace(err)
	}
	if *flags.Config == "" {
		return nil
	}
	vals, err := loadConfig(*flags.Config)
	if err != nil {
		return errors.Trace(err)
	}
	if unknown := pflagenv.UnknownKeys(fs, vals); len(unknown) > 0 {
		glog.Warningf("%s: ignoring unknown keys %q", *flags.Config, unknown)
	}
	return errors.Annotatef(pflagenv.ParseFlagSetFrom(fs, pflagenv.Map(vals)), "%s", *flags.Config)
}
