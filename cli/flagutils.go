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
	goflag "flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/juju/errors"
	flag "github.com/spf13/pflag"

	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/common/multierror"
	"github.com/mongoose-os/axiprobe/version"
)

var (
	hiddenFlags = []string{
		"alsologtostderr",
		"log_backtrace_at",
		"log_dir",
		"logtostderr",
		"stderrthreshold",
		"v",
		"vmodule",
		"sim-latency",
	}
)

func initFlags() {
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	hideFlags()
	flag.Usage = usage
}

func hideFlags() {
	for _, f := range hiddenFlags {
		flag.CommandLine.MarkHidden(f)
	}
}

func unhideFlags() {
	for _, f := range hiddenFlags {
		f := flag.Lookup(f)
		if f != nil {
			f.Hidden = false
		}
	}
}

// checkFlags validates flag values that pflag itself accepts.
func checkFlags() error {
	var errs error
	if *flags.BaudRate <= 0 {
		errs = multierror.Append(errs, errors.Errorf("--baud-rate must be positive, got %d", *flags.BaudRate))
	}
	if *flags.Timeout < 0 {
		errs = multierror.Append(errs, errors.Errorf("--timeout must not be negative"))
	}
	if *flags.PollBudget <= 0 {
		errs = multierror.Append(errs, errors.Errorf("--poll-budget must be positive, got %d", *flags.PollBudget))
	}
	if *flags.PollInterval < 0 || *flags.MaxPollInterval < 0 {
		errs = multierror.Append(errs, errors.Errorf("poll intervals must not be negative"))
	}
	if *flags.SimLatency < 0 {
		errs = multierror.Append(errs, errors.Errorf("--sim-latency must not be negative"))
	}
	switch *flags.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		errs = multierror.Append(errs, errors.Errorf("--color must be one of auto, always, never; got %q", *flags.Color))
	}
	switch *flags.Format {
	case formatText, formatYAML:
	default:
		errs = multierror.Append(errs, errors.Errorf("--format must be text or yaml, got %q", *flags.Format))
	}
	if strings.HasPrefix(*flags.Port, "tcp://") && len(*flags.Port) == len("tcp://") {
		errs = multierror.Append(errs, errors.Errorf("--port tcp:// needs host:port"))
	}
	return errs
}

func printFlag(w *tabwriter.Writer, name string) {
	f := flag.Lookup(name)
	if f == nil {
		return
	}
	arg := "<" + f.Value.Type() + ">"
	if f.Value.Type() == "bool" {
		arg = ""
	}
	fmt.Fprintf(w, "  --%s %s\t%s. Default: %q\n", name, arg, f.Usage, f.DefValue)
}

func usage() {
	w := tabwriter.NewWriter(os.Stderr, 0, 0, 1, ' ', 0)

	if len(os.Args) == 3 && os.Args[1] == "help" {
		if c := findCommand(os.Args[2]); c != nil {
			fmt.Fprintf(w, "%s %s %s [FLAGS]\n\n%s.\n", os.Args[0], c.name, c.args, c.short)
			fmt.Fprintf(w, "\nFlags:\n")
			for _, name := range c.optional {
				printFlag(w, name)
			}
			w.Flush()
			os.Exit(1)
		}
	}

	fmt.Fprintf(w, "UART AXI/GPIO probe tool %s.\n", version.GetVersion())
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s <command> [args] [flags]\n", os.Args[0])
	fmt.Fprintf(w, "  %s help <command>\n", os.Args[0])
	fmt.Fprintf(w, "\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s %s\t\t%s\n", c.name, c.args, c.short)
	}

	fmt.Fprintf(w, "\nGlobal Flags:\n")
	if *helpFull {
		fmt.Fprint(w, flag.CommandLine.FlagUsages())
	} else {
		for _, name := range []string{"port", "baud-rate", "timeout", "trace", "config"} {
			printFlag(w, name)
		}
		color.New(color.FgYellow).Fprintf(w, "\nRun with --helpfull for all flags. Flags can also be set with %sFLAG_NAME environment variables.\n", envPrefix)
	}
	w.Flush()
}
