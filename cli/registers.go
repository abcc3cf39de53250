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
	"io"
	"os"

	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/mongoose-os/axiprobe/cli/devutil"
	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/cli/ourutil"
	"github.com/mongoose-os/axiprobe/probe/gpio"
	"github.com/mongoose-os/axiprobe/probe/regs"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// out is where command results go. Progress and errors go to stderr.
var out io.Writer = os.Stdout

func checkArgs(args []string, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return errors.Errorf("wrong number of arguments (%d)", len(args))
	}
	return nil
}

func printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = out.Write(data)
	return errors.Trace(err)
}

// testProbe checks the link by writing patterns to the AXI address register
// and reading them back. The previous address is restored.
func testProbe(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 0, 0); err != nil {
		return err
	}
	orig, err := pr.AXI.Address(ctx)
	if err != nil {
		return errors.Annotatef(err, "probe is not responding")
	}
	for _, p := range []uint32{0xa5a55a5a, 0x5a5aa5a5, 0x01234567} {
		if err := pr.AXI.SetAddress(ctx, p); err != nil {
			return errors.Trace(err)
		}
		got, err := pr.AXI.Address(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		if got != p {
			return errors.Errorf("address register readback mismatch: wrote 0x%08x, read 0x%08x", p, got)
		}
	}
	if err := pr.AXI.SetAddress(ctx, orig); err != nil {
		return errors.Trace(err)
	}
	ourutil.Reportf("Probe at %s is OK", pr.Session.RemoteAddr())
	return nil
}

func printRegisters(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 0, 0); err != nil {
		return err
	}
	s, err := regs.ReadSnapshot(ctx, pr.Regs)
	if err != nil {
		return errors.Trace(err)
	}
	if *flags.Format == formatYAML {
		return printYAML(s)
	}
	fmt.Fprint(out, s)
	return nil
}

func printBanks(ctx context.Context, g *gpio.GPIO, d gpio.Direction) error {
	w, err := g.Word(ctx, d)
	if err != nil {
		return errors.Trace(err)
	}
	bs := regs.SplitWord(w)
	if *flags.Format == formatYAML {
		vals := make([]int, len(bs))
		for i, b := range bs {
			vals[i] = int(b)
		}
		return printYAML(map[string][]int{d.String(): vals})
	}
	for i, b := range bs {
		fmt.Fprintf(out, "%s %d: 0x%02x %08b\n", d, i, b, b)
	}
	return nil
}

func printBit(ctx context.Context, g *gpio.GPIO, d gpio.Direction, s string) error {
	i, err := ourutil.ParseInt("bit", s)
	if err != nil {
		return errors.Trace(err)
	}
	on, err := g.Bit(ctx, d, i)
	if err != nil {
		return errors.Trace(err)
	}
	v := 0
	if on {
		v = 1
	}
	fmt.Fprintln(out, v)
	return nil
}

func gpiCmd(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 0, 1); err != nil {
		return err
	}
	if len(args) == 0 {
		return printBanks(ctx, pr.GPIO, gpio.Input)
	}
	return printBit(ctx, pr.GPIO, gpio.Input, args[0])
}

func gpoCmd(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 0, 2); err != nil {
		return err
	}
	switch len(args) {
	case 0:
		return printBanks(ctx, pr.GPIO, gpio.Output)
	case 1:
		return printBit(ctx, pr.GPIO, gpio.Output, args[0])
	}
	i, err := ourutil.ParseInt("bit", args[0])
	if err != nil {
		return errors.Trace(err)
	}
	var on bool
	switch args[1] {
	case "0", "off", "false":
	case "1", "on", "true":
		on = true
	default:
		return errors.NotValidf("bit value %q", args[1])
	}
	return errors.Trace(pr.GPIO.SetBit(ctx, i, on))
}

func gpoByteCmd(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 1, 2); err != nil {
		return err
	}
	bank, err := ourutil.ParseInt("bank", args[0])
	if err != nil {
		return errors.Trace(err)
	}
	if len(args) == 1 {
		v, err := pr.GPIO.Byte(ctx, gpio.Output, bank)
		if err != nil {
			return errors.Trace(err)
		}
		fmt.Fprintf(out, "0x%02x\n", v)
		return nil
	}
	v, err := ourutil.ParseUint("value", args[1], 64)
	if err != nil {
		return errors.Trace(err)
	}
	b, err := regs.ByteValue(v)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(pr.GPIO.SetByte(ctx, bank, b))
}
