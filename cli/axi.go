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

	"github.com/juju/errors"

	"github.com/mongoose-os/axiprobe/cli/devutil"
	"github.com/mongoose-os/axiprobe/cli/flags"
	"github.com/mongoose-os/axiprobe/cli/ourutil"
)

type wordYAML struct {
	Address uint32 `yaml:"address"`
	Value   uint32 `yaml:"value"`
}

type statusYAML struct {
	AutoIncrement bool   `yaml:"auto_increment"`
	ReadValid     bool   `yaml:"read_valid"`
	ReadResponse  string `yaml:"read_response"`
	WriteValid    bool   `yaml:"write_valid"`
	WriteResponse string `yaml:"write_response"`
	ReadCSR       uint8  `yaml:"read_csr"`
	WriteCSR      uint8  `yaml:"write_csr"`
}

func parseAddr(s string) (uint32, error) {
	v, err := ourutil.ParseUint("address", s, 32)
	return uint32(v), errors.Trace(err)
}

func axiRead(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 1, 2); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	count := 1
	if len(args) > 1 {
		if count, err = ourutil.ParseInt("count", args[1]); err != nil {
			return errors.Trace(err)
		}
		if count <= 0 {
			return errors.NotValidf("count %d", count)
		}
	}
	var vals []uint32
	if count == 1 {
		v, err := pr.AXI.ReadWord(ctx, addr)
		if err != nil {
			return errors.Trace(err)
		}
		vals = []uint32{v}
	} else if vals, err = pr.AXI.ReadTargetMem(ctx, addr, count); err != nil {
		return errors.Trace(err)
	}
	if *flags.Format == formatYAML {
		res := make([]wordYAML, len(vals))
		for i, v := range vals {
			res[i] = wordYAML{Address: addr + uint32(i*4), Value: v}
		}
		return printYAML(res)
	}
	for i, v := range vals {
		fmt.Fprintf(out, "0x%08x: 0x%08x\n", addr+uint32(i*4), v)
	}
	return nil
}

func axiWrite(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 2, -1); err != nil {
		return err
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	var vals []uint32
	for _, s := range args[1:] {
		v, err := ourutil.ParseUint("value", s, 32)
		if err != nil {
			return errors.Trace(err)
		}
		vals = append(vals, uint32(v))
	}
	if len(vals) == 1 {
		return errors.Trace(pr.AXI.WriteWord(ctx, addr, vals[0]))
	}
	return errors.Trace(pr.AXI.WriteTargetMem(ctx, addr, vals))
}

func axiStatus(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 0, 0); err != nil {
		return err
	}
	st, err := pr.AXI.Status(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	if *flags.Format == formatYAML {
		return printYAML(statusYAML{
			AutoIncrement: st.AutoIncrement,
			ReadValid:     st.ReadValid,
			ReadResponse:  st.ReadResponse.String(),
			WriteValid:    st.WriteValid,
			WriteResponse: st.WriteResponse.String(),
			ReadCSR:       uint8(st.ReadCSR),
			WriteCSR:      uint8(st.WriteCSR),
		})
	}
	fmt.Fprintf(out, "Read CSR : %s\nWrite CSR: %s\n%s\n", st.ReadCSR, st.WriteCSR, st)
	return nil
}

func axiAutoInc(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 1, 1); err != nil {
		return err
	}
	var on bool
	switch args[0] {
	case "on", "1", "true":
		on = true
	case "off", "0", "false":
	default:
		return errors.NotValidf("auto-increment setting %q (on or off)", args[0])
	}
	return errors.Trace(pr.AXI.SetAutoIncrement(ctx, on))
}
