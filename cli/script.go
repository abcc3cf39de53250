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
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/juju/errors"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/mongoose-os/axiprobe/cli/devutil"
)

type scriptLine struct {
	num  int
	args []string
}

// parseScript splits r into commands. Blank lines and lines starting with #
// are skipped; the rest is split the way a shell would.
func parseScript(r io.Reader) ([]scriptLine, error) {
	var res []scriptLine
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", n)
		}
		if len(args) == 0 {
			continue
		}
		res = append(res, scriptLine{num: n, args: args})
	}
	return res, errors.Trace(sc.Err())
}

// checkScript makes sure every line names a known command, so that a typo
// on the last line doesn't leave the probe half way through a sequence.
func checkScript(lines []scriptLine) error {
	for _, l := range lines {
		if l.args[0] == "script" {
			return errors.Errorf("line %d: scripts can't be nested", l.num)
		}
		if findCommand(l.args[0]) == nil {
			return errors.Errorf("line %d: unknown command %q", l.num, l.args[0])
		}
	}
	return nil
}

func runScript(ctx context.Context, pr *devutil.Probe, args []string) error {
	if err := checkArgs(args, 1, 1); err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	lines, err := parseScript(f)
	if err != nil {
		return errors.Annotatef(err, "%s", args[0])
	}
	if err := checkScript(lines); err != nil {
		return errors.Annotatef(err, "%s", args[0])
	}
	for _, l := range lines {
		glog.V(1).Infof("%s:%d: %s", args[0], l.num, strings.Join(l.args, " "))
		c := findCommand(l.args[0])
		if err := c.handler(ctx, pr, l.args[1:]); err != nil {
			return errors.Annotatef(err, "%s:%d: %s", args[0], l.num, c.name)
		}
	}
	return nil
}
