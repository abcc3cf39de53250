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
// Package pflagenv fills flags that were not given on the command line from
// secondary sources: the environment and config files.
package pflagenv

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

// Source looks up a value for a flag by name.
type Source func(flagName string) (string, bool)

// Env returns a Source that reads the uppercased flag name, dashes replaced
// with underscores, prepended with envPrefix. Empty variables are ignored.
func Env(envPrefix string) Source {
	return func(flagName string) (string, bool) {
		v := os.Getenv(EnvName(flagName, envPrefix))
		return v, v != ""
	}
}

// Map returns a Source backed by m, keyed by flag name.
func Map(m map[string]string) Source {
	return func(flagName string) (string, bool) {
		v, ok := m[flagName]
		return v, ok
	}
}

// nonSet returns flags of fs that haven't been set yet, by name.
//
// The flag package does not tell a flag set to its default value from a flag
// which was not set at all, so visit all flags and then drop the set ones.
func nonSet(fs *pflag.FlagSet) map[string]*pflag.Flag {
	res := make(map[string]*pflag.Flag)
	fs.VisitAll(func(f *pflag.Flag) {
		res[f.Name] = f
	})
	fs.Visit(func(f *pflag.Flag) {
		delete(res, f.Name)
	})
	return res
}

// ParseFlagSetFrom sets every flag of fs that is still unset and has a value
// in src. Flags set this way count as set, so a later call with a lower
// priority source won't override them. Must be called after fs.Parse.
func ParseFlagSetFrom(fs *pflag.FlagSet, src Source) error {
	flags := nonSet(fs)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, ok := src(name)
		if !ok {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return errors.Annotatef(err, "--%s", name)
		}
	}
	return nil
}

// ParseFlagSet applies Env(envPrefix) to fs.
func ParseFlagSet(fs *pflag.FlagSet, envPrefix string) error {
	return ParseFlagSetFrom(fs, Env(envPrefix))
}

// The same as ParseFlagSet, but operates on a default FlagSet: pflag.CommandLine
func Parse(envPrefix string) error {
	return ParseFlagSet(pflag.CommandLine, envPrefix)
}

// UnknownKeys returns the keys of m that don't name a flag of fs.
func UnknownKeys(fs *pflag.FlagSet, m map[string]string) []string {
	var res []string
	for k := range m {
		if fs.Lookup(k) == nil {
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res
}

func EnvName(flagName, envPrefix string) string {
	flagName = strings.ToUpper(flagName)
	flagName = strings.Replace(flagName, "-", "_", -1)
	return fmt.Sprint(envPrefix, flagName)
}
