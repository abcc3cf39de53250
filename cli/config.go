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
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"
)

// configSection is the yaml key or ini section whose entries override the
// top level ones.
const configSection = "probe"

// loadConfig reads flag defaults from a .yaml, .yml or .ini file. Keys are
// flag names.
func loadConfig(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return parseYAMLConfig(data)
	case ".ini":
		f, err := ini.Load(path)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to parse %s", path)
		}
		return iniConfig(f), nil
	}
	return nil, errors.NotValidf("config file %q (expected .yaml, .yml or .ini)", path)
}

func parseYAMLConfig(data []byte) (map[string]string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Annotatef(err, "invalid config")
	}
	res := map[string]string{}
	var section map[interface{}]interface{}
	for k, v := range doc {
		if k == configSection {
			m, ok := v.(map[interface{}]interface{})
			if !ok {
				return nil, errors.Errorf("%q must be a mapping", configSection)
			}
			section = m
			continue
		}
		s, err := yamlScalar(k, v)
		if err != nil {
			return nil, errors.Trace(err)
		}
		res[k] = s
	}
	for k, v := range section {
		ks := fmt.Sprint(k)
		s, err := yamlScalar(ks, v)
		if err != nil {
			return nil, errors.Trace(err)
		}
		res[ks] = s
	}
	return res, nil
}

func yamlScalar(key string, v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case map[interface{}]interface{}, []interface{}:
		return "", errors.Errorf("%s: expected a single value", key)
	default:
		return fmt.Sprint(v), nil
	}
}

func iniConfig(f *ini.File) map[string]string {
	res := map[string]string{}
	for _, k := range f.Section(ini.DEFAULT_SECTION).Keys() {
		res[k.Name()] = k.String()
	}
	if s, err := f.GetSection(configSection); err == nil {
		for _, k := range s.Keys() {
			res[k.Name()] = k.String()
		}
	}
	return res
}
