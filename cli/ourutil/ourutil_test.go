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
package ourutil

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint(t *testing.T) {
	for _, c := range []struct {
		s    string
		bits int
		want uint64
		ok   bool
	}{
		{"0", 8, 0, true},
		{"0xff", 8, 0xff, true},
		{"0x100", 8, 0, false},
		{"0b101", 8, 5, true},
		{"255", 8, 255, true},
		{"0xdeadbeef", 32, 0xdeadbeef, true},
		{"0x1deadbeef", 32, 0, false},
		{"-1", 32, 0, false},
		{"bogus", 32, 0, false},
	} {
		v, err := ParseUint("value", c.s, c.bits)
		if !c.ok {
			assert.True(t, errors.IsNotValid(err), c.s)
			continue
		}
		require.NoError(t, err, c.s)
		assert.Equal(t, c.want, v, c.s)
	}
}

func TestParseInt(t *testing.T) {
	v, err := ParseInt("count", "0x10")
	require.NoError(t, err)
	assert.Equal(t, 16, v)
	_, err = ParseInt("count", "x")
	assert.EqualError(t, err, `count "x" not valid`)
}
