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
package multierror

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	var err error
	err = Append(err, errors.Errorf("an error"))
	require.Error(t, err)
	assert.Equal(t, "1 error(s) occurred:\nan error", err.Error())

	err = Append(err, errors.Errorf("another error"))
	assert.Equal(t, "2 error(s) occurred:\nan error\nanother error", err.Error())
	assert.Len(t, err.(*Error).Errors(), 2)

	err = errors.Errorf("old error")
	err = Append(err, errors.Errorf("new error"))
	assert.Equal(t, "2 error(s) occurred:\nold error\nnew error", err.Error())
}

func TestAppendNil(t *testing.T) {
	assert.NoError(t, Append(nil))
	assert.NoError(t, Append(nil, nil, nil))

	err := Append(nil, nil, errors.New("bad baud rate"), nil)
	require.Error(t, err)
	assert.Equal(t, "1 error(s) occurred:\nbad baud rate", err.Error())
}
