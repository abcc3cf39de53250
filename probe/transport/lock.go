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
package transport

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/golang/glog"
	"github.com/juju/errors"
)

// portLock keeps two axiprobe processes from interleaving bytes on the same
// port. The lock is advisory.
type portLock struct {
	fl *flock.Flock
}

func lockFileName(portName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, portName)
	return filepath.Join(os.TempDir(), "axiprobe-"+name+".lock")
}

func lockPort(portName string) (*portLock, error) {
	fn := lockFileName(portName)
	fl := flock.New(fn)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Annotatef(err, "failed to lock %s", fn)
	}
	if !locked {
		return nil, errors.Errorf("%s is in use by another process (lock file %s)", portName, fn)
	}
	glog.V(1).Infof("locked %s", fn)
	return &portLock{fl: fl}, nil
}

func (pl *portLock) release() {
	if err := pl.fl.Unlock(); err != nil {
		glog.Warningf("failed to unlock %s: %s", pl.fl.Path(), err)
	}
}
