// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package harvest

import (
	stderrors "errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// tryLockShared takes a shared advisory lock on f without waiting.
// Contention is reported as ErrCodeLocked.
func tryLockShared(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case stderrors.Is(err, unix.EINTR):
			continue
		case stderrors.Is(err, unix.EWOULDBLOCK):
			return errors.WrapWithContext(errors.ErrCodeLocked, "dump is locked by another process", err,
				map[string]any{"path": f.Name()})
		default:
			return errors.WrapWithContext(errors.ErrCodeInternal, "failed to lock dump", err,
				map[string]any{"path": f.Name()})
		}
	}
}

func unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
