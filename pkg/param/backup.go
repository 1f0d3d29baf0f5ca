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

package param

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Backups stores one backup record per managed parameter under Dir.
type Backups struct {
	Dir string
}

// NewBackups returns a backup store rooted at dir.
func NewBackups(dir string) *Backups {
	return &Backups{Dir: dir}
}

// Path returns the record location for the named parameter.
func (b *Backups) Path(name string) string {
	return filepath.Join(b.Dir, ShortName(name)+".bak")
}

// Exists reports whether a record is present for the named parameter.
func (b *Backups) Exists(name string) (bool, error) {
	_, err := os.Stat(b.Path(name))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.WrapWithContext(errors.ErrCodeInternal, "failed to stat backup record", err,
			map[string]any{"name": name, "path": b.Path(name)})
	}
}

// Write persists value as the record for name. The record is written to a
// temporary file and renamed into place so a crash never leaves a torn record.
func (b *Backups) Write(name, value string) error {
	path := b.Path(name)

	tmp, err := os.CreateTemp(b.Dir, "."+ShortName(name)+".bak-*")
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create backup record", err,
			map[string]any{"name": name, "path": path})
	}
	tmpName := tmp.Name()

	_, werr := tmp.WriteString(value)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, path)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write backup record", werr,
			map[string]any{"name": name, "path": path})
	}

	return nil
}

// Read returns the recorded value for name. A missing record yields
// ErrCodeNotFound.
func (b *Backups) Read(name string) (string, error) {
	path := b.Path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeInternal
		if os.IsNotExist(err) {
			code = errors.ErrCodeNotFound
		}
		return "", errors.WrapWithContext(code,
			fmt.Sprintf("no backup record for %s", name), err,
			map[string]any{"name": name, "path": path})
	}

	line, _, _ := strings.Cut(string(data), "\n")
	return line, nil
}

// Remove deletes the record for name.
func (b *Backups) Remove(name string) error {
	if err := os.Remove(b.Path(name)); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to delete backup record", err,
			map[string]any{"name": name, "path": b.Path(name)})
	}
	return nil
}
