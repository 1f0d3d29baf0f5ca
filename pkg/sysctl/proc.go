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

package sysctl

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// procRoot is where the kernel exposes its parameters.
var procRoot = "/proc/sys"

// Proc is a Host that reads and writes /proc/sys files directly.
type Proc struct {
	// Root is the sysctl tree, /proc/sys unless overridden.
	Root string
}

// NewProc returns a Proc rooted at root, or at /proc/sys when root is empty.
func NewProc(root string) *Proc {
	if root == "" {
		root = procRoot
	}
	return &Proc{Root: root}
}

// Path maps a dotted parameter name to its file under Root.
func (p *Proc) Path(name string) string {
	return filepath.Join(p.Root, strings.ReplaceAll(name, ".", string(filepath.Separator)))
}

// Get returns the first line of the parameter file.
func (p *Proc) Get(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := os.ReadFile(p.Path(name))
	if err != nil {
		return "", errors.WrapWithContext(codeForFS(err), "failed to read kernel parameter", err,
			map[string]any{"name": name, "path": p.Path(name)})
	}

	return firstLine(string(b)), nil
}

// Set writes value to the parameter file. The file must already exist;
// the kernel never lets callers create new parameters.
func (p *Proc) Set(ctx context.Context, name, value string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := p.Path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errors.WrapWithContext(codeForFS(err), "failed to open kernel parameter", err,
			map[string]any{"name": name, "path": path})
	}

	_, werr := f.WriteString(value + "\n")
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to set kernel parameter", werr,
			map[string]any{"name": name, "value": value})
	}

	return nil
}

func codeForFS(err error) errors.ErrorCode {
	switch {
	case os.IsNotExist(err):
		return errors.ErrCodeNotFound
	case os.IsPermission(err):
		return errors.ErrCodeUnauthorized
	default:
		return errors.ErrCodeInternal
	}
}
