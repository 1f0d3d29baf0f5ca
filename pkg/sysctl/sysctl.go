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
	"fmt"
	"regexp"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Backend names accepted by New.
const (
	BackendCommand = "command"
	BackendProc    = "proc"
)

// Host reads and writes named kernel parameters.
type Host interface {
	// Get returns the first line of the parameter's live value.
	Get(ctx context.Context, name string) (string, error)

	// Set overwrites the parameter's live value.
	Set(ctx context.Context, name, value string) error
}

var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)+$`)

// ValidateName rejects parameter names that are not dotted identifiers.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"invalid kernel parameter name", map[string]any{"name": name})
	}
	return nil
}

// New returns the Host for the named backend.
func New(backend string) (Host, error) {
	switch strings.ToLower(backend) {
	case "", BackendCommand:
		return NewCommand(), nil
	case BackendProc:
		return NewProc(""), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown sysctl backend %q, expected %q or %q", backend, BackendCommand, BackendProc))
	}
}

// firstLine returns s up to, not including, the first newline.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r")
}
