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
	"path/filepath"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Managed parameter names.
const (
	CorePattern   = "kernel.core_pattern"
	CorePipeLimit = "kernel.core_pipe_limit"
	SuidDumpable  = "fs.suid_dumpable"
)

// Names lists the managed parameters in install order.
var Names = []string{CorePattern, CorePipeLimit, SuidDumpable}

// State is the lifecycle position of a managed parameter.
type State string

const (
	// StateUnmanaged means no backup exists; the live value is not the agent's.
	StateUnmanaged State = "Unmanaged"
	// StateBackedUp means the original value is recorded but the managed value
	// is not live.
	StateBackedUp State = "BackedUp"
	// StateOverridden means the agent's value is live and a backup exists.
	StateOverridden State = "Overridden"
)

// Parameter is a kernel parameter and the value the agent wants it to hold.
type Parameter struct {
	Name  string
	Value string
}

// ShortName returns the last dotted segment of a parameter name.
func ShortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// CorePatternValue renders the pipe command the kernel runs for every dump.
// The %-fields are substituted by the kernel; dumpDir is literal.
func CorePatternValue(hostDir, composer, dumpDir string) string {
	return fmt.Sprintf("|%s -c=%%c -e=%%e -p=%%p -s=%%s -t=%%t -d=%s -h=%%h -E=%%E",
		filepath.Join(hostDir, composer), dumpDir)
}

// Managed returns the three parameters the agent installs for hostDir.
func Managed(hostDir, suidDumpable string) ([]Parameter, error) {
	switch suidDumpable {
	case "0", "1", "2":
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"suid dumpable must be 0, 1 or 2", map[string]any{"value": suidDumpable})
	}

	dumpDir := filepath.Join(hostDir, defaults.CoreDirName)

	return []Parameter{
		{Name: CorePattern, Value: CorePatternValue(hostDir, defaults.ComposerName, dumpDir)},
		{Name: CorePipeLimit, Value: defaults.CorePipeLimit},
		{Name: SuidDumpable, Value: suidDumpable},
	}, nil
}
