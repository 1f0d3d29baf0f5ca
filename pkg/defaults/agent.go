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

package defaults

// Agent layout and kernel parameter defaults.
const (
	// HostDir is the managed directory on the host.
	HostDir = "/var/mnt/core-dump-handler"

	// CoreDirName is the drop directory under HostDir.
	CoreDirName = "core"

	// ComposerName is the file name of the composer executable under HostDir.
	ComposerName = "cdc"

	// IntervalMillis is the default polling interval in milliseconds.
	IntervalMillis = 60000

	// SuidDumpable is the default fs.suid_dumpable value.
	SuidDumpable = "2"

	// CorePipeLimit is the kernel.core_pipe_limit value installed by the agent.
	CorePipeLimit = "128"

	// BinPath is the PATH used when invoking host tools.
	BinPath = "/bin:/sbin:/usr/bin:/usr/sbin:/usr/local/bin"
)
