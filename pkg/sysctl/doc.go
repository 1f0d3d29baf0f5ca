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

// Package sysctl queries and sets host-wide kernel parameters.
//
// Two backends implement Host:
//
//   - Command runs the host's sysctl binary ("sysctl -n name" and
//     "sysctl -w name=value") with PATH pinned to the standard system
//     directories.
//   - Proc reads and writes files under /proc/sys directly, translating
//     "kernel.core_pattern" into "/proc/sys/kernel/core_pattern".
//
// Both return only the first line of a parameter's value, without the
// trailing newline, which is the significant part for every parameter the
// agent manages.
package sysctl
