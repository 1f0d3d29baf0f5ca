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

// Package param owns the host kernel parameters the agent overrides.
//
// Each managed parameter moves through a small state machine:
//
//	Unmanaged -> BackedUp -> Overridden -> Restored (Unmanaged)
//
// Install captures the live value into a backup record before writing the
// managed value; Restore writes the backed-up value back and deletes the
// record only once the kernel accepted it. The backup record therefore acts
// as a persistent ownership marker: while it exists, the live value belongs
// to the agent and the record holds the value to return to.
//
// Backup records live in the managed directory as "<short name>.bak", where
// the short name is the last dotted segment of the parameter name
// ("kernel.core_pattern" is backed up to "core_pattern.bak").
package param
