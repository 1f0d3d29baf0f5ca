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

// Package agent runs the node-level core dump agent.
//
// Install mode redirects the kernel's core dumps to the composer, deploys
// the composer files and then polls the dump directory, uploading every
// finished dump:
//
//	a, err := agent.New(cfg)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx) // returns when ctx is canceled
//
// Teardown mode puts the original kernel parameters back and deletes the
// composer files:
//
//	return a.Teardown(ctx)
//
// Kernel parameter installation is all-or-nothing from the caller's point of
// view: any failure is returned before the polling loop starts. Within the
// loop every error is logged and retried on the next interval.
package agent
