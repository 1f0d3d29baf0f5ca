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

// Package composer installs and removes the files the kernel-invoked dump
// composer needs on the host.
//
// Deploy copies the vendor-specific composer binary into the host directory,
// optionally adds crictl and a crictl.yaml pointing at containerd, and writes
// the composer's .env settings file. Remove deletes the same files again.
//
// Host directory layout after Deploy:
//
//	<host-dir>/cdc           composer binary, invoked through kernel.core_pattern
//	<host-dir>/.env          composer settings
//	<host-dir>/crictl        optional
//	<host-dir>/crictl.yaml   optional
//	<host-dir>/composer.log  written by the composer itself
package composer
