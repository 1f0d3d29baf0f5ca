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

// Package storage uploads dump files to the remote store configured for the
// node.
//
// Two backends are supported:
//
//   - s3: any S3-compatible object store, addressed path-style so custom
//     endpoints (MinIO, Ceph RGW) work without DNS bucket routing.
//   - oci: an OCI registry; each dump becomes a single-layer artifact tagged
//     with a name derived from the dump file name.
//
// The target is read from the environment through a LookupFunc every time
// New is called, so credentials and buckets can be rotated without a
// restart:
//
//	t := storage.TargetFromEnv(os.LookupEnv)
//	up, err := storage.New(t)
//	if err != nil {
//	    return err
//	}
//	id, err := up.Upload(ctx, "core-1.zip", data)
package storage
