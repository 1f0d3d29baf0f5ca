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

package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendS3  Backend = "s3"
	BackendOCI Backend = "oci"
)

// Environment keys consulted by TargetFromEnv.
const (
	EnvBackend       = "STORAGE_BACKEND"
	EnvS3AccessKey   = "S3_ACCESS_KEY"
	EnvS3Secret      = "S3_SECRET"
	EnvS3Bucket      = "S3_BUCKET_NAME"
	EnvS3Region      = "S3_REGION"
	EnvS3Endpoint    = "S3_ENDPOINT"
	EnvOCIRegistry   = "OCI_REGISTRY"
	EnvOCIRepository = "OCI_REPOSITORY"
	EnvOCIPlainHTTP  = "OCI_PLAIN_HTTP"
	EnvOCIInsecure   = "OCI_INSECURE_TLS"
)

// LookupFunc resolves an environment key. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Uploader stores one object under key and returns the identifier assigned by
// the store (an ETag or a manifest digest).
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Target describes where dumps go.
type Target struct {
	Backend Backend

	AccessKey string
	Secret    string
	Bucket    string
	Region    string
	// Endpoint overrides the AWS endpoint, e.g. "http://minio:9000".
	Endpoint string

	Registry   string
	Repository string
	PlainHTTP  bool

	// InsecureTLS skips registry certificate verification.
	InsecureTLS bool
}

// TargetFromEnv builds a Target from lookup. An unset backend means s3.
func TargetFromEnv(lookup LookupFunc) Target {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	t := Target{
		Backend:    Backend(strings.ToLower(get(EnvBackend))),
		AccessKey:  get(EnvS3AccessKey),
		Secret:     get(EnvS3Secret),
		Bucket:     get(EnvS3Bucket),
		Region:     get(EnvS3Region),
		Endpoint:   get(EnvS3Endpoint),
		Registry:   get(EnvOCIRegistry),
		Repository: get(EnvOCIRepository),
	}
	if t.Backend == "" {
		t.Backend = BackendS3
	}
	if v := get(EnvOCIPlainHTTP); v != "" {
		t.PlainHTTP, _ = strconv.ParseBool(v)
	}
	if v := get(EnvOCIInsecure); v != "" {
		t.InsecureTLS, _ = strconv.ParseBool(v)
	}
	return t
}

// Validate reports the first missing setting for the selected backend.
func (t Target) Validate() error {
	var missing string
	switch t.Backend {
	case BackendS3:
		switch {
		case t.Bucket == "":
			missing = EnvS3Bucket
		case t.Region == "":
			missing = EnvS3Region
		case (t.AccessKey == "") != (t.Secret == ""):
			missing = EnvS3AccessKey + "/" + EnvS3Secret
		}
	case BackendOCI:
		switch {
		case t.Registry == "":
			missing = EnvOCIRegistry
		case t.Repository == "":
			missing = EnvOCIRepository
		}
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported storage backend",
			map[string]any{"backend": string(t.Backend)})
	}

	if missing != "" {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "storage target is incomplete",
			map[string]any{"backend": string(t.Backend), "missing": missing})
	}
	return nil
}

// New validates t and returns the matching Uploader.
func New(t Target) (Uploader, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	switch t.Backend {
	case BackendOCI:
		return NewOCI(t)
	default:
		return NewS3(t)
	}
}
