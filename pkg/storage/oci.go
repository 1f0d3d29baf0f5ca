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
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

const (
	// ArtifactType marks manifests produced for core dumps.
	ArtifactType = "application/vnd.nvidia.core-dump.v1"
	// LayerMediaType is the media type of the single dump layer.
	LayerMediaType = "application/vnd.nvidia.core-dump.layer.v1+zip"

	maxTagLength = 128
)

var invalidTagChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// OCI pushes each dump as a single-layer artifact to a registry repository.
type OCI struct {
	target oras.Target
	ref    string
}

// NewOCI returns an OCI uploader for t. Credentials come from the Docker
// config of the agent's user, if any.
func NewOCI(t Target) (*OCI, error) {
	registry := stripProtocol(t.Registry)
	ref := fmt.Sprintf("%s/%s", registry, t.Repository)

	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid OCI repository reference", err,
			map[string]any{"reference": ref})
	}

	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to initialize remote repository", err,
			map[string]any{"reference": ref})
	}
	repo.PlainHTTP = t.PlainHTTP || strings.HasPrefix(t.Registry, "http://")
	repo.Client = createAuthClient(repo.PlainHTTP, t.InsecureTLS)

	return &OCI{target: repo, ref: ref}, nil
}

// Upload pushes data as a layer, packs a manifest around it, tags it with a
// tag derived from key and returns the manifest digest.
func (o *OCI) Upload(ctx context.Context, key string, data []byte) (string, error) {
	tag := TagFor(key)
	if _, err := reference.ParseNormalizedNamed(o.ref + ":" + tag); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid OCI reference", err,
			map[string]any{"reference": o.ref, "tag": tag})
	}

	layer := content.NewDescriptorFromBytes(LayerMediaType, data)
	exists, err := o.target.Exists(ctx, layer)
	if err != nil {
		return "", o.wrap("failed to query layer", err, key)
	}
	if !exists {
		if err := o.target.Push(ctx, layer, bytes.NewReader(data)); err != nil {
			return "", o.wrap("failed to push layer", err, key)
		}
	}
	layer.Annotations = map[string]string{ociv1.AnnotationTitle: key}

	manifest, err := oras.PackManifest(ctx, o.target, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{Layers: []ociv1.Descriptor{layer}})
	if err != nil {
		return "", o.wrap("failed to pack manifest", err, key)
	}

	if err := o.target.Tag(ctx, manifest, tag); err != nil {
		return "", o.wrap("failed to tag manifest", err, key)
	}

	return manifest.Digest.String(), nil
}

func (o *OCI) wrap(msg string, err error, key string) error {
	return errors.WrapWithContext(errors.ErrCodeUnavailable, msg, err,
		map[string]any{"reference": o.ref, "key": key})
}

// TagFor maps a dump file name onto a valid OCI tag. Characters outside
// [A-Za-z0-9_.-] become '-', a leading '.' or '-' is prefixed with '_' and
// the result is capped at 128 characters.
func TagFor(key string) string {
	tag := invalidTagChars.ReplaceAllString(key, "-")
	if tag == "" {
		return "_"
	}
	if tag[0] == '.' || tag[0] == '-' {
		tag = "_" + tag
	}
	if len(tag) > maxTagLength {
		tag = tag[:maxTagLength]
	}
	return tag
}

// stripProtocol removes http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return strings.TrimSuffix(registry, "/")
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := newHTTPClient().Transport.(*http.Transport)
	if !plainHTTP && insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
