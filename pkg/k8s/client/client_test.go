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

package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

func TestBuildKubeClient_InvalidPath(t *testing.T) {
	tests := []struct {
		name          string
		kubeconfigArg string
		kubeconfigEnv string
	}{
		{name: "explicit invalid path", kubeconfigArg: "/nonexistent/path/to/kubeconfig"},
		{name: "env var with invalid path", kubeconfigEnv: "/nonexistent/env/kubeconfig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.kubeconfigEnv)

			_, err := BuildKubeClient(tt.kubeconfigArg)
			if err == nil {
				t.Fatal("BuildKubeClient() expected error")
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
				t.Errorf("BuildKubeClient() code = %s, want %s", errors.CodeOf(err), errors.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestBuildKubeClient_ValidKubeconfig(t *testing.T) {
	kubeconfig := filepath.Join(t.TempDir(), "config")
	content := `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
    insecure-skip-tls-verify: true
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user:
    token: abc
`
	if err := os.WriteFile(kubeconfig, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cs, err := BuildKubeClient(kubeconfig)
	if err != nil {
		t.Fatalf("BuildKubeClient() error = %v", err)
	}
	if cs == nil {
		t.Fatal("BuildKubeClient() returned nil client")
	}
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv("KUBECONFIG", "/custom/kubeconfig")
	if got := resolveKubeconfig(); got != "/custom/kubeconfig" {
		t.Errorf("resolveKubeconfig() = %q, want /custom/kubeconfig", got)
	}

	t.Setenv("KUBECONFIG", "")
	t.Setenv("HOME", t.TempDir())
	if got := resolveKubeconfig(); got != "" {
		t.Errorf("resolveKubeconfig() = %q, want empty without a config file", got)
	}
}
