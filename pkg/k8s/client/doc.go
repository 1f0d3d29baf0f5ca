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

// Package client provides the shared Kubernetes client used to publish node
// events.
//
// The client is created once with sync.Once and reused:
//
//	cs, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//
// Configuration is discovered in order from the KUBECONFIG environment
// variable, ~/.kube/config and the in-cluster service account. Use
// BuildKubeClient to bypass the cache with an explicit kubeconfig path.
package client
