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

// Package events records core dump uploads as Kubernetes events on the node
// the agent runs on.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

const (
	// ReasonUploaded is the event reason for a stored dump.
	ReasonUploaded = "CoreDumpUploaded"
	// Component is reported as the event source.
	Component = "core-dump-agent"

	// Node events live in the default namespace.
	namespace = metav1.NamespaceDefault
)

// Recorder publishes events about nodeName.
type Recorder struct {
	client   kubernetes.Interface
	nodeName string
	now      func() time.Time

	refOnce sync.Once
	ref     corev1.ObjectReference
}

// NewRecorder returns a Recorder for nodeName.
func NewRecorder(client kubernetes.Interface, nodeName string) *Recorder {
	return &Recorder{
		client:   client,
		nodeName: nodeName,
		now:      time.Now,
	}
}

// DumpUploaded creates a Normal event stating that key was stored as id.
func (r *Recorder) DumpUploaded(ctx context.Context, key, id string, size int) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.EventTimeout)
	defer cancel()

	now := r.now()
	ts := metav1.NewTime(now)

	ev := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			Name:      fmt.Sprintf("%s.%x", r.nodeName, now.UnixNano()),
			Namespace: namespace,
		},
		InvolvedObject: r.nodeRef(ctx),
		Reason:         ReasonUploaded,
		Message:        fmt.Sprintf("Core dump %s (%d bytes) uploaded as %s", key, size, id),
		Type:           corev1.EventTypeNormal,
		Source:         corev1.EventSource{Component: Component, Host: r.nodeName},
		FirstTimestamp: ts,
		LastTimestamp:  ts,
		Count:          1,
	}

	if _, err := r.client.CoreV1().Events(namespace).Create(ctx, ev, metav1.CreateOptions{}); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to create node event", err,
			map[string]any{"node": r.nodeName, "key": key})
	}
	return nil
}

// nodeRef resolves the node's UID once. kubectl matches node events by UID,
// so the name is only a fallback when the node cannot be read.
func (r *Recorder) nodeRef(ctx context.Context) corev1.ObjectReference {
	r.refOnce.Do(func() {
		r.ref = corev1.ObjectReference{
			APIVersion: "v1",
			Kind:       "Node",
			Name:       r.nodeName,
			UID:        types.UID(r.nodeName),
		}

		node, err := r.client.CoreV1().Nodes().Get(ctx, r.nodeName, metav1.GetOptions{})
		if err != nil {
			slog.Warn("failed to look up node, events will reference it by name", "node", r.nodeName, "error", err)
			return
		}
		r.ref.UID = node.UID
		r.ref.ResourceVersion = node.ResourceVersion
	})
	return r.ref
}
