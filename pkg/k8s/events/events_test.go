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

package events

import (
	"context"
	"strings"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

func TestRecorder_DumpUploaded(t *testing.T) {
	clientset := fake.NewClientset(&corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "gpu-node-1", UID: types.UID("3f1c0a52-uid")},
	})
	r := NewRecorder(clientset, "gpu-node-1")

	tick := time.Unix(1700000000, 0)
	r.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	ctx := context.Background()
	if err := r.DumpUploaded(ctx, "core-1.zip", "etag-1", 2048); err != nil {
		t.Fatalf("DumpUploaded() error = %v", err)
	}
	if err := r.DumpUploaded(ctx, "core-2.zip", "etag-2", 10); err != nil {
		t.Fatalf("second DumpUploaded() error = %v", err)
	}

	list, err := clientset.CoreV1().Events(metav1.NamespaceDefault).List(ctx, metav1.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("got %d events, want 2", len(list.Items))
	}

	var ev *corev1.Event
	for i := range list.Items {
		if strings.Contains(list.Items[i].Message, "core-1.zip") {
			ev = &list.Items[i]
		}
	}
	if ev == nil {
		t.Fatal("no event mentions core-1.zip")
	}

	if ev.InvolvedObject.Kind != "Node" || ev.InvolvedObject.Name != "gpu-node-1" {
		t.Errorf("InvolvedObject = %+v", ev.InvolvedObject)
	}
	if ev.InvolvedObject.UID != "3f1c0a52-uid" {
		t.Errorf("InvolvedObject.UID = %q, want the node's UID", ev.InvolvedObject.UID)
	}
	if ev.Reason != ReasonUploaded {
		t.Errorf("Reason = %q, want %q", ev.Reason, ReasonUploaded)
	}
	if ev.Type != corev1.EventTypeNormal {
		t.Errorf("Type = %q, want Normal", ev.Type)
	}
	if ev.Source.Component != Component || ev.Source.Host != "gpu-node-1" {
		t.Errorf("Source = %+v", ev.Source)
	}
	if !strings.Contains(ev.Message, "2048 bytes") || !strings.Contains(ev.Message, "etag-1") {
		t.Errorf("Message = %q", ev.Message)
	}
}

func TestRecorder_CreateFailure(t *testing.T) {
	clientset := fake.NewClientset()
	clientset.PrependReactor("create", "events", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New(errors.ErrCodeUnauthorized, "forbidden")
	})

	err := NewRecorder(clientset, "node-a").DumpUploaded(context.Background(), "core.zip", "id", 1)
	if !errors.HasCode(err, errors.ErrCodeUnavailable) {
		t.Errorf("DumpUploaded() error = %v, want SERVICE_UNAVAILABLE", err)
	}
}

func TestRecorder_UnknownNodeFallsBackToName(t *testing.T) {
	clientset := fake.NewClientset()
	r := NewRecorder(clientset, "missing-node")

	if err := r.DumpUploaded(context.Background(), "core.zip", "id", 1); err != nil {
		t.Fatalf("DumpUploaded() error = %v", err)
	}

	list, err := clientset.CoreV1().Events(metav1.NamespaceDefault).List(context.Background(), metav1.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("got %d events, want 1", len(list.Items))
	}
	if got := list.Items[0].InvolvedObject.UID; got != types.UID("missing-node") {
		t.Errorf("InvolvedObject.UID = %q, want missing-node", got)
	}
}
