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

package param

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/core-dump-agent/pkg/errors"
	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

// fakeHost is an in-memory sysctl.Host that records every Set call.
type fakeHost struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  map[string]error
	setErr  map[string]error
	setLogs []string
}

func newFakeHost(values map[string]string) *fakeHost {
	return &fakeHost{
		values: values,
		getErr: map[string]error{},
		setErr: map[string]error{},
	}
}

func (f *fakeHost) Get(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[name]; err != nil {
		return "", err
	}
	v, ok := f.values[name]
	if !ok {
		return "", errors.New(errors.ErrCodeInternal, "unknown key "+name)
	}
	return v, nil
}

func (f *fakeHost) Set(_ context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLogs = append(f.setLogs, name+"="+value)
	if err := f.setErr[name]; err != nil {
		return err
	}
	f.values[name] = value
	return nil
}

func (f *fakeHost) value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

func (f *fakeHost) sets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.setLogs...)
}

func hostDefaults() map[string]string {
	return map[string]string{
		CorePattern:   "|/usr/share/apport/apport -p%p -s%s -c%c -d%d -P%P -u%u -g%g -- %E",
		CorePipeLimit: "0",
		SuidDumpable:  "0",
	}
}

func TestInstallRestore_RoundTrip(t *testing.T) {
	values := []string{
		"core",
		"",
		" leading and trailing ",
		"|/usr/lib/systemd/systemd-coredump %P %u %g %s %t %c %h",
		"%e.%p.%t",
		"0",
		"9223372036854775807",
		"ünïcødé/core",
		"tab\tseparated",
	}

	for i, original := range values {
		t.Run(fmt.Sprintf("value-%d", i), func(t *testing.T) {
			host := newFakeHost(map[string]string{CorePattern: original})
			m := NewManager(host, t.TempDir())
			ctx := context.Background()

			require.NoError(t, m.Install(ctx, Parameter{Name: CorePattern, Value: "|/x/cdc"}))
			assert.Equal(t, "|/x/cdc", host.value(CorePattern))

			state, err := m.State(ctx, Parameter{Name: CorePattern, Value: "|/x/cdc"})
			require.NoError(t, err)
			assert.Equal(t, StateOverridden, state)

			require.NoError(t, m.Restore(ctx, CorePattern))
			assert.Equal(t, original, host.value(CorePattern))

			state, err = m.State(ctx, Parameter{Name: CorePattern, Value: "|/x/cdc"})
			require.NoError(t, err)
			assert.Equal(t, StateUnmanaged, state)
		})
	}
}

func TestInstall_BackupIsFirstLine(t *testing.T) {
	dir := t.TempDir()
	host := newFakeHost(map[string]string{CorePattern: "core"})
	m := NewManager(host, dir)

	require.NoError(t, m.Install(context.Background(), Parameter{Name: CorePattern, Value: "|/x/cdc"}))

	b, err := os.ReadFile(filepath.Join(dir, "core_pattern.bak"))
	require.NoError(t, err)
	assert.Equal(t, "core", string(b))
}

func TestInstall_ReentrantKeepsFirstBackup(t *testing.T) {
	dir := t.TempDir()
	host := newFakeHost(map[string]string{CorePattern: "core"})
	m := NewManager(host, dir)
	ctx := context.Background()

	managed := Parameter{Name: CorePattern, Value: "|/x/cdc"}
	require.NoError(t, m.Install(ctx, managed))
	require.NoError(t, m.Install(ctx, managed))

	b, err := os.ReadFile(filepath.Join(dir, "core_pattern.bak"))
	require.NoError(t, err)
	assert.Equal(t, "core", string(b), "second install must not record the agent's own value")
	assert.Equal(t, "|/x/cdc", host.value(CorePattern))

	require.NoError(t, m.Restore(ctx, CorePattern))
	assert.Equal(t, "core", host.value(CorePattern))
}

func TestInstall_QueryFailure(t *testing.T) {
	dir := t.TempDir()
	host := newFakeHost(hostDefaults())
	host.getErr[CorePattern] = errors.New(errors.ErrCodeUnauthorized, "permission denied")
	m := NewManager(host, dir)

	err := m.Install(context.Background(), Parameter{Name: CorePattern, Value: "|/x/cdc"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
	assert.Empty(t, host.sets(), "no write may follow a failed read")

	_, statErr := os.Stat(filepath.Join(dir, "core_pattern.bak"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstall_SetFailureKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	host := newFakeHost(hostDefaults())
	host.setErr[SuidDumpable] = errors.New(errors.ErrCodeInternal, "sysctl: permission denied")
	m := NewManager(host, dir)

	p := Parameter{Name: SuidDumpable, Value: "2"}
	err := m.Install(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, "0", host.value(SuidDumpable))

	value, err := m.Backups().Read(SuidDumpable)
	require.NoError(t, err)
	assert.Equal(t, "0", value)

	state, err := m.State(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StateBackedUp, state)
}

func TestRestore_MissingBackup(t *testing.T) {
	host := newFakeHost(hostDefaults())
	m := NewManager(host, t.TempDir())

	err := m.Restore(context.Background(), SuidDumpable)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound), "got %v", err)
	assert.Empty(t, host.sets(), "restore without a backup must not write the kernel")
}

func TestRestore_SetFailureKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	host := newFakeHost(hostDefaults())
	m := NewManager(host, dir)
	ctx := context.Background()

	require.NoError(t, m.Install(ctx, Parameter{Name: CorePipeLimit, Value: "128"}))

	host.setErr[CorePipeLimit] = errors.New(errors.ErrCodeInternal, "rejected")
	require.Error(t, m.Restore(ctx, CorePipeLimit))

	exists, err := m.Backups().Exists(CorePipeLimit)
	require.NoError(t, err)
	assert.True(t, exists, "backup must survive a failed restore")

	delete(host.setErr, CorePipeLimit)
	require.NoError(t, m.Restore(ctx, CorePipeLimit))
	assert.Equal(t, "0", host.value(CorePipeLimit))
}

func TestInstallAll_AbortsOnFirstFailure(t *testing.T) {
	host := newFakeHost(hostDefaults())
	host.setErr[CorePipeLimit] = errors.New(errors.ErrCodeInternal, "rejected")
	m := NewManager(host, t.TempDir())

	params, err := Managed("/var/mnt/core-dump-handler", "2")
	require.NoError(t, err)

	require.Error(t, m.InstallAll(context.Background(), params))

	state, err := m.State(context.Background(), params[2])
	require.NoError(t, err)
	assert.Equal(t, StateUnmanaged, state, "parameters after the failure must not be touched")
	assert.Equal(t, "0", host.value(SuidDumpable))
}

func TestRestoreAll_BestEffort(t *testing.T) {
	host := newFakeHost(hostDefaults())
	m := NewManager(host, t.TempDir())
	ctx := context.Background()

	params, err := Managed("/var/mnt/core-dump-handler", "2")
	require.NoError(t, err)
	require.NoError(t, m.InstallAll(ctx, params))

	// Lose the first record; the remaining two must still be restored.
	require.NoError(t, m.Backups().Remove(CorePattern))

	err = m.RestoreAll(ctx, Names)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	assert.Equal(t, "0", host.value(CorePipeLimit))
	assert.Equal(t, "0", host.value(SuidDumpable))
}

func TestManager_WithProcHost(t *testing.T) {
	root := t.TempDir()
	for rel, content := range map[string]string{
		"kernel/core_pattern":    "core\n",
		"kernel/core_pipe_limit": "0\n",
		"fs/suid_dumpable":       "0\n",
	} {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	host := sysctl.NewProc(root)
	m := NewManager(host, t.TempDir())
	ctx := context.Background()

	params, err := Managed("/var/mnt/core-dump-handler", "1")
	require.NoError(t, err)
	require.NoError(t, m.InstallAll(ctx, params))

	got, err := host.Get(ctx, CorePattern)
	require.NoError(t, err)
	assert.Equal(t, params[0].Value, got)

	require.NoError(t, m.RestoreAll(ctx, Names))
	for name, want := range map[string]string{CorePattern: "core", CorePipeLimit: "0", SuidDumpable: "0"} {
		got, err := host.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}
