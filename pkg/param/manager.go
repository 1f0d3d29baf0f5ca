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
	"errors"
	"log/slog"

	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

// Manager installs and restores managed kernel parameters.
type Manager struct {
	host    sysctl.Host
	backups *Backups
}

// NewManager returns a Manager that mutates parameters through host and keeps
// backup records in backupDir.
func NewManager(host sysctl.Host, backupDir string) *Manager {
	return &Manager{
		host:    host,
		backups: NewBackups(backupDir),
	}
}

// Backups exposes the manager's backup store.
func (m *Manager) Backups() *Backups {
	return m.backups
}

// State reports where p is in its lifecycle. With a backup present, p is
// StateOverridden when the live value equals p.Value and StateBackedUp
// otherwise, as after a Set that failed or an external rewrite.
func (m *Manager) State(ctx context.Context, p Parameter) (State, error) {
	ok, err := m.backups.Exists(p.Name)
	if err != nil {
		return "", err
	}
	if !ok {
		return StateUnmanaged, nil
	}

	live, err := m.host.Get(ctx, p.Name)
	if err != nil {
		return "", err
	}
	if live != p.Value {
		return StateBackedUp, nil
	}
	return StateOverridden, nil
}

// Install records the live value of p and then sets p.Value.
//
// When a backup record already exists the agent still owns the parameter
// from an earlier run, so the record is left untouched and only the managed
// value is re-applied. Overwriting it would replace the true original with
// the agent's own value.
func (m *Manager) Install(ctx context.Context, p Parameter) error {
	log := slog.With("name", p.Name)

	exists, err := m.backups.Exists(p.Name)
	if err != nil {
		return err
	}

	if exists {
		log.Warn("backup record already present, keeping it", "path", m.backups.Path(p.Name))
	} else {
		current, err := m.host.Get(ctx, p.Name)
		if err != nil {
			return err
		}
		if err := m.backups.Write(p.Name, current); err != nil {
			return err
		}
		log.Info("created backup", "path", m.backups.Path(p.Name), "value", current)
	}

	if err := m.host.Set(ctx, p.Name, p.Value); err != nil {
		return err
	}

	log.Info("installed kernel parameter", "value", p.Value)
	return nil
}

// Restore writes the backed-up value of name back to the kernel and then
// deletes the record. A missing record is an ErrCodeNotFound error and no
// kernel write is attempted. If the kernel rejects the value the record is
// kept so a later Restore can retry.
func (m *Manager) Restore(ctx context.Context, name string) error {
	value, err := m.backups.Read(name)
	if err != nil {
		return err
	}

	if err := m.host.Set(ctx, name, value); err != nil {
		return err
	}

	if err := m.backups.Remove(name); err != nil {
		return err
	}

	slog.Info("restored kernel parameter", "name", name, "value", value)
	return nil
}

// InstallAll installs params in order and stops at the first failure.
func (m *Manager) InstallAll(ctx context.Context, params []Parameter) error {
	for _, p := range params {
		if err := m.Install(ctx, p); err != nil {
			slog.Error("install aborted", "name", p.Name, "error", err)
			return err
		}
	}
	return nil
}

// RestoreAll attempts every named parameter even when earlier ones fail and
// returns all failures joined.
func (m *Manager) RestoreAll(ctx context.Context, names []string) error {
	var errs []error
	for _, name := range names {
		if err := m.Restore(ctx, name); err != nil {
			slog.Error("failed to restore kernel parameter", "name", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
