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

package harvest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Uploader stores one dump under key and returns the identifier the storage
// assigned to it. A nil error means the content is durably stored.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// Notifier is told about every dump that storage confirmed.
type Notifier interface {
	DumpUploaded(ctx context.Context, key, id string, size int) error
}

// Result summarizes one pass.
type Result struct {
	// ID identifies the pass in logs.
	ID string
	// Keys lists the dumps confirmed by storage, in scan order.
	Keys []string

	Uploaded int
	Skipped  int
	Failed   int
	// Orphaned counts dumps that were uploaded but could not be deleted.
	// They will be uploaded again on a later pass.
	Orphaned int
}

// Harvester uploads and removes dumps found in Dir.
type Harvester struct {
	Dir string

	// Notifier is optional.
	Notifier Notifier

	// UploadTimeout bounds each Upload call. Zero means defaults.UploadTimeout.
	UploadTimeout time.Duration
}

// New returns a Harvester for dir.
func New(dir string) *Harvester {
	return &Harvester{
		Dir:           dir,
		UploadTimeout: defaults.UploadTimeout,
	}
}

type outcome int

const (
	uploaded outcome = iota
	skipped
	failed
	orphaned
)

// Pass lists Dir once and processes every file sequentially. Per-file
// failures are logged and counted, never returned. The error is non-nil only
// when the directory itself could not be listed.
func (h *Harvester) Pass(ctx context.Context, up Uploader) (Result, error) {
	start := time.Now()
	defer func() {
		passDuration.Observe(time.Since(start).Seconds())
	}()

	res := Result{ID: uuid.New().String()}
	log := slog.With("pass", res.ID, "dir", h.Dir)

	paths, err := Scan(h.Dir)
	if err != nil {
		scanErrors.Inc()
		return res, err
	}
	log.Debug("scanned dump directory", "files", len(paths))

	for _, path := range paths {
		if ctx.Err() != nil {
			log.Info("pass interrupted", "error", ctx.Err())
			break
		}

		switch h.process(ctx, log, up, path) {
		case uploaded:
			res.Uploaded++
			res.Keys = append(res.Keys, filepath.Base(path))
		case orphaned:
			res.Orphaned++
			res.Keys = append(res.Keys, filepath.Base(path))
		case skipped:
			res.Skipped++
		case failed:
			res.Failed++
		}
	}

	if len(paths) > 0 {
		log.Info("pass complete",
			"uploaded", res.Uploaded,
			"skipped", res.Skipped,
			"failed", res.Failed,
			"orphaned", res.Orphaned,
			"duration", time.Since(start).String())
	}

	return res, nil
}

func (h *Harvester) process(ctx context.Context, log *slog.Logger, up Uploader, path string) outcome {
	key := filepath.Base(path)
	log = log.With("file", key)

	data, err := readLocked(path)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeLocked) {
			log.Info("dump still being written, skipping")
			dumpsTotal.WithLabelValues(outcomeSkipped).Inc()
			return skipped
		}
		log.Error("failed to read dump", "error", err)
		dumpsTotal.WithLabelValues(outcomeFailed).Inc()
		return failed
	}

	id, err := h.upload(ctx, up, key, data)
	if err != nil {
		log.Error("upload failed, will retry next pass", "error", err)
		dumpsTotal.WithLabelValues(outcomeFailed).Inc()
		return failed
	}
	uploadedBytes.Add(float64(len(data)))
	log.Info("uploaded dump", "id", id, "bytes", len(data))

	if h.Notifier != nil {
		if err := h.Notifier.DumpUploaded(ctx, key, id, len(data)); err != nil {
			log.Warn("failed to publish upload notification", "error", err)
		}
	}

	if err := os.Remove(path); err != nil {
		log.Error("uploaded dump could not be deleted", "error", err)
		dumpsTotal.WithLabelValues(outcomeOrphaned).Inc()
		return orphaned
	}

	dumpsTotal.WithLabelValues(outcomeUploaded).Inc()
	return uploaded
}

func (h *Harvester) upload(ctx context.Context, up Uploader, key string, data []byte) (string, error) {
	timeout := h.UploadTimeout
	if timeout <= 0 {
		timeout = defaults.UploadTimeout
	}
	uctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return up.Upload(uctx, key, data)
}

// readLocked returns the content of path read under a shared lock. The lock
// is released and the file closed before returning.
func readLocked(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open dump", err,
			map[string]any{"path": path})
	}
	defer f.Close()

	if err := tryLockShared(f); err != nil {
		return nil, err
	}
	defer func() { _ = unlock(f) }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read dump", err,
			map[string]any{"path": path})
	}
	return data, nil
}
