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

package composer

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// File names placed in the host directory.
const (
	EnvFileName    = ".env"
	CrictlName     = "crictl"
	CrictlConfName = "crictl.yaml"
	LogFileName    = "composer.log"
)

// Supported composer builds.
const (
	VendorDefault = "default"
	VendorRHEL7   = "rhel7"
)

const containerdSocket = "unix:///run/containerd/containerd.sock"

// Config controls what Deploy installs.
type Config struct {
	// HostDir receives the deployed files.
	HostDir string
	// SourceDir holds vendor/<vendor>/cdc and crictl as shipped in the image.
	SourceDir string
	// Vendor selects the composer build; matched case-insensitively.
	Vendor string

	DeployCrioConfig bool
	DeployCrioExe    bool

	// Settings written to the composer's .env file.
	LogLevel     string
	IgnoreCrio   bool
	CrioImageCmd string
}

type crictlConfig struct {
	RuntimeEndpoint   string `yaml:"runtime-endpoint"`
	ImageEndpoint     string `yaml:"image-endpoint"`
	Timeout           int    `yaml:"timeout"`
	Debug             bool   `yaml:"debug"`
	PullImageOnCreate bool   `yaml:"pull-image-on-create"`
}

// NormalizeVendor lower-cases v and checks it names a supported build.
func NormalizeVendor(v string) (string, error) {
	vendor := cases.Lower(language.Und).String(strings.TrimSpace(v))
	switch vendor {
	case VendorDefault, VendorRHEL7:
		return vendor, nil
	default:
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown vendor",
			map[string]any{"vendor": v})
	}
}

// Validate checks that cfg names a supported vendor and that every file
// Deploy would copy is present in cfg.SourceDir. It writes nothing.
func Validate(cfg Config) error {
	vendor, err := NormalizeVendor(cfg.Vendor)
	if err != nil {
		return err
	}

	sources := []string{filepath.Join(cfg.SourceDir, "vendor", vendor, defaults.ComposerName)}
	if cfg.DeployCrioExe {
		sources = append(sources, filepath.Join(cfg.SourceDir, CrictlName))
	}

	for _, src := range sources {
		fi, err := os.Stat(src)
		if err != nil {
			code := errors.ErrCodeInternal
			if os.IsNotExist(err) {
				code = errors.ErrCodeNotFound
			}
			return errors.WrapWithContext(code, "composer source is not available", err,
				map[string]any{"path": src})
		}
		if !fi.Mode().IsRegular() {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"composer source is not a regular file", map[string]any{"path": src})
		}
	}
	return nil
}

// Deploy installs the composer files into cfg.HostDir.
func Deploy(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	vendor, err := NormalizeVendor(cfg.Vendor)
	if err != nil {
		return err
	}

	if cfg.DeployCrioConfig {
		if err := writeCrictlConfig(filepath.Join(cfg.HostDir, CrictlConfName)); err != nil {
			return err
		}
	}

	if cfg.DeployCrioExe {
		if err := copyExecutable(
			filepath.Join(cfg.SourceDir, CrictlName),
			filepath.Join(cfg.HostDir, CrictlName),
		); err != nil {
			return err
		}
	}

	if err := copyExecutable(
		filepath.Join(cfg.SourceDir, "vendor", vendor, defaults.ComposerName),
		filepath.Join(cfg.HostDir, defaults.ComposerName),
	); err != nil {
		return err
	}

	return writeEnvFile(filepath.Join(cfg.HostDir, EnvFileName), cfg)
}

// Remove deletes the composer binary and its .env file, and crictl,
// crictl.yaml and composer.log when present. Every file is attempted; the
// returned error joins all failures.
func Remove(hostDir string) error {
	var errs []error

	for _, name := range []string{defaults.ComposerName, EnvFileName} {
		if err := removeFile(filepath.Join(hostDir, name), false); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range []string{CrictlName, CrictlConfName, LogFileName} {
		if err := removeFile(filepath.Join(hostDir, name), true); err != nil {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}

func removeFile(path string, optional bool) error {
	err := os.Remove(path)
	switch {
	case err == nil:
		slog.Info("removed file", "path", path)
		return nil
	case optional && os.IsNotExist(err):
		return nil
	default:
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to remove file", err,
			map[string]any{"path": path})
	}
}

func writeCrictlConfig(path string) error {
	data, err := yaml.Marshal(crictlConfig{
		RuntimeEndpoint: containerdSocket,
		ImageEndpoint:   containerdSocket,
		Timeout:         2,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode crictl config", err)
	}

	slog.Info("generating crictl config", "path", path)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // read by crictl as another user
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write crictl config", err,
			map[string]any{"path": path})
	}
	return nil
}

func writeEnvFile(path string, cfg Config) error {
	env := map[string]string{
		"LOG_LEVEL":      cfg.LogLevel,
		"IGNORE_CRIO":    strconv.FormatBool(cfg.IgnoreCrio),
		"CRIO_IMAGE_CMD": cfg.CrioImageCmd,
		"USE_CRIO_CONF":  strconv.FormatBool(cfg.DeployCrioConfig),
	}

	slog.Info("writing composer settings", "path", path, "log_level", cfg.LogLevel)
	if err := godotenv.Write(env, path); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write composer settings", err,
			map[string]any{"path": path})
	}
	return nil
}

// copyExecutable copies src to dst with mode 0755, replacing dst through a
// rename so a running composer never sees a partial binary.
func copyExecutable(src, dst string) error {
	slog.Info("copying file", "from", src, "to", dst)

	in, err := os.Open(src)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to open source file", err,
			map[string]any{"path": src})
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+"-*")
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create destination file", err,
			map[string]any{"path": dst})
	}
	tmpName := tmp.Name()

	_, werr := io.Copy(tmp, in)
	if werr == nil {
		werr = tmp.Chmod(0o755)
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, dst)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return errors.WrapWithContext(errors.ErrCodeInternal, fmt.Sprintf("failed to copy %s", filepath.Base(src)), werr,
			map[string]any{"from": src, "to": dst})
	}
	return nil
}
