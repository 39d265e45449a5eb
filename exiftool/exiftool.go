// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package exiftool drives the exiftool(1) metadata extraction tool as a
// subprocess.
//
// It is the sole collaborator knowing how radiometric JPEGs lay out their
// embedded data: calibration constants come back as JSON key-value pairs
// and the raw thermal block as opaque bytes. Any change to exiftool's
// output format lands here, not in the callers.
package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs the external tool once and returns its standard output. It
// can be mocked; flirtest provides a fake that needs no exiftool install.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner invokes a real exiftool binary.
type ExecRunner struct {
	path string
}

// NewExecRunner locates exiftool in $PATH.
func NewExecRunner() (*ExecRunner, error) {
	p, err := exec.LookPath("exiftool")
	if err != nil {
		return nil, fmt.Errorf("exiftool not installed: %w", err)
	}
	return &ExecRunner{path: p}, nil
}

// Run executes one exiftool invocation synchronously. A non-zero exit
// status surfaces as an error carrying whatever the tool printed on stderr.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	stdout := bytes.Buffer{}
	stderr := bytes.Buffer{}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("exiftool %s: %w", args[0], err)
		}
		return nil, fmt.Errorf("exiftool %s: %s: %w", args[0], msg, err)
	}
	return stdout.Bytes(), nil
}

// Metadata is the decoded tag set of one file. Numeric tags decode as
// float64, which is how encoding/json represents JSON numbers.
type Metadata map[string]interface{}

// Float returns a numeric tag.
func (m Metadata) Float(key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}

// Int returns a numeric tag truncated to int.
func (m Metadata) Int(key string) (int, bool) {
	v, ok := m[key].(float64)
	return int(v), ok
}

// String returns a text tag.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

// Tool wraps a Runner with the invocations this module needs.
type Tool struct {
	r Runner
}

// New returns a Tool using r.
func New(r Runner) *Tool {
	return &Tool{r: r}
}

// Metadata extracts all tags of path. -n keeps values numeric instead of
// exiftool's human readable rendition; -j requests JSON, which decodes as a
// one element array.
func (t *Tool) Metadata(ctx context.Context, path string) (Metadata, error) {
	out, err := t.r.Run(ctx, "-j", "-n", path)
	if err != nil {
		return nil, err
	}
	var items []Metadata
	if err := json.Unmarshal(out, &items); err != nil {
		return nil, fmt.Errorf("exiftool: decoding metadata for %s: %w", path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("exiftool: no metadata for %s", path)
	}
	return items[0], nil
}

// Binary extracts the raw bytes of a single binary tag, e.g.
// RawThermalImage.
func (t *Tool) Binary(ctx context.Context, path, tag string) ([]byte, error) {
	out, err := t.r.Run(ctx, "-b", "-"+tag, path)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("exiftool: %s has no %s tag", path, tag)
	}
	return out, nil
}

// CopyTags overwrites dst's metadata with all tags from src.
// -overwrite_original keeps exiftool from leaving a *_original sidecar
// behind.
func (t *Tool) CopyTags(ctx context.Context, src, dst string) error {
	_, err := t.r.Run(ctx, "-tagsfromfile", src, "-overwrite_original", dst)
	return err
}
