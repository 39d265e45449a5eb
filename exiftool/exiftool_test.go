// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package exiftool

import (
	"context"
	"errors"
	"testing"
)

// playback returns canned output per leading argument.
type playback struct {
	out  map[string][]byte
	err  error
	last []string
}

func (p *playback) Run(ctx context.Context, args ...string) ([]byte, error) {
	p.last = args
	if p.err != nil {
		return nil, p.err
	}
	return p.out[args[0]], nil
}

func TestMetadata(t *testing.T) {
	r := &playback{out: map[string][]byte{
		"-j": []byte(`[{"PlanckR1":14906.4,"RawThermalImageWidth":320,"RawThermalImageType":"TIFF"}]`),
	}}
	md, err := New(r).Metadata(context.Background(), "in.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := md.Float("PlanckR1"); !ok || v != 14906.4 {
		t.Fatal(v, ok)
	}
	if v, ok := md.Int("RawThermalImageWidth"); !ok || v != 320 {
		t.Fatal(v, ok)
	}
	if v, ok := md.String("RawThermalImageType"); !ok || v != "TIFF" {
		t.Fatal(v, ok)
	}
	if _, ok := md.Float("PlanckR2"); ok {
		t.Fatal("missing tag reported present")
	}
	if _, ok := md.Float("RawThermalImageType"); ok {
		t.Fatal("text tag reported numeric")
	}
	want := []string{"-j", "-n", "in.jpg"}
	for i, a := range want {
		if r.last[i] != a {
			t.Fatal(r.last)
		}
	}
}

func TestMetadataUnparseable(t *testing.T) {
	r := &playback{out: map[string][]byte{"-j": []byte("not json")}}
	if _, err := New(r).Metadata(context.Background(), "in.jpg"); err == nil {
		t.Fatal("expected decode failure")
	}
}

func TestMetadataEmpty(t *testing.T) {
	r := &playback{out: map[string][]byte{"-j": []byte("[]")}}
	if _, err := New(r).Metadata(context.Background(), "in.jpg"); err == nil {
		t.Fatal("expected failure on empty array")
	}
}

func TestMetadataToolFailure(t *testing.T) {
	fail := errors.New("exit status 1")
	r := &playback{err: fail}
	if _, err := New(r).Metadata(context.Background(), "in.jpg"); !errors.Is(err, fail) {
		t.Fatal(err)
	}
}

func TestBinary(t *testing.T) {
	r := &playback{out: map[string][]byte{"-b": {1, 2, 3}}}
	blob, err := New(r).Binary(context.Background(), "in.jpg", "RawThermalImage")
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != 3 || blob[0] != 1 {
		t.Fatal(blob)
	}
	want := []string{"-b", "-RawThermalImage", "in.jpg"}
	for i, a := range want {
		if r.last[i] != a {
			t.Fatal(r.last)
		}
	}
}

func TestBinaryMissingTag(t *testing.T) {
	r := &playback{out: map[string][]byte{}}
	if _, err := New(r).Binary(context.Background(), "in.jpg", "RawThermalImage"); err == nil {
		t.Fatal("expected failure on empty block")
	}
}

func TestCopyTags(t *testing.T) {
	r := &playback{out: map[string][]byte{}}
	if err := New(r).CopyTags(context.Background(), "in.jpg", "out.tiff"); err != nil {
		t.Fatal(err)
	}
	want := []string{"-tagsfromfile", "in.jpg", "-overwrite_original", "out.tiff"}
	for i, a := range want {
		if r.last[i] != a {
			t.Fatal(r.last)
		}
	}
}
