// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// flird watches a directory for incoming radiometric JPEGs, converts each
// one to a temperature image and serves the results over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/interrupt"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/flirjpeg"
	"github.com/go-thermal/flir/flirtest"
)

func mainImpl() error {
	in := flag.String("in", ".", "directory to watch for radiometric JPEGs")
	out := flag.String("out", "", "directory receiving converted images; defaults to the watched one")
	port := flag.Int("port", 8010, "http port to listen on")
	fake := flag.Bool("fake", false, "use synthetic thermal data instead of exiftool")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}
	if *out == "" {
		*out = *in
	}

	var runner exiftool.Runner
	if *fake {
		runner = flirtest.New(320, 240)
	} else {
		r, err := exiftool.NewExecRunner()
		if err != nil {
			return fmt.Errorf("%s\nIf testing without exiftool, use -fake to simulate it", err)
		}
		runner = r
	}
	tool := exiftool.New(runner)

	interrupt.HandleCtrlC()

	s := StartWebServer(*port, *out)
	fmt.Printf("Watching %s, serving on :%d\n", *in, *port)

	// Convert whatever is already sitting in the directory, then watch.
	entries, err := ioutil.ReadDir(*in)
	if err != nil {
		return err
	}
	for _, fi := range entries {
		if fi.IsDir() || !isJPEG(fi.Name()) {
			continue
		}
		if err := convertFile(tool, s, filepath.Join(*in, fi.Name()), *out); err != nil {
			log.Printf("%s: %s", fi.Name(), err)
		}
	}
	return watchLoop(tool, s, *in, *out)
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

// convertFile converts one radiometric JPEG and publishes the resulting
// grid to the web server.
func convertFile(tool *exiftool.Tool, s *WebServer, path, out string) error {
	img, err := flirjpeg.Load(context.Background(), tool, path, flirjpeg.DefaultOptions())
	if err != nil {
		return err
	}
	g, err := img.Temps()
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst := filepath.Join(out, base+"_T.tiff")
	if err := img.Save(dst, flirjpeg.FormatTIFF, flirjpeg.ContentsTemp); err != nil {
		return err
	}
	log.Printf("converted %s -> %s", path, dst)
	s.AddGrid(filepath.Base(path), g)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nflird: %s.\n", err)
		os.Exit(1)
	}
}
