// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"log"
	"path/filepath"

	"github.com/maruel/interrupt"
	fsnotify "gopkg.in/fsnotify.v1"

	"github.com/go-thermal/flir/exiftool"
)

// watchLoop converts radiometric JPEGs as they land in dir, until ctrl-C.
// A conversion failure is logged and the loop keeps going; cameras and
// sync tools drop partially written files that become readable later.
func watchLoop(tool *exiftool.Tool, s *WebServer, dir, out string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err = watcher.Add(dir); err != nil {
		return err
	}
	for {
		select {
		case <-interrupt.Channel:
			return nil
		case err := <-watcher.Errors:
			return err
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isJPEG(ev.Name) {
				continue
			}
			if err := convertFile(tool, s, ev.Name, out); err != nil {
				log.Printf("%s: %s", filepath.Base(ev.Name), err)
			}
		}
	}
}
