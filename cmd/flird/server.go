// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"log"
	"net/http"
	"sync"

	"github.com/maruel/serve-dir/loghttp"
	"golang.org/x/net/websocket"

	"github.com/go-thermal/flir/thermogram"
)

// WebServer publishes the most recent conversion.
type WebServer struct {
	cond   sync.Cond
	latest *thermogram.Grid
	name   string
	count  int
}

// AddGrid publishes a freshly converted grid and wakes up the stream
// clients.
func (s *WebServer) AddGrid(name string, g *thermogram.Grid) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.latest = g
	s.name = name
	s.count++
	s.cond.Broadcast()
}

// StartWebServer starts serving on port, exposing the files in outDir
// under /files/.
func StartWebServer(port int, outDir string) *WebServer {
	s := &WebServer{cond: *sync.NewCond(&sync.Mutex{})}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.HandleFunc("/grid.png", s.grid8)
	mux.HandleFunc("/grid16.png", s.grid16)
	mux.Handle("/stream", websocket.Handler(s.stream))
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(outDir))))
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), &loghttp.Handler{Handler: mux})
		log.Fatalf("http: %s", err)
	}()
	return s
}

var rootTmpl = template.Must(template.New("root").Parse(`
	<html>
	<head>
		<title>flird</title>
		<style>
			img.large {
				width: 640;
				height: auto;
				image-rendering: pixelated;
			}
		</style>
		<script>
		var ws = new WebSocket("ws://" + location.host + "/stream");
		ws.onmessage = function(e) {
			var msg = JSON.parse(e.data);
			document.getElementById("grid").src = "data:image/png;base64," + msg.PNG;
			document.getElementById("name").textContent = msg.Name;
		};
		</script>
	</head>
	<body>
	Last conversion: <span id="name">{{.Name}}</span><br>
	<a href="/grid16.png"><img class="large" id="grid" src="/grid.png"></img></a>
	<br>
	{{if .Grid}}{{printf "%.2f" .Grid.Min}}°K - {{printf "%.2f" .Grid.Max}}°K{{end}}
	<br>
	<a href="/files/">converted files</a>
	</body>
	</html>`))

func (s *WebServer) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	s.cond.L.Lock()
	data := struct {
		Name string
		Grid *thermogram.Grid
	}{s.name, s.latest}
	s.cond.L.Unlock()
	if err := rootTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *WebServer) grid8(w http.ResponseWriter, r *http.Request) {
	s.cond.L.Lock()
	g := s.latest
	s.cond.L.Unlock()
	if g == nil {
		http.Error(w, "no conversion yet", http.StatusNotFound)
		return
	}
	dst := image.NewGray(g.Bounds())
	g.Render(dst)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := png.Encode(w, dst); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *WebServer) grid16(w http.ResponseWriter, r *http.Request) {
	s.cond.L.Lock()
	g := s.latest
	s.cond.L.Unlock()
	if g == nil {
		http.Error(w, "no conversion yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := png.Encode(w, g); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type streamMsg struct {
	Name string
	PNG  string
}

// stream pushes a base64 PNG rendering to the client after every
// conversion.
func (s *WebServer) stream(ws *websocket.Conn) {
	seen := 0
	for {
		s.cond.L.Lock()
		for s.count == seen {
			s.cond.Wait()
		}
		seen = s.count
		name := s.name
		g := s.latest
		s.cond.L.Unlock()
		buf := bytes.Buffer{}
		if err := png.Encode(&buf, g); err != nil {
			return
		}
		msg := streamMsg{Name: name, PNG: base64.StdEncoding.EncodeToString(buf.Bytes())}
		if err := websocket.JSON.Send(ws, &msg); err != nil {
			return
		}
	}
}
