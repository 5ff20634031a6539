// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the result archive server. Combine an App
// with a database to get an HTTP server.
package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wfbench/streamperf/storage/db"
)

// App manages the archive server logic. Construct an App instance
// using a literal with a DB and call RegisterOnMux to connect it with
// an HTTP server.
type App struct {
	DB *db.DB

	// ReadOnly disables session deletion.
	ReadOnly bool
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/sessions", a.sessions)
	mux.HandleFunc("/points", a.points)
}

type sessionJSON struct {
	ID      string `json:"id"`
	Created string `json:"created"`
	Source  string `json:"source"`
	Results int    `json:"results"`
}

// sessions lists the archived sessions as JSON on GET, and deletes
// the session named by the "session" parameter on DELETE.
func (a *App) sessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		list, err := a.DB.Sessions(ctx)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out := make([]sessionJSON, 0, len(list))
		for _, s := range list {
			out = append(out, sessionJSON{s.ID, s.Created.Format(time.RFC3339), s.Source, s.Results})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), 500)
		}
	case http.MethodDelete:
		if a.ReadOnly {
			http.Error(w, "archive is read-only", http.StatusForbidden)
			return
		}
		id := r.FormValue("session")
		if id == "" {
			http.Error(w, "missing session parameter", 400)
			return
		}
		if err := a.DB.DeleteSession(ctx, id); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
