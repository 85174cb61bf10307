package handlers

import (
	"context"
	"net/http"
)

// runSync triggers a full pull+push cycle in the background.
func (r *Router) runSync(w http.ResponseWriter, req *http.Request) {
	if started := r.svc.RunOnce(req.Context()); !started {
		respondError(w, http.StatusConflict, "A sync run is already in flight")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// runPull triggers the remote-to-local direction only.
func (r *Router) runPull(w http.ResponseWriter, req *http.Request) {
	r.svc.Pull(req.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// runPush triggers the local-to-remote direction only.
func (r *Router) runPush(w http.ResponseWriter, req *http.Request) {
	r.svc.Push(req.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// runImport triggers the one-shot initial load. It can take a while
// on a populated remote, so it runs detached.
func (r *Router) runImport(w http.ResponseWriter, req *http.Request) {
	go r.svc.Import(context.Background())
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// runBootstrap aligns countries and categories with the remote.
func (r *Router) runBootstrap(w http.ResponseWriter, req *http.Request) {
	r.svc.Bootstrap(req.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
