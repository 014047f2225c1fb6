package handlers

import (
	"fmt"
	"net/http"
	"strconv"
)

// Broadcaster pushes live updates to connected dashboards
type Broadcaster interface {
	Broadcast(message interface{})
}

// trashcanParam reads ?trashcan=, falling back to def when absent
func trashcanParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("trashcan")
	if raw == "" {
		return def, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trashcan %q", raw)
	}
	return id, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, raw)
	}
	return b, nil
}
