package handlers

import (
	"fmt"
	"html"
	"net/http"
	"path/filepath"
)

// Page serves <frontendDir>/<name>.html, or a placeholder when no frontend is deployed
func Page(frontendDir, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if frontendDir != "" {
			http.ServeFile(w, r, filepath.Join(frontendDir, name+".html"))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>Waste Wizard - %[1]s</title></head><body><h1>%[1]s</h1></body></html>\n",
			html.EscapeString(name))
	}
}
