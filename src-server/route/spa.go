package route

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"moncal/src-server/utils"
)

// SPA serves the bundled web client, falling back to index.html for client
// side routes. Nothing is mounted when no client directory is configured.
func SPA(muxer *http.ServeMux, as *utils.AppState) {
	dir := as.Config.GetStaticWebClientDir()
	if dir == "" {
		return
	}
	root := os.DirFS(dir)
	files := http.FS(root)

	// read once, every fallback gets its own reader over the same bytes
	index, err := fs.ReadFile(root, "index.html")
	if err != nil {
		slog.Error("can't read index.html", "dir", dir, "error", err)
		return
	}
	indexModTime := time.Now()
	if stat, err := fs.Stat(root, "index.html"); err == nil {
		indexModTime = stat.ModTime()
	}
	serveIndex := func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "index.html", indexModTime, bytes.NewReader(index))
	}

	muxer.HandleFunc("GET /{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := filepath.Clean(r.PathValue("filepath"))
		switch filepath {
		case ".":
			filepath = "index.html"
		case "404":
			filepath = "404.html"
		}

		file, err := files.Open(filepath)
		if err != nil {
			serveIndex(w, r)
			return
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil || stat.IsDir() {
			serveIndex(w, r)
			return
		}

		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
	})
}
