package http

import (
	"bytes"
	stdhttp "net/http"
	"time"

	_ "embed"
)

//go:embed static/slidecast.css
var stylesheet []byte

func stylesheetHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if len(stylesheet) == 0 {
		w.WriteHeader(stdhttp.StatusNotFound)
		return
	}

	reader := bytes.NewReader(stylesheet)
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	stdhttp.ServeContent(w, r, "slidecast.css", time.Time{}, reader)
}
