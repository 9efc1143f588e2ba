package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var embedded embed.FS

// Static is the browser client (index.html, script.js, style.css) rooted at static/
var Static fs.FS

func init() {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	Static = sub
}

// Index returns the client's entry page
func Index() ([]byte, error) {
	return fs.ReadFile(Static, "index.html")
}
