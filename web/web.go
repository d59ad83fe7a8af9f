// Package web holds the embedded single-page UI served by cmd/server.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html
var content embed.FS

// Static returns the embedded UI files
func Static() fs.FS {
	return content
}
