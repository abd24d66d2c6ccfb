package server

import (
	"io/fs"
	"testing"

	"github.com/dukerupert/famdesk/web"
)

func staticFS(t *testing.T) fs.FS {
	t.Helper()
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		t.Fatalf("sub static: %v", err)
	}
	return static
}
