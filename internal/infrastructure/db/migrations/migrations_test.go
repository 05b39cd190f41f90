package migrations

import (
	"context"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestFS_ContainsBothDialects(t *testing.T) {
	for _, dir := range []string{"postgres", "sqlite"} {
		entries, err := fs.ReadDir(FS, dir)
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		if len(entries) == 0 {
			t.Fatalf("no migrations for %s", dir)
		}
	}
}

func TestUp_UnsupportedDialect(t *testing.T) {
	if err := Up(context.Background(), nil, goose.DialectMySQL); err == nil {
		t.Fatalf("expected error for mysql dialect")
	}
}
