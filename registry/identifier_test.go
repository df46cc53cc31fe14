package registry

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextgis-borsch/lib-gdal/errors"
)

func TestParseAccess(t *testing.T) {
	tests := []struct {
		in      string
		want    Access
		wantErr bool
	}{
		{"", ReadOnly, false},
		{"r", ReadOnly, false},
		{"RO", ReadOnly, false},
		{"readonly", ReadOnly, false},
		{"read-only", ReadOnly, false},
		{"u", Update, false},
		{"rw", Update, false},
		{" Update ", Update, false},
		{"append", ReadOnly, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccess(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccess(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseAccess(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAccess_String(t *testing.T) {
	if ReadOnly.String() != "readonly" || ReadOnly.Short() != "R" {
		t.Errorf("ReadOnly = %s/%s", ReadOnly, ReadOnly.Short())
	}
	if Update.String() != "update" || Update.Short() != "U" {
		t.Errorf("Update = %s/%s", Update, Update.Short())
	}
}

func TestNewIdentifier_Normalizes(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	a, err := NewIdentifier("data/../data/poly.shp", ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewIdentifier(filepath.Join(wd, "data", "poly.shp"), ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("Expected equal identifiers, got %v and %v", a, b)
	}
	if !filepath.IsAbs(a.Path) {
		t.Fatalf("Expected absolute path, got %q", a.Path)
	}

	c, _ := NewIdentifier("data/poly.shp", Update)
	if a == c {
		t.Fatal("Access mode must be part of the identifier")
	}
}

func TestNewIdentifier_ResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "poly.shp")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.shp")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	a, err := NewIdentifier(target, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewIdentifier(link, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("Expected symlink to resolve to target: %v vs %v", a, b)
	}
}

func TestNewIdentifier_Empty(t *testing.T) {
	_, err := NewIdentifier("", ReadOnly)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidInput {
		t.Fatalf("Expected invalid input, got %v", err)
	}
}
