package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUploadWritesFileAndBuildsURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStore(dir, "http://127.0.0.1:8080/")
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Upload("photo.png", strings.NewReader("data"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "http://127.0.0.1:8080/uploads/") {
		t.Errorf("url = %q", url)
	}
	if !strings.HasSuffix(url, "-photo.png") {
		t.Errorf("url = %q, want original name preserved after the uuid prefix", url)
	}

	stored := strings.TrimPrefix(url, "http://127.0.0.1:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, stored))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data" {
		t.Errorf("content = %q", data)
	}
}

func TestUploadNamesNeverCollide(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://x")
	if err != nil {
		t.Fatal(err)
	}

	u1, err := s.Upload("a.txt", strings.NewReader("1"))
	if err != nil {
		t.Fatal(err)
	}
	u2, err := s.Upload("a.txt", strings.NewReader("2"))
	if err != nil {
		t.Fatal(err)
	}
	if u1 == u2 {
		t.Error("same source name must yield distinct stored names")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"my file (1).pdf", "my_file__1_.pdf"},
		{"", "file"},
		{"///", "file"},
	}
	for _, c := range cases {
		if got := sanitizeName(c.in); got != c.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
