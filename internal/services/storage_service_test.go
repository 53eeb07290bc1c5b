package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// makeFileHeader builds a real multipart.FileHeader the way gin would hand
// it to the service, with an explicit part Content-Type
func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, fh, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("failed to parse form file: %v", err)
	}
	return fh
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", dir, err)
	}
	return n
}

func TestSaveUpload_AcceptsValidImage(t *testing.T) {
	cfg := testConfig(t)
	svc := NewStorageService(cfg)

	fh := makeFileHeader(t, "photo.PNG", "image/png", []byte("png bytes"))
	stored, err := svc.SaveUpload(fh, ClassImage)
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}

	if stored.OriginalName != "photo.PNG" {
		t.Fatalf("unexpected original name: %s", stored.OriginalName)
	}
	if !strings.HasPrefix(stored.PublicPath, "/upload/") {
		t.Fatalf("unexpected public path: %s", stored.PublicPath)
	}
	if !strings.HasSuffix(stored.Path, ".png") {
		t.Fatalf("stored name should keep the lowercased extension: %s", stored.Path)
	}
	name := filepath.Base(stored.Path)
	if name == "photo.png" || len(name) != 36+len(".png") {
		t.Fatalf("stored name should be a uuid, got %s", name)
	}

	data, err := os.ReadFile(stored.Path)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(data) != "png bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveUpload_RejectsMismatchedExtAndMime(t *testing.T) {
	cfg := testConfig(t)
	svc := NewStorageService(cfg)

	cases := []struct {
		name        string
		filename    string
		contentType string
		class       FileClass
	}{
		{"image ext with video mime", "photo.png", "video/mp4", ClassImage},
		{"bad ext with image mime", "photo.gif", "image/png", ClassImage},
		{"executable disguised", "run.exe", "image/jpeg", ClassImage},
		{"video ext with image mime", "clip.mp4", "image/jpeg", ClassVideo},
		{"bad video ext", "clip.avi", "video/mp4", ClassVideo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fh := makeFileHeader(t, tc.filename, tc.contentType, []byte("data"))
			if _, err := svc.SaveUpload(fh, tc.class); err == nil {
				t.Fatalf("upload should be rejected")
			}
		})
	}

	if n := countFiles(t, cfg.UploadDir); n != 0 {
		t.Fatalf("rejected uploads must not persist anything, found %d files", n)
	}
}

func TestSaveUpload_RejectsOversize(t *testing.T) {
	cfg := testConfig(t)
	cfg.UploadMaxImageSize = 16
	svc := NewStorageService(cfg)

	fh := makeFileHeader(t, "photo.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 17))
	if _, err := svc.SaveUpload(fh, ClassImage); err == nil {
		t.Fatalf("oversize upload should be rejected")
	}
	if n := countFiles(t, cfg.UploadDir); n != 0 {
		t.Fatalf("rejected upload must not persist anything, found %d files", n)
	}
}

func TestSaveUpload_AcceptsVideoUnderCeiling(t *testing.T) {
	cfg := testConfig(t)
	svc := NewStorageService(cfg)

	fh := makeFileHeader(t, "clip.webm", "video/webm", []byte("webm bytes"))
	stored, err := svc.SaveUpload(fh, ClassVideo)
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if !strings.HasSuffix(stored.Path, ".webm") {
		t.Fatalf("unexpected stored path: %s", stored.Path)
	}
	if _, err := os.Stat(stored.Path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestNewStorageService_CreatesDirectories(t *testing.T) {
	cfg := testConfig(t)
	sub := filepath.Join(cfg.UploadDir, "nested", "uploads")
	cfg.UploadDir = sub

	NewStorageService(cfg)

	info, err := os.Stat(filepath.Join(sub, "thumbnails"))
	if err != nil || !info.IsDir() {
		t.Fatalf("thumbnails directory not created: %v", err)
	}
}
