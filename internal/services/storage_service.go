package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/config"
)

// FileClass selects the allow-list and size ceiling for an upload
type FileClass string

const (
	ClassImage FileClass = "image"
	ClassVideo FileClass = "video"
)

// PublicUploadPrefix is the URL prefix under which uploads are served
const PublicUploadPrefix = "/upload"

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	imageMimeTypes  = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true, "image/webp": true}
	videoExtensions = map[string]bool{".mp4": true, ".webm": true}
	videoMimeTypes  = map[string]bool{"video/mp4": true, "video/webm": true}
)

// StoredFile describes a persisted upload
type StoredFile struct {
	Path         string // absolute path on disk
	PublicPath   string // server-relative URL, e.g. /upload/<name>.jpg
	OriginalName string
}

// StorageService persists uploads under a flat local directory with
// randomly generated names
type StorageService struct {
	cfg *config.Config
}

func NewStorageService(cfg *config.Config) *StorageService {
	// ensure upload and thumbnails directories exist
	_ = os.MkdirAll(filepath.Join(cfg.UploadDir, "thumbnails"), 0o755)
	return &StorageService{cfg: cfg}
}

// SaveUpload validates one multipart file against the class allow-list and
// size ceiling, then writes it to the upload directory under a UUID name
// keeping only the original extension. Nothing is written for a rejected file.
func (s *StorageService) SaveUpload(fileHeader *multipart.FileHeader, class FileClass) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	mimeType := fileHeader.Header.Get("Content-Type")

	// Extension and declared MIME must both be on the allow-list; a mismatch
	// is rejected, never coerced.
	switch class {
	case ClassImage:
		if !imageExtensions[ext] || !imageMimeTypes[mimeType] {
			return nil, fmt.Errorf("only image files (JPEG, PNG, WebP) are allowed")
		}
		if fileHeader.Size > s.cfg.UploadMaxImageSize {
			return nil, fmt.Errorf("image too large: %d bytes (max: %d)", fileHeader.Size, s.cfg.UploadMaxImageSize)
		}
	case ClassVideo:
		if !videoExtensions[ext] || !videoMimeTypes[mimeType] {
			return nil, fmt.Errorf("only video files (MP4, WebM) are allowed")
		}
		if fileHeader.Size > s.cfg.UploadMaxVideoSize {
			return nil, fmt.Errorf("video too large: %d bytes (max: %d)", fileHeader.Size, s.cfg.UploadMaxVideoSize)
		}
	default:
		return nil, fmt.Errorf("unknown file class: %s", class)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	absPath := filepath.Join(s.cfg.UploadDir, name)
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := writeAtomic(absPath, src); err != nil {
		return nil, err
	}

	return &StoredFile{
		Path:         absPath,
		PublicPath:   PublicUploadPrefix + "/" + name,
		OriginalName: fileHeader.Filename,
	}, nil
}

// writeAtomic streams r to a .part file and renames it into place so a
// failed write never leaves a partial file at the final path
func writeAtomic(absPath string, r io.Reader) error {
	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
