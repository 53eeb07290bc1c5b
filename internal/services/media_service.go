package services

import (
	"errors"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rocaconstrucciones/backend/internal/config"
	"golang.org/x/image/draw"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	maxFullWidth  = 1920
	maxFullHeight = 1080
	fullQuality   = 85

	thumbWidth   = 400
	thumbHeight  = 300
	thumbQuality = 80
)

// ErrProcessingFailed is the only processing error callers ever see;
// the underlying codec detail is logged server-side
var ErrProcessingFailed = errors.New("failed to process image")

// ProcessedImage holds the public URLs of the two derived JPEG artifacts
type ProcessedImage struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail"`
}

// MediaService derives normalized JPEG artifacts from ingested images and
// removes them when their owning record goes away
type MediaService struct {
	cfg *config.Config
}

func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// ProcessImage turns an ingested image into a bounded full-size JPEG and a
// fixed-size thumbnail JPEG sharing the same filename stem. The original is
// deleted once both artifacts are written, except when it already is the
// destination .jpg, in which case it is replaced via a temp-file swap.
func (s *MediaService) ProcessImage(inputPath string) (*ProcessedImage, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		log.Printf("Image processing error: open %s: %v", inputPath, err)
		return nil, ErrProcessingFailed
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		log.Printf("Image processing error: decode %s: %v", inputPath, err)
		return nil, ErrProcessingFailed
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	fullPath := filepath.Join(s.cfg.UploadDir, stem+".jpg")
	thumbPath := filepath.Join(s.cfg.UploadDir, "thumbnails", stem+".jpg")

	full := resizeInside(src, maxFullWidth, maxFullHeight)
	thumb := resizeCover(src, thumbWidth, thumbHeight)

	// Thumbnail first so the temp-file swap below never races the source.
	if err := writeJPEG(thumbPath, thumb, thumbQuality); err != nil {
		log.Printf("Image processing error: thumbnail %s: %v", thumbPath, err)
		return nil, ErrProcessingFailed
	}

	if ext == ".jpg" {
		// Destination collides with the source: stage to a temp path, drop
		// the source, then move the new artifact into place.
		tmp := fullPath + ".tmp"
		if err := writeJPEG(tmp, full, fullQuality); err != nil {
			log.Printf("Image processing error: full %s: %v", fullPath, err)
			return nil, ErrProcessingFailed
		}
		if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Image processing error: replace %s: %v", inputPath, err)
			_ = os.Remove(tmp)
			return nil, ErrProcessingFailed
		}
		if err := os.Rename(tmp, fullPath); err != nil {
			log.Printf("Image processing error: rename %s: %v", fullPath, err)
			return nil, ErrProcessingFailed
		}
	} else {
		if err := writeJPEG(fullPath, full, fullQuality); err != nil {
			log.Printf("Image processing error: full %s: %v", fullPath, err)
			return nil, ErrProcessingFailed
		}
		// No orphan originals: cleanup is best-effort
		if err := os.Remove(inputPath); err != nil {
			log.Printf("WARN: failed to delete original %s: %v", inputPath, err)
		}
	}

	return &ProcessedImage{
		URL:          PublicUploadPrefix + "/" + stem + ".jpg",
		ThumbnailURL: PublicUploadPrefix + "/thumbnails/" + stem + ".jpg",
	}, nil
}

// DeleteImage removes a processed image and its thumbnail by public URL.
// URLs outside the upload prefix are ignored; errors are logged, not raised.
func (s *MediaService) DeleteImage(imageURL string) {
	if !strings.HasPrefix(imageURL, PublicUploadPrefix+"/") {
		return
	}
	name := filepath.Base(imageURL)
	for _, p := range []string{
		filepath.Join(s.cfg.UploadDir, name),
		filepath.Join(s.cfg.UploadDir, "thumbnails", name),
	} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("WARN: failed to delete %s: %v", p, err)
		}
	}
}

// DeleteVideo removes an uploaded video by public URL, same guard as DeleteImage
func (s *MediaService) DeleteVideo(videoURL string) {
	if !strings.HasPrefix(videoURL, PublicUploadPrefix+"/") {
		return
	}
	p := filepath.Join(s.cfg.UploadDir, filepath.Base(videoURL))
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: failed to delete %s: %v", p, err)
	}
}

// resizeInside bounds src within maxW x maxH preserving aspect ratio,
// never upscaling
func resizeInside(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if sw := float64(maxW) / float64(w); sw < scale {
		scale = sw
	}
	if sh := float64(maxH) / float64(h); sh < scale {
		scale = sh
	}
	if scale >= 1.0 {
		return src
	}

	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// resizeCover fills exactly w x h by center-cropping src to the target
// aspect ratio and scaling, no letterboxing
func resizeCover(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	// Largest centered region with the target aspect ratio
	cw, ch := sw, sh
	if sw*h > sh*w {
		cw = sh * w / h
	} else {
		ch = sw * h / w
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2

	cropRect := image.Rect(0, 0, cw, ch)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, src, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Src, nil)
	return dst
}

// writeJPEG encodes img to path at the given quality via a .part temp file
func writeJPEG(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
