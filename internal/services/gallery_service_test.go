package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rocaconstrucciones/backend/internal/models"
)

func newGalleryService(t *testing.T) (*GalleryService, string) {
	t.Helper()
	cfg := testConfig(t)
	return NewGalleryService(openTestDB(t), NewMediaService(cfg)), cfg.UploadDir
}

func seedGalleryImage(t *testing.T, svc *GalleryService, order int, active bool) *models.GalleryImage {
	t.Helper()
	img := &models.GalleryImage{
		ImageURL:     fmt.Sprintf("/upload/img-%d.jpg", order),
		ThumbnailURL: fmt.Sprintf("/upload/thumbnails/img-%d.jpg", order),
		Title:        fmt.Sprintf("Image %d", order),
		DisplayOrder: order,
		IsActive:     active,
	}
	if err := svc.Create(img); err != nil {
		t.Fatalf("failed to seed gallery image: %v", err)
	}
	return img
}

func TestGalleryCreate_EnforcesCap(t *testing.T) {
	svc, _ := newGalleryService(t)

	for i := 0; i < models.MaxGalleryImages; i++ {
		seedGalleryImage(t, svc, i, true)
	}

	extra := &models.GalleryImage{ImageURL: "/upload/extra.jpg", ThumbnailURL: "/upload/thumbnails/extra.jpg"}
	if err := svc.Create(extra); err != ErrGalleryFull {
		t.Fatalf("want ErrGalleryFull, got %v", err)
	}

	all, err := svc.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != models.MaxGalleryImages {
		t.Fatalf("gallery holds %d images, want %d", len(all), models.MaxGalleryImages)
	}
}

func TestGalleryGetActive_FiltersAndOrders(t *testing.T) {
	svc, _ := newGalleryService(t)

	seedGalleryImage(t, svc, 3, true)
	seedGalleryImage(t, svc, 1, true)
	seedGalleryImage(t, svc, 2, false)
	seedGalleryImage(t, svc, 0, true)

	active, err := svc.GetActive()
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("got %d active images, want 3", len(active))
	}
	for i, img := range active {
		if !img.IsActive {
			t.Fatalf("inactive image leaked into active list")
		}
		if i > 0 && active[i-1].DisplayOrder > img.DisplayOrder {
			t.Fatalf("active list not ordered by display_order")
		}
	}
}

func TestGalleryUpdate_TouchesOnlySuppliedFields(t *testing.T) {
	svc, _ := newGalleryService(t)
	img := seedGalleryImage(t, svc, 0, false)

	title := "New title"
	active := true
	updated, err := svc.Update(img.ID, GalleryUpdate{Title: &title, IsActive: &active})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "New title" || !updated.IsActive {
		t.Fatalf("updated fields not applied: %+v", updated)
	}

	got, err := svc.GetByID(img.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "New title" || !got.IsActive {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.ImageURL != img.ImageURL || got.DisplayOrder != img.DisplayOrder {
		t.Fatalf("unsupplied fields changed: %+v", got)
	}
}

func TestGalleryUpdate_ReplacingImageDeletesOldFiles(t *testing.T) {
	svc, uploadDir := newGalleryService(t)
	img := seedGalleryImage(t, svc, 0, true)

	oldFull := filepath.Join(uploadDir, "img-0.jpg")
	oldThumb := filepath.Join(uploadDir, "thumbnails", "img-0.jpg")
	for _, p := range []string{oldFull, oldThumb} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte("jpeg"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	newURL := "/upload/replacement.jpg"
	newThumb := "/upload/thumbnails/replacement.jpg"
	if _, err := svc.Update(img.ID, GalleryUpdate{ImageURL: &newURL, ThumbnailURL: &newThumb}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	for _, p := range []string{oldFull, oldThumb} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("old file %s should be deleted", p)
		}
	}
}

func TestGalleryReorder_Persists(t *testing.T) {
	svc, _ := newGalleryService(t)
	a := seedGalleryImage(t, svc, 0, true)
	b := seedGalleryImage(t, svc, 1, true)
	c := seedGalleryImage(t, svc, 2, true)

	result, err := svc.Reorder([]ReorderItem{
		{ID: a.ID, DisplayOrder: 2},
		{ID: b.ID, DisplayOrder: 0},
		{ID: c.ID, DisplayOrder: 1},
	})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	want := []uuid.UUID{b.ID, c.ID, a.ID}
	if len(result) != len(want) {
		t.Fatalf("got %d images, want %d", len(result), len(want))
	}
	for i, id := range want {
		if result[i].ID != id {
			t.Fatalf("position %d holds %s, want %s", i, result[i].ID, id)
		}
	}
}

func TestGalleryDelete_RemovesRowAndFiles(t *testing.T) {
	svc, uploadDir := newGalleryService(t)
	img := seedGalleryImage(t, svc, 0, true)

	full := filepath.Join(uploadDir, "img-0.jpg")
	thumb := filepath.Join(uploadDir, "thumbnails", "img-0.jpg")
	for _, p := range []string{full, thumb} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte("jpeg"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	if err := svc.Delete(img.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := svc.GetByID(img.ID); err != ErrNotFound {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	for _, p := range []string{full, thumb} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("file %s should be deleted", p)
		}
	}
}

func TestGalleryDelete_UnknownID(t *testing.T) {
	svc, _ := newGalleryService(t)
	if err := svc.Delete(uuid.New()); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
