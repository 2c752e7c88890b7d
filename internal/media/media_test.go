package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"image-cropper/internal/database"
	"image-cropper/internal/models"
	"image-cropper/internal/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

const pixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="

type recordedEvent struct {
	Type string
	Data *models.Media
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *fakeNotifier) record(eventType string, m *models.Media) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Data: m})
}

func (n *fakeNotifier) NotifyMediaStored(m *models.Media)  { n.record("stored", m) }
func (n *fakeNotifier) NotifyMediaDeleted(m *models.Media) { n.record("deleted", m) }

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

// failingCatalogue rejects every write.
type failingCatalogue struct {
	Catalogue
}

func (failingCatalogue) Save(context.Context, *models.Media) error {
	return errors.New("catalogue offline")
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "media.db")), logger.Silent)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	return NewRepository(db)
}

func newTestService(t *testing.T, policy storage.ConflictPolicy) (*Service, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	disk := storage.NewDisk(t.TempDir(), storage.WithPresets(storage.DefaultPresets("uploads")))
	return NewService(disk, newTestRepository(t), notifier, policy), notifier
}

func TestRepository_SaveGetDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	m := &models.Media{Path: "uploads/a.png", Kind: "image", Folder: "uploads", Filename: "a.png", Size: 10}
	if err := repo.Save(ctx, m); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Path != "uploads/a.png" || got.Size != 10 {
		t.Errorf("got %+v", got)
	}

	byPath, err := repo.GetByPath(ctx, "uploads/a.png")
	if err != nil || byPath.ID != m.ID {
		t.Errorf("GetByPath = %+v, %v", byPath, err)
	}

	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := repo.Get(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestRepository_SaveSamePathUpdates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := &models.Media{Path: "uploads/logo.png", Kind: "image", Size: 1}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := &models.Media{Path: "uploads/logo.png", Kind: "image", Size: 2}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same record, got ids %d and %d", first.ID, second.ID)
	}
	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Size != 2 {
		t.Errorf("records = %+v", all)
	}
}

func TestRepository_ListFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.Media{
		{Path: "uploads/1.png", Kind: "image", Folder: "uploads", CreatedAt: base},
		{Path: "uploads/videos/2.mp4", Kind: "video", Folder: "uploads/videos", CreatedAt: base.Add(time.Hour)},
		{Path: "uploads/3.png", Kind: "image", Folder: "uploads", CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		if err := repo.Save(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	images, err := repo.List(ctx, Filter{Kind: "image"})
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 || images[0].Path != "uploads/3.png" {
		t.Errorf("images newest first = %+v", images)
	}

	videos, _ := repo.List(ctx, Filter{Folder: "uploads/videos"})
	if len(videos) != 1 || videos[0].Kind != "video" {
		t.Errorf("videos = %+v", videos)
	}

	page, _ := repo.List(ctx, Filter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Path != "uploads/videos/2.mp4" {
		t.Errorf("page = %+v", page)
	}

	none, err := repo.List(ctx, Filter{Folder: "missing"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("empty list = %#v, %v", none, err)
	}
}

func TestService_UploadRecordsAndNotifies(t *testing.T) {
	svc, notifier := newTestService(t, storage.Overwrite)
	ctx := context.Background()

	rec, err := svc.Upload(ctx, storage.KindImage, pixelPNG, "", "avatar")
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if rec.Path != "uploads/avatar.png" || rec.Kind != "image" || rec.Extension != "png" {
		t.Errorf("record = %+v", rec)
	}
	if rec.DeclaredMime != "image/png" || rec.DetectedMime != "image/png" {
		t.Errorf("mime declared/detected = %q/%q", rec.DeclaredMime, rec.DetectedMime)
	}
	if rec.Size != 68 {
		t.Errorf("size = %d", rec.Size)
	}
	if !svc.Exists(rec.Path) {
		t.Error("expected stored file to exist")
	}
	if got := notifier.types(); len(got) != 1 || got[0] != "stored" {
		t.Errorf("events = %v", got)
	}

	stored, err := svc.Get(ctx, rec.ID)
	if err != nil || stored.Path != rec.Path {
		t.Errorf("Get = %+v, %v", stored, err)
	}
}

func TestService_UploadRejectsWrongKind(t *testing.T) {
	svc, notifier := newTestService(t, storage.Overwrite)

	_, err := svc.Upload(context.Background(), storage.KindVideo, pixelPNG, "", "")
	if !errors.Is(err, storage.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
	records, _ := svc.List(context.Background(), Filter{})
	if len(records) != 0 {
		t.Errorf("records = %+v", records)
	}
	if len(notifier.types()) != 0 {
		t.Errorf("unexpected events %v", notifier.types())
	}
}

func TestService_UploadRemovesFileWhenCatalogueFails(t *testing.T) {
	disk := storage.NewDisk(t.TempDir())
	svc := NewService(disk, failingCatalogue{}, nil, storage.Overwrite)

	_, err := svc.Upload(context.Background(), storage.KindImage, pixelPNG, "uploads", "orphan")
	if err == nil {
		t.Fatal("expected catalogue error")
	}
	if disk.Exists("uploads/orphan.png") {
		t.Error("file should be removed after catalogue failure")
	}
}

func TestService_FailedReuploadKeepsPreviousFile(t *testing.T) {
	svc, _ := newTestService(t, storage.Overwrite)
	ctx := context.Background()

	first, err := svc.Upload(ctx, storage.KindFile, "data:text/plain;base64,djE=", "docs", "note")
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if first.Path != "docs/note.txt" {
		t.Fatalf("path = %q", first.Path)
	}

	repo := svc.Catalogue
	svc.Catalogue = failingCatalogue{Catalogue: repo}
	if _, err := svc.Upload(ctx, storage.KindFile, "data:text/plain;base64,djI=", "docs", "note"); err == nil {
		t.Fatal("expected catalogue error")
	}
	svc.Catalogue = repo

	got, err := os.ReadFile(filepath.Join(svc.Disk.Root, "docs", "note.txt"))
	if err != nil {
		t.Fatalf("previous file lost: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("content = %q, want v1", got)
	}
	if rec, err := svc.Get(ctx, first.ID); err != nil || !svc.Exists(rec.Path) {
		t.Errorf("record %+v should still point at a file (err %v)", rec, err)
	}
	assertOnlyFiles(t, filepath.Join(svc.Disk.Root, "docs"), "note.txt")
}

func TestService_ReuploadReplacesWithoutLeftovers(t *testing.T) {
	svc, _ := newTestService(t, storage.Overwrite)
	ctx := context.Background()

	first, err := svc.Upload(ctx, storage.KindFile, "data:text/plain;base64,djE=", "docs", "note")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Upload(ctx, storage.KindFile, "data:text/plain;base64,djI=", "docs", "note")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("ids = %d, %d", first.ID, second.ID)
	}

	got, _ := os.ReadFile(filepath.Join(svc.Disk.Root, "docs", "note.txt"))
	if string(got) != "v2" {
		t.Errorf("content = %q, want v2", got)
	}
	assertOnlyFiles(t, filepath.Join(svc.Disk.Root, "docs"), "note.txt")
}

// assertOnlyFiles fails when dir holds anything but names, hidden files included.
func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if len(got) != len(names) {
		t.Fatalf("files = %v, want %v", got, names)
	}
	for i := range names {
		if got[i] != names[i] {
			t.Errorf("files = %v, want %v", got, names)
		}
	}
}

func TestService_Delete(t *testing.T) {
	svc, notifier := newTestService(t, storage.Overwrite)
	ctx := context.Background()

	rec, err := svc.Upload(ctx, storage.KindImage, pixelPNG, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if svc.Exists(rec.Path) {
		t.Error("file should be gone")
	}
	if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	if err := svc.Delete(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}

	got := notifier.types()
	if len(got) != 2 || got[1] != "deleted" {
		t.Errorf("events = %v", got)
	}
}

func TestService_DeleteWithMissingFile(t *testing.T) {
	svc, _ := newTestService(t, storage.Overwrite)
	ctx := context.Background()

	rec, err := svc.Upload(ctx, storage.KindImage, pixelPNG, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disk.Delete(rec.Path); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestService_Reconcile(t *testing.T) {
	svc, _ := newTestService(t, storage.AddSuffix)
	ctx := context.Background()

	kept, err := svc.Upload(ctx, storage.KindImage, pixelPNG, "", "kept")
	if err != nil {
		t.Fatal(err)
	}
	lost, err := svc.Upload(ctx, storage.KindImage, pixelPNG, "", "lost")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Disk.Delete(lost.Path); err != nil {
		t.Fatal(err)
	}

	missing, err := svc.Reconcile(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0].ID != lost.ID {
		t.Fatalf("missing = %+v", missing)
	}
	if _, err := svc.Get(ctx, lost.ID); err != nil {
		t.Errorf("dry run should keep the record: %v", err)
	}

	if _, err := svc.Reconcile(ctx, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, lost.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("fix should delete the record, got %v", err)
	}
	if _, err := svc.Get(ctx, kept.ID); err != nil {
		t.Errorf("kept record: %v", err)
	}
}

func TestService_FilesAndURL(t *testing.T) {
	svc, _ := newTestService(t, storage.Overwrite)
	svc.Disk.PublicBaseURL = "/storage"

	rec, err := svc.Upload(context.Background(), storage.KindImage, pixelPNG, "", "pic")
	if err != nil {
		t.Fatal(err)
	}
	files, err := svc.Files("uploads")
	if err != nil || len(files) != 1 || files[0] != rec.Path {
		t.Errorf("files = %v, %v", files, err)
	}
	if got := svc.URL(rec.Path); got != "/storage/uploads/pic.png" {
		t.Errorf("URL = %q", got)
	}
}
