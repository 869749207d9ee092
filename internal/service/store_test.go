package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/centaura/cms/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func setupContentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:content-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func strPtr(s string) *string {
	return &s
}

func TestCollectionStoreListOrdersBySortOrderThenCreation(t *testing.T) {
	gdb := setupContentTestDB(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	rows := []db.Stat{
		{Base: db.Base{CreatedAt: base.Add(2 * time.Minute)}, Label: "late", Value: "3", SortOrder: 1},
		{Base: db.Base{CreatedAt: base}, Label: "early", Value: "2", SortOrder: 1},
		{Base: db.Base{CreatedAt: base.Add(time.Hour)}, Label: "first", Value: "1", SortOrder: 0},
	}
	if err := gdb.Create(&rows).Error; err != nil {
		t.Fatalf("failed to seed stats: %v", err)
	}

	store := NewCollectionStore[db.Stat](gdb)
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 stats, got %d", len(list))
	}
	if list[0].Label != "first" || list[1].Label != "early" || list[2].Label != "late" {
		t.Fatalf("unexpected order: %+v", []string{list[0].Label, list[1].Label, list[2].Label})
	}
}

func TestCollectionStoreCreateIgnoresClientBookkeeping(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewCollectionStore[db.FAQ](gdb)

	stale := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := store.Create(context.Background(), &db.FAQ{
		Base:     db.Base{ID: 99, CreatedAt: stale},
		Question: "How long does an exit take?",
		Answer:   "Usually 2-5 years.",
	})
	if err != nil {
		t.Fatalf("create faq: %v", err)
	}
	if created.ID == 99 {
		t.Fatal("expected client supplied id to be ignored")
	}
	if !created.CreatedAt.After(stale) {
		t.Fatalf("expected created_at to be assigned by the store, got %v", created.CreatedAt)
	}
}

func TestCollectionStoreUpdateKeepsCreatedAt(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewCollectionStore[db.Testimonial](gdb)
	ctx := context.Background()

	original, err := store.Create(ctx, &db.Testimonial{Name: "Ann", Content: "Great"})
	if err != nil {
		t.Fatalf("create testimonial: %v", err)
	}
	createdAt := original.CreatedAt

	updated, err := store.Update(ctx, original.ID, &db.Testimonial{Name: "Ann B.", Content: "Great team", SortOrder: 4})
	if err != nil {
		t.Fatalf("update testimonial: %v", err)
	}
	if updated.ID != original.ID {
		t.Fatalf("expected id %d, got %d", original.ID, updated.ID)
	}

	stored, err := store.Get(ctx, original.ID)
	if err != nil {
		t.Fatalf("get testimonial: %v", err)
	}
	if stored.Name != "Ann B." || stored.SortOrder != 4 {
		t.Fatalf("unexpected stored testimonial: %+v", stored)
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at %v to be preserved, got %v", createdAt, stored.CreatedAt)
	}
}

func TestCollectionStoreMissingRowsReturnNotFound(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewCollectionStore[db.Service](gdb)
	ctx := context.Background()

	if _, err := store.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
	if _, err := store.Update(ctx, 42, &db.Service{Title: "x", Description: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Update, got %v", err)
	}
	if err := store.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Delete, got %v", err)
	}
}

func TestCollectionStoreCreateRejectsMissingParent(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewCollectionStore[db.ProcessStep](gdb)

	_, err := store.Create(context.Background(), &db.ProcessStep{
		ProcessSectionID: 7,
		Number:           "01",
		Title:            "Assess",
		Description:      "Find the gaps.",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	messages := verr.Fields["process_section"]
	if len(messages) != 1 || messages[0] != `Invalid pk "7" - object does not exist.` {
		t.Fatalf("unexpected field messages: %+v", verr.Fields)
	}

	total, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no rows to be written, got %d", total)
	}
}

func TestSingletonStoreCreateUpsertsSingleRow(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewSingletonStore[db.Hero](gdb)
	ctx := context.Background()

	first, err := store.Create(ctx, &db.Hero{Title: "First"})
	if err != nil {
		t.Fatalf("create hero: %v", err)
	}
	second, err := store.Create(ctx, &db.Hero{Title: "Second"})
	if err != nil {
		t.Fatalf("create hero again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert to reuse id %d, got %d", first.ID, second.ID)
	}

	var total int64
	if err := gdb.Model(&db.Hero{}).Count(&total).Error; err != nil {
		t.Fatalf("count hero rows: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one hero row, got %d", total)
	}

	current, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current hero: %v", err)
	}
	if current.Title != "Second" {
		t.Fatalf("expected latest title, got %q", current.Title)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list hero: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected list of one, got %d", len(list))
	}
}

// 模拟并发首次写入：第一次读取当前行时看不到已存在的行，插入撞上 slot 唯一索引。
func TestSingletonStoreSaveRecoversFromConcurrentFirstInsert(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewSingletonStore[db.Hero](gdb)
	ctx := context.Background()

	first, err := store.Save(ctx, &db.Hero{Title: "written by the other request"})
	if err != nil {
		t.Fatalf("initial save: %v", err)
	}

	armed := true
	err = gdb.Callback().Query().Before("gorm:query").Register("test:hide_current_hero", func(tx *gorm.DB) {
		if armed && tx.Statement.Table == "hero" {
			armed = false
			tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	saved, err := store.Save(ctx, &db.Hero{Title: "written by this request"})
	if err != nil {
		t.Fatalf("expected save to fall back to overwrite, got %v", err)
	}
	if armed {
		t.Fatal("expected the first lookup to miss the existing row")
	}
	if saved.ID != first.ID {
		t.Fatalf("expected overwrite of row %d, got %d", first.ID, saved.ID)
	}

	var total int64
	if err := gdb.Model(&db.Hero{}).Count(&total).Error; err != nil {
		t.Fatalf("count heroes: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one hero row, got %d", total)
	}
	current, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("current hero: %v", err)
	}
	if current.Title != "written by this request" {
		t.Fatalf("unexpected title %q", current.Title)
	}
}

func TestSingletonStoreCurrentMissing(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewSingletonStore[db.Footer](gdb)

	if _, err := store.Current(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list footer: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestSingletonStoreEnsureCurrentCreatesPlaceholderOnce(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewSingletonStore[db.SEO](gdb)
	ctx := context.Background()

	created, err := store.EnsureCurrent(ctx, &db.SEO{Title: "Centaura Group", Description: "placeholder"})
	if err != nil {
		t.Fatalf("ensure seo: %v", err)
	}
	if created.Title != "Centaura Group" {
		t.Fatalf("unexpected placeholder title %q", created.Title)
	}

	again, err := store.EnsureCurrent(ctx, &db.SEO{Title: "Other", Description: "other"})
	if err != nil {
		t.Fatalf("ensure seo again: %v", err)
	}
	if again.ID != created.ID || again.Title != "Centaura Group" {
		t.Fatalf("expected existing row to be returned, got %+v", again)
	}
}

func TestSingletonStoreDeleteCascadesChildren(t *testing.T) {
	gdb := setupContentTestDB(t)
	content := NewContent(gdb)
	ctx := context.Background()

	section, err := content.Process.Create(ctx, &db.ProcessSection{Title: "Our process"})
	if err != nil {
		t.Fatalf("create process: %v", err)
	}
	for i, title := range []string{"Assess", "Build", "Exit"} {
		if _, err := content.ProcessSteps.Create(ctx, &db.ProcessStep{
			ProcessSectionID: section.ID,
			Number:           fmt.Sprintf("0%d", i+1),
			Title:            title,
			Description:      title + " phase",
			SortOrder:        i,
		}); err != nil {
			t.Fatalf("create step %s: %v", title, err)
		}
	}

	if err := content.Process.Delete(ctx, section.ID); err != nil {
		t.Fatalf("delete process: %v", err)
	}

	total, err := content.ProcessSteps.Count(ctx)
	if err != nil {
		t.Fatalf("count steps: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected steps to be deleted with their section, got %d", total)
	}
}

func TestSingletonStoreReplaceClearsChildren(t *testing.T) {
	gdb := setupContentTestDB(t)
	content := NewContent(gdb)
	ctx := context.Background()

	table, err := content.ComparisonTable.Create(ctx, &db.ComparisonTable{Title: "Old"})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := content.ComparisonFeatures.Create(ctx, &db.ComparisonTableFeature{
		ComparisonTableID: table.ID,
		Name:              "Exit readiness",
		Centaura:          true,
	}); err != nil {
		t.Fatalf("create feature: %v", err)
	}

	replaced, err := content.ComparisonTable.Replace(ctx, &db.ComparisonTable{Title: "New"})
	if err != nil {
		t.Fatalf("replace table: %v", err)
	}
	if replaced.Title != "New" {
		t.Fatalf("unexpected title %q", replaced.Title)
	}

	total, err := content.ComparisonFeatures.Count(ctx)
	if err != nil {
		t.Fatalf("count features: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected features of the replaced table to be removed, got %d", total)
	}
}

func TestMediaStoreRejectsDuplicatePublicID(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewMediaStore(gdb)
	ctx := context.Background()

	if _, err := store.Create(ctx, &db.MediaAsset{PublicID: "hero_1", Folder: db.DefaultFolder}); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	_, err := store.Create(ctx, &db.MediaAsset{PublicID: "hero_1", Folder: db.DefaultFolder})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := verr.Fields["public_id"]; len(got) != 1 || got[0] != "media asset with this public id already exists." {
		t.Fatalf("unexpected public_id messages: %+v", got)
	}
}

func TestMediaStoreListByFolderNewestFirst(t *testing.T) {
	gdb := setupContentTestDB(t)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assets := []db.MediaAsset{
		{Base: db.Base{CreatedAt: base}, PublicID: "g1", Folder: db.GalleryFolder},
		{Base: db.Base{CreatedAt: base.Add(time.Minute)}, PublicID: "g2", Folder: db.GalleryFolder},
		{Base: db.Base{CreatedAt: base.Add(2 * time.Minute)}, PublicID: "u1", Folder: db.DefaultFolder},
		{Base: db.Base{CreatedAt: base.Add(time.Minute)}, PublicID: "g3", Folder: db.GalleryFolder},
	}
	if err := gdb.Create(&assets).Error; err != nil {
		t.Fatalf("failed to seed assets: %v", err)
	}

	store := NewMediaStore(gdb)
	list, err := store.ListByFolder(context.Background(), db.GalleryFolder, 2)
	if err != nil {
		t.Fatalf("list gallery: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(list))
	}
	// g2 与 g3 创建时间相同，按主键倒序
	if list[0].PublicID != "g3" || list[1].PublicID != "g2" {
		t.Fatalf("unexpected order: %s, %s", list[0].PublicID, list[1].PublicID)
	}
}

func TestMediaStoreGetOrCreateKeepsExisting(t *testing.T) {
	gdb := setupContentTestDB(t)
	store := NewMediaStore(gdb)
	ctx := context.Background()

	first, created, err := store.GetOrCreate(ctx, &db.MediaAsset{PublicID: "gallery_0_a.jpg", URL: strPtr("https://cdn.example.com/a.jpg")})
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the asset")
	}
	if first.Folder != db.DefaultFolder {
		t.Fatalf("expected default folder, got %q", first.Folder)
	}

	second, created, err := store.GetOrCreate(ctx, &db.MediaAsset{PublicID: "gallery_0_a.jpg", URL: strPtr("https://cdn.example.com/b.jpg")})
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if created {
		t.Fatal("expected second call to reuse the asset")
	}
	if second.ID != first.ID || *second.URL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("expected existing asset to be left untouched, got %+v", second)
	}
}

func TestHumanize(t *testing.T) {
	if got := humanize("MediaAsset"); got != "media asset" {
		t.Fatalf("humanize(MediaAsset) = %q", got)
	}
	if got := humanize("Stat"); got != "stat" {
		t.Fatalf("humanize(Stat) = %q", got)
	}
}
