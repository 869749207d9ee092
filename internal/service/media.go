package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centaura/cms/internal/db"
	"gorm.io/gorm"
)

// GalleryLimit 是首页图片墙最多展示的数量
const GalleryLimit = 4

// MediaStore 媒体资源存储，默认按创建时间倒序。
type MediaStore struct {
	*CollectionStore[db.MediaAsset, *db.MediaAsset]
}

// NewMediaStore returns a MediaStore ordered newest first.
func NewMediaStore(gdb *gorm.DB) *MediaStore {
	return &MediaStore{CollectionStore: newCollectionStore[db.MediaAsset, *db.MediaAsset](gdb, recencyOrder)}
}

func (s *MediaStore) withDB(gdb *gorm.DB) *MediaStore {
	return &MediaStore{CollectionStore: s.CollectionStore.withDB(gdb)}
}

// ListByFolder 返回指定目录下最新的资源，limit <= 0 表示不限制。
func (s *MediaStore) ListByFolder(ctx context.Context, folder string, limit int) ([]db.MediaAsset, error) {
	q := s.db.WithContext(ctx).Where("folder = ?", folder).Order(recencyOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}

	items := make([]db.MediaAsset, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list media in %s: %w", folder, err)
	}
	return items, nil
}

// GetOrCreate 按 PublicID 查找资源，不存在时创建；已存在的资源保持不变。
func (s *MediaStore) GetOrCreate(ctx context.Context, asset *db.MediaAsset) (*db.MediaAsset, bool, error) {
	publicID := strings.TrimSpace(asset.PublicID)
	if publicID == "" {
		return nil, false, NewValidationError("public_id", "This field may not be blank.")
	}

	var existing db.MediaAsset
	err := s.db.WithContext(ctx).Where("public_id = ?", publicID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find media %s: %w", publicID, err)
	}

	asset.PublicID = publicID
	if strings.TrimSpace(asset.Folder) == "" {
		asset.Folder = db.DefaultFolder
	}
	created, err := s.Create(ctx, asset)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
