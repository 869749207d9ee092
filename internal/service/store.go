package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centaura/cms/internal/db"
	"gorm.io/gorm"
)

// positionOrder 是可重复集合的默认排序：排序值升序，创建时间升序，最后按主键。
const positionOrder = "sort_order ASC, created_at ASC, id ASC"

// recencyOrder 按创建时间倒序，媒体资源使用。
const recencyOrder = "created_at DESC, id DESC"

type record[T any] interface {
	*T
	Meta() *db.Base
}

type sectionRecord[T any] interface {
	*T
	Meta() *db.Base
	SectionMeta() *db.Section
}

// parentRef is implemented by child rows that must point at an existing parent.
type parentRef interface {
	ParentRef() (model interface{}, id uint, field string)
}

// uniqueKeyed is implemented by rows with columns that must be unique.
type uniqueKeyed interface {
	UniqueKeys() map[string]interface{}
}

// Cascade names a child table whose rows are removed together with the parent.
type Cascade struct {
	Model  interface{}
	Column string
}

// CollectionStore 负责一个可重复集合的持久化，一个方法对应一种查询形态。
type CollectionStore[T any, P record[T]] struct {
	db    *gorm.DB
	kind  string
	order string
}

// NewCollectionStore returns a store ordered by sort position then creation time.
func NewCollectionStore[T any, P record[T]](gdb *gorm.DB) *CollectionStore[T, P] {
	return newCollectionStore[T, P](gdb, positionOrder)
}

func newCollectionStore[T any, P record[T]](gdb *gorm.DB, order string) *CollectionStore[T, P] {
	return &CollectionStore[T, P]{db: gdb, kind: kindOf[T](), order: order}
}

func (s *CollectionStore[T, P]) withDB(gdb *gorm.DB) *CollectionStore[T, P] {
	clone := *s
	clone.db = gdb
	return &clone
}

// List 返回全部条目，按默认排序。
func (s *CollectionStore[T, P]) List(ctx context.Context) ([]T, error) {
	return s.ListWhere(ctx, nil)
}

// ListWhere 返回满足条件的条目，query 为 nil 时不过滤。
func (s *CollectionStore[T, P]) ListWhere(ctx context.Context, query interface{}, args ...interface{}) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		q = q.Where(query, args...)
	}

	items := make([]T, 0)
	if err := q.Order(s.order).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return items, nil
}

// Count 返回条目数量。
func (s *CollectionStore[T, P]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.kind, err)
	}
	return total, nil
}

// Get 根据主键获取条目。
func (s *CollectionStore[T, P]) Get(ctx context.Context, id uint) (*T, error) {
	return findByID[T](s.db.WithContext(ctx), s.kind, id)
}

// Create 新建条目；调用方传入的主键与时间戳会被忽略。
func (s *CollectionStore[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	*P(item).Meta() = db.Base{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRelations[T](tx, s.kind, item, 0); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update 用 item 的全部字段覆盖指定条目。
func (s *CollectionStore[T, P]) Update(ctx context.Context, id uint, item *T) (*T, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID[T](tx, s.kind, id)
		if err != nil {
			return err
		}
		meta := P(item).Meta()
		meta.ID = id
		meta.CreatedAt = P(existing).Meta().CreatedAt

		if err := checkRelations[T](tx, s.kind, item, id); err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("update %s: %w", s.kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete 删除指定条目，不存在时返回 ErrNotFound。
func (s *CollectionStore[T, P]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID[T](tx, s.kind, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("delete %s: %w", s.kind, err)
		}
		return nil
	})
}

// DeleteAll 清空整张表，仅供种子导入使用。
func (s *CollectionStore[T, P]) DeleteAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(new(T)).Error; err != nil {
		return fmt.Errorf("clear %s: %w", s.kind, err)
	}
	return nil
}

// SingletonStore 负责单例区块：同一张表最多一行，读取时取主键最小的一行。
type SingletonStore[T any, P sectionRecord[T]] struct {
	db       *gorm.DB
	kind     string
	cascades []Cascade
}

// NewSingletonStore returns a store for a singleton section. Cascades list the
// child tables removed with the section row.
func NewSingletonStore[T any, P sectionRecord[T]](gdb *gorm.DB, cascades ...Cascade) *SingletonStore[T, P] {
	return &SingletonStore[T, P]{db: gdb, kind: kindOf[T](), cascades: cascades}
}

func (s *SingletonStore[T, P]) withDB(gdb *gorm.DB) *SingletonStore[T, P] {
	clone := *s
	clone.db = gdb
	return &clone
}

// Current 返回当前生效的区块行，不存在时返回 ErrNotFound。
func (s *SingletonStore[T, P]) Current(ctx context.Context) (*T, error) {
	return firstRow[T](s.db.WithContext(ctx), s.kind)
}

// List returns the current row as a list of at most one element.
func (s *SingletonStore[T, P]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0, 1)
	if err := s.db.WithContext(ctx).Order("id ASC").Limit(1).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return items, nil
}

// Get 根据主键获取区块行。
func (s *SingletonStore[T, P]) Get(ctx context.Context, id uint) (*T, error) {
	return findByID[T](s.db.WithContext(ctx), s.kind, id)
}

// Create 对单例区块而言是 upsert：已有行时覆盖，否则新建。
func (s *SingletonStore[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	return s.Save(ctx, item)
}

// Save 覆盖当前行的全部字段；没有当前行时插入新行。
// 并发的首次写入会撞上 slot 唯一索引，此时重新读取并改为覆盖。
func (s *SingletonStore[T, P]) Save(ctx context.Context, item *T) (*T, error) {
	err := s.save(ctx, item)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.save(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SingletonStore[T, P]) save(ctx context.Context, item *T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := firstRow[T](tx, s.kind)
		switch {
		case errors.Is(err, ErrNotFound):
			return s.insert(tx, item)
		case err != nil:
			return err
		}
		return s.overwrite(tx, existing, item)
	})
}

// Update 覆盖指定主键的区块行。
func (s *SingletonStore[T, P]) Update(ctx context.Context, id uint, item *T) (*T, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID[T](tx, s.kind, id)
		if err != nil {
			return err
		}
		return s.overwrite(tx, existing, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// EnsureCurrent 返回当前行；不存在时以 placeholder 创建。
func (s *SingletonStore[T, P]) EnsureCurrent(ctx context.Context, placeholder *T) (*T, error) {
	current, err := s.Current(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.Save(ctx, placeholder)
}

// Delete 删除指定区块行及其子条目。
func (s *SingletonStore[T, P]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByID[T](tx, s.kind, id)
		if err != nil {
			return err
		}
		for _, cascade := range s.cascades {
			if err := tx.Where(cascade.Column+" = ?", id).Delete(cascade.Model).Error; err != nil {
				return fmt.Errorf("delete %s children: %w", s.kind, err)
			}
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("delete %s: %w", s.kind, err)
		}
		return nil
	})
}

// Replace 删除全部行（含子条目）后插入 item，用于种子导入。
func (s *SingletonStore[T, P]) Replace(ctx context.Context, item *T) (*T, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cascade := range s.cascades {
			parents := tx.Model(new(T)).Select("id")
			if err := tx.Where(cascade.Column+" IN (?)", parents).Delete(cascade.Model).Error; err != nil {
				return fmt.Errorf("clear %s children: %w", s.kind, err)
			}
		}
		if err := tx.Where("1 = 1").Delete(new(T)).Error; err != nil {
			return fmt.Errorf("clear %s: %w", s.kind, err)
		}
		return s.insert(tx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SingletonStore[T, P]) insert(tx *gorm.DB, item *T) error {
	*P(item).Meta() = db.Base{}
	P(item).SectionMeta().Slot = db.PrimarySlot

	if err := checkRelations[T](tx, s.kind, item, 0); err != nil {
		return err
	}
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("create %s: %w", s.kind, err)
	}
	return nil
}

func (s *SingletonStore[T, P]) overwrite(tx *gorm.DB, existing, item *T) error {
	current := P(existing).SectionMeta()
	section := P(item).SectionMeta()
	section.ID = current.ID
	section.CreatedAt = current.CreatedAt
	section.Slot = current.Slot

	if err := checkRelations[T](tx, s.kind, item, current.ID); err != nil {
		return err
	}
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("update %s: %w", s.kind, err)
	}
	return nil
}

func findByID[T any](tx *gorm.DB, kind string, id uint) (*T, error) {
	var item T
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return &item, nil
}

func firstRow[T any](tx *gorm.DB, kind string) (*T, error) {
	var item T
	if err := tx.Order("id ASC").First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get current %s: %w", kind, err)
	}
	return &item, nil
}

// checkRelations 校验父级引用存在以及唯一列不冲突，失败时返回 *ValidationError。
func checkRelations[T any](tx *gorm.DB, kind string, item *T, selfID uint) error {
	verr := &ValidationError{}

	if ref, ok := any(item).(parentRef); ok {
		model, parentID, field := ref.ParentRef()
		var total int64
		if err := tx.Model(model).Where("id = ?", parentID).Count(&total).Error; err != nil {
			return fmt.Errorf("check %s parent: %w", kind, err)
		}
		if total == 0 {
			verr.Add(field, fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(parentID)))
		}
	}

	if unique, ok := any(item).(uniqueKeyed); ok {
		for column, value := range unique.UniqueKeys() {
			q := tx.Model(new(T)).Where(column+" = ?", value)
			if selfID != 0 {
				q = q.Where("id <> ?", selfID)
			}
			var total int64
			if err := q.Count(&total).Error; err != nil {
				return fmt.Errorf("check %s unique %s: %w", kind, column, err)
			}
			if total > 0 {
				verr.Add(column, fmt.Sprintf("%s with this %s already exists.", humanize(kind), strings.ReplaceAll(column, "_", " ")))
			}
		}
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func kindOf[T any]() string {
	var zero T
	name := fmt.Sprintf("%T", zero)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// humanize 把 MediaAsset 这样的类型名转成 "media asset"。
func humanize(kind string) string {
	var b strings.Builder
	for i, r := range kind {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
