package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Base carries the bookkeeping columns shared by every content table.
// Unlike gorm.Model there is no soft-delete column: deleted rows are gone.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the bookkeeping columns of any model embedding Base.
func (b *Base) Meta() *Base {
	return b
}

// Init 初始化数据库连接并执行自动迁移。
// dsn 以 postgres:// 开头时使用 Postgres，否则视为 sqlite 文件路径，为空时回退到 centaura.db。
func Init(dsn string) error {
	gdb, err := Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open selects the driver for dsn and opens the connection without migrating.
func Open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	opts := gorm.Config{}
	if cfg != nil {
		opts = *cfg
	}
	// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey
	opts.TranslateError = true

	trimmed := strings.TrimSpace(dsn)
	if isPostgresDSN(trimmed) {
		return gorm.Open(postgres.Open(trimmed), &opts)
	}

	if trimmed == "" {
		trimmed = "centaura.db"
	}
	if !strings.HasPrefix(trimmed, "file:") {
		if err := ensureParentDir(sqlitePath(trimmed)); err != nil {
			return nil, err
		}
	}
	return gorm.Open(sqlite.Open(withForeignKeys(trimmed)), &opts)
}

// Models 返回需要迁移的全部模型，父表在子表之前。
func Models() []interface{} {
	return []interface{}{
		&User{},
		&SEO{},
		&Navigation{},
		&Hero{},
		&BrutalMathSection{},
		&WhyCentauraSection{},
		&ComparisonTable{},
		&PeopleBehindStrategy{},
		&WhyWeBuiltSection{},
		&ProcessSection{},
		&FinalWordSection{},
		&Footer{},
		&Stat{},
		&BrutalMathStat{},
		&WhyCentauraFeature{},
		&Service{},
		&ComparisonTableFeature{},
		&PortfolioProject{},
		&ProcessStep{},
		&Testimonial{},
		&FAQ{},
		&SocialLink{},
		&MediaAsset{},
	}
}

// Migrate 自动迁移模式，为全部内容模型创建表
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

func sqlitePath(dsn string) string {
	if idx := strings.Index(dsn, "?"); idx >= 0 {
		return dsn[:idx]
	}
	return dsn
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
