package db

import "gorm.io/datatypes"

// DefaultFolder is the folder assigned to media assets created without one.
const DefaultFolder = "uploads"

// GalleryFolder 标记首页图片墙使用的媒体资源
const GalleryFolder = "gallery"

// Stat 首页数据条
type Stat struct {
	Base
	Label     string  `gorm:"size:100;not null" json:"label" binding:"required,max=100"`
	Value     string  `gorm:"size:50;not null" json:"value" binding:"required,max=50"`
	Icon      *string `gorm:"size:100" json:"icon" binding:"omitempty,max=100"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`
}

type BrutalMathStat struct {
	Base
	Value       string `gorm:"size:50;not null" json:"value" binding:"required,max=50"`
	Description string `gorm:"type:text;not null" json:"description" binding:"required"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

type WhyCentauraFeature struct {
	Base
	Title       string `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description string `gorm:"type:text;not null" json:"description" binding:"required"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

type Service struct {
	Base
	Label       *string           `gorm:"size:100" json:"label" binding:"omitempty,max=100"`
	Title       string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description string            `gorm:"type:text;not null" json:"description" binding:"required"`
	Outcome     *string           `gorm:"type:text" json:"outcome"`
	Icon        *string           `gorm:"size:100" json:"icon" binding:"omitempty,max=100"`
	ImageURL    *string           `json:"image_url" binding:"omitempty,url"`
	SortOrder   int               `gorm:"not null;default:0" json:"sort_order"`
	Content     datatypes.JSONMap `json:"content"`
}

// ComparisonTableFeature 属于某个 ComparisonTable
// Typical 默认 false，Centaura 默认 true（见 ApplyDefaults）
type ComparisonTableFeature struct {
	Base
	ComparisonTableID uint   `gorm:"not null;index" json:"comparison_table" binding:"required"`
	Name              string `gorm:"size:200;not null" json:"name" binding:"required,max=200"`
	Typical           bool   `gorm:"not null" json:"typical"`
	Centaura          bool   `gorm:"not null" json:"centaura"`
	SortOrder         int    `gorm:"not null;default:0" json:"sort_order"`
}

// ApplyDefaults sets the values an omitted field should take on create.
func (f *ComparisonTableFeature) ApplyDefaults() {
	f.Centaura = true
}

// ParentRef names the owning comparison table.
func (f *ComparisonTableFeature) ParentRef() (interface{}, uint, string) {
	return &ComparisonTable{}, f.ComparisonTableID, "comparison_table"
}

// PortfolioProject 对应首页 case studies，只有 IsActive 的条目对外展示
type PortfolioProject struct {
	Base
	Title       string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description string            `gorm:"type:text;not null" json:"description" binding:"required"`
	ImageURL    *string           `json:"image_url" binding:"omitempty,url"`
	Category    *string           `gorm:"size:100" json:"category" binding:"omitempty,max=100"`
	IsActive    bool              `gorm:"not null" json:"is_active"`
	SortOrder   int               `gorm:"not null;default:0" json:"sort_order"`
	Content     datatypes.JSONMap `json:"content"`
}

func (p *PortfolioProject) ApplyDefaults() {
	p.IsActive = true
}

type ProcessStep struct {
	Base
	ProcessSectionID uint   `gorm:"not null;index" json:"process_section" binding:"required"`
	Number           string `gorm:"size:10;not null" json:"number" binding:"required,max=10"`
	Title            string `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description      string `gorm:"type:text;not null" json:"description" binding:"required"`
	SortOrder        int    `gorm:"not null;default:0" json:"sort_order"`
}

func (s *ProcessStep) ParentRef() (interface{}, uint, string) {
	return &ProcessSection{}, s.ProcessSectionID, "process_section"
}

type Testimonial struct {
	Base
	Name      string  `gorm:"size:100;not null" json:"name" binding:"required,max=100"`
	Role      *string `gorm:"size:100" json:"role" binding:"omitempty,max=100"`
	Content   string  `gorm:"type:text;not null" json:"content" binding:"required"`
	ImageURL  *string `json:"image_url" binding:"omitempty,url"`
	Rating    *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`
}

type FAQ struct {
	Base
	Question  string `gorm:"size:500;not null" json:"question" binding:"required,max=500"`
	Answer    string `gorm:"type:text;not null" json:"answer" binding:"required"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

func (FAQ) TableName() string { return "faqs" }

type SocialLink struct {
	Base
	Platform  string  `gorm:"size:50;not null" json:"platform" binding:"required,max=50"`
	URL       *string `json:"url" binding:"omitempty,url"`
	Icon      *string `gorm:"size:100" json:"icon" binding:"omitempty,max=100"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`
}

// MediaAsset 媒体资源，PublicID 唯一，用于重复导入时的幂等判断。
// 地址字段允许站内相对路径（本地上传的 /static/uploads/...）。
type MediaAsset struct {
	Base
	PublicID     string  `gorm:"size:255;uniqueIndex;not null" json:"public_id" binding:"required,max=255"`
	URL          *string `json:"url" binding:"omitempty,uri"`
	SecureURL    *string `json:"secure_url" binding:"omitempty,uri"`
	WebURL       *string `json:"web_url" binding:"omitempty,uri"`
	ThumbnailURL *string `json:"thumbnail_url" binding:"omitempty,uri"`
	Folder       string  `gorm:"size:200;not null" json:"folder" binding:"max=200"`
	Width        int     `json:"width" binding:"min=0"`
	Height       int     `json:"height" binding:"min=0"`
}

func (m *MediaAsset) ApplyDefaults() {
	m.Folder = DefaultFolder
}

// UniqueKeys lists the columns that must not collide with another asset.
func (m *MediaAsset) UniqueKeys() map[string]interface{} {
	return map[string]interface{}{"public_id": m.PublicID}
}
