package db

import "gorm.io/datatypes"

// PrimarySlot is the only slot value a singleton section row may hold.
const PrimarySlot = "primary"

// Section 是单例内容区块的公共字段。
// Slot 带唯一索引，保证每个区块表最多只有一行有效数据。
type Section struct {
	Base
	Slot string `gorm:"size:16;uniqueIndex;not null" json:"-"`
}

// SectionMeta exposes the singleton bookkeeping of any model embedding Section.
func (s *Section) SectionMeta() *Section {
	return s
}

// SEO 站点级 SEO 设置
type SEO struct {
	Section
	Title         string  `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Description   string  `gorm:"type:text;not null" json:"description" binding:"required"`
	Keywords      string  `gorm:"size:500" json:"keywords" binding:"max=500"`
	OGImage       *string `json:"og_image" binding:"omitempty,url"`
	OGTitle       *string `gorm:"size:200" json:"og_title" binding:"omitempty,max=200"`
	OGDescription *string `gorm:"type:text" json:"og_description"`
}

func (SEO) TableName() string { return "seo" }

// Navigation 顶部导航；MenuItems 为自由结构的 JSON 数组
type Navigation struct {
	Section
	LogoText     *string        `gorm:"size:100" json:"logo_text" binding:"omitempty,max=100"`
	LogoImageURL *string        `json:"logo_image_url" binding:"omitempty,url"`
	MenuItems    datatypes.JSON `json:"menu_items"`
}

func (Navigation) TableName() string { return "navigation" }

type Hero struct {
	Section
	Title           string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Subtitle        *string           `gorm:"type:text" json:"subtitle"`
	BackgroundImage *string           `json:"background_image" binding:"omitempty,url"`
	CTAText         *string           `gorm:"size:100" json:"cta_text" binding:"omitempty,max=100"`
	CTALink         *string           `json:"cta_link" binding:"omitempty,url"`
	Quote           *string           `gorm:"type:text" json:"quote"`
	FoundersNames   *string           `gorm:"size:200" json:"founders_names" binding:"omitempty,max=200"`
	FoundersTitle   *string           `gorm:"size:100" json:"founders_title" binding:"omitempty,max=100"`
	FoundersImages  datatypes.JSON    `json:"founders_images"`
	Content         datatypes.JSONMap `json:"content"`
}

func (Hero) TableName() string { return "hero" }

type BrutalMathSection struct {
	Section
	Title       string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Subtitle    *string           `gorm:"type:text" json:"subtitle"`
	ClosingText *string           `gorm:"type:text" json:"closing_text"`
	Content     datatypes.JSONMap `json:"content"`
}

func (BrutalMathSection) TableName() string { return "brutal_math_section" }

type WhyCentauraSection struct {
	Section
	Label    *string           `gorm:"size:100" json:"label" binding:"omitempty,max=100"`
	Title    string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	ImageURL *string           `json:"image_url" binding:"omitempty,url"`
	CTAText  *string           `gorm:"size:200" json:"cta_text" binding:"omitempty,max=200"`
	CTAURL   *string           `json:"cta_url" binding:"omitempty,url"`
	Content  datatypes.JSONMap `json:"content"`
}

func (WhyCentauraSection) TableName() string { return "why_centaura_section" }

// ComparisonTable 对比表区块，删除时级联删除其 Features
type ComparisonTable struct {
	Section
	Title    string                   `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Subtitle *string                  `gorm:"type:text" json:"subtitle"`
	CTAText  *string                  `gorm:"size:200" json:"cta_text" binding:"omitempty,max=200"`
	CTAURL   *string                  `json:"cta_url" binding:"omitempty,url"`
	Content  datatypes.JSONMap        `json:"content"`
	Features []ComparisonTableFeature `gorm:"foreignKey:ComparisonTableID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ComparisonTable) TableName() string { return "comparison_table" }

type WhyWeBuiltSection struct {
	Section
	LeftTitle    *string           `gorm:"size:200" json:"left_title" binding:"omitempty,max=200"`
	LeftContent  datatypes.JSON    `json:"left_content"`
	RightTitle   *string           `gorm:"size:200" json:"right_title" binding:"omitempty,max=200"`
	RightContent datatypes.JSON    `json:"right_content"`
	Content      datatypes.JSONMap `json:"content"`
}

func (WhyWeBuiltSection) TableName() string { return "why_we_built_section" }

// ProcessSection 流程区块，删除时级联删除其 Steps
type ProcessSection struct {
	Section
	Label   *string           `gorm:"size:100" json:"label" binding:"omitempty,max=100"`
	Title   string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	CTAText *string           `gorm:"size:200" json:"cta_text" binding:"omitempty,max=200"`
	CTAURL  *string           `json:"cta_url" binding:"omitempty,url"`
	Content datatypes.JSONMap `json:"content"`
	Steps   []ProcessStep     `gorm:"foreignKey:ProcessSectionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProcessSection) TableName() string { return "process_section" }

// FinalWordSection 的 Content 是段落字符串数组
type FinalWordSection struct {
	Section
	Label           *string        `gorm:"size:100" json:"label" binding:"omitempty,max=100"`
	Title           string         `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Content         datatypes.JSON `json:"content"`
	BackgroundImage *string        `json:"background_image" binding:"omitempty,url"`
	CTAText         *string        `gorm:"size:200" json:"cta_text" binding:"omitempty,max=200"`
	CTAURL          *string        `json:"cta_url" binding:"omitempty,url"`
}

func (FinalWordSection) TableName() string { return "final_word_section" }

type PeopleBehindStrategy struct {
	Section
	Title         string            `gorm:"size:200;not null" json:"title" binding:"required,max=200"`
	Intro         *string           `gorm:"type:text" json:"intro"`
	JaneName      *string           `gorm:"size:200" json:"jane_name" binding:"omitempty,max=200"`
	JaneTitle     *string           `gorm:"size:200" json:"jane_title" binding:"omitempty,max=200"`
	JaneImageURL  *string           `json:"jane_image_url" binding:"omitempty,url"`
	JaneBio       datatypes.JSON    `json:"jane_bio"`
	AimunName     *string           `gorm:"size:200" json:"aimun_name" binding:"omitempty,max=200"`
	AimunTitle    *string           `gorm:"size:200" json:"aimun_title" binding:"omitempty,max=200"`
	AimunImageURL *string           `json:"aimun_image_url" binding:"omitempty,url"`
	AimunBio      datatypes.JSON    `json:"aimun_bio"`
	CTAText       *string           `gorm:"size:200" json:"cta_text" binding:"omitempty,max=200"`
	CTAURL        *string           `json:"cta_url" binding:"omitempty,url"`
	Content       datatypes.JSONMap `json:"content"`
}

func (PeopleBehindStrategy) TableName() string { return "people_behind_strategy" }

// Footer 的 Content 保存完整的页脚 JSON，CopyrightText 覆盖其中的 copyright
type Footer struct {
	Section
	CopyrightText string            `gorm:"size:200;not null" json:"copyright_text" binding:"required,max=200"`
	Content       datatypes.JSONMap `json:"content"`
}

func (Footer) TableName() string { return "footer" }
