package service

import (
	"github.com/centaura/cms/internal/db"
	"gorm.io/gorm"
)

// Content groups the per-entity stores backing the CMS.
type Content struct {
	db *gorm.DB

	SEO                  *SingletonStore[db.SEO, *db.SEO]
	Navigation           *SingletonStore[db.Navigation, *db.Navigation]
	Hero                 *SingletonStore[db.Hero, *db.Hero]
	BrutalMath           *SingletonStore[db.BrutalMathSection, *db.BrutalMathSection]
	WhyCentaura          *SingletonStore[db.WhyCentauraSection, *db.WhyCentauraSection]
	ComparisonTable      *SingletonStore[db.ComparisonTable, *db.ComparisonTable]
	PeopleBehindStrategy *SingletonStore[db.PeopleBehindStrategy, *db.PeopleBehindStrategy]
	WhyWeBuilt           *SingletonStore[db.WhyWeBuiltSection, *db.WhyWeBuiltSection]
	Process              *SingletonStore[db.ProcessSection, *db.ProcessSection]
	FinalWord            *SingletonStore[db.FinalWordSection, *db.FinalWordSection]
	Footer               *SingletonStore[db.Footer, *db.Footer]

	Stats              *CollectionStore[db.Stat, *db.Stat]
	BrutalMathStats    *CollectionStore[db.BrutalMathStat, *db.BrutalMathStat]
	WhyCentauraFeature *CollectionStore[db.WhyCentauraFeature, *db.WhyCentauraFeature]
	Services           *CollectionStore[db.Service, *db.Service]
	ComparisonFeatures *CollectionStore[db.ComparisonTableFeature, *db.ComparisonTableFeature]
	Portfolio          *CollectionStore[db.PortfolioProject, *db.PortfolioProject]
	ProcessSteps       *CollectionStore[db.ProcessStep, *db.ProcessStep]
	Testimonials       *CollectionStore[db.Testimonial, *db.Testimonial]
	FAQs               *CollectionStore[db.FAQ, *db.FAQ]
	SocialLinks        *CollectionStore[db.SocialLink, *db.SocialLink]
	Media              *MediaStore
}

// NewContent 构造全部内容存储
func NewContent(gdb *gorm.DB) *Content {
	return &Content{
		db:                   gdb,
		SEO:                  NewSingletonStore[db.SEO](gdb),
		Navigation:           NewSingletonStore[db.Navigation](gdb),
		Hero:                 NewSingletonStore[db.Hero](gdb),
		BrutalMath:           NewSingletonStore[db.BrutalMathSection](gdb),
		WhyCentaura:          NewSingletonStore[db.WhyCentauraSection](gdb),
		ComparisonTable:      NewSingletonStore[db.ComparisonTable](gdb, Cascade{Model: &db.ComparisonTableFeature{}, Column: "comparison_table_id"}),
		PeopleBehindStrategy: NewSingletonStore[db.PeopleBehindStrategy](gdb),
		WhyWeBuilt:           NewSingletonStore[db.WhyWeBuiltSection](gdb),
		Process:              NewSingletonStore[db.ProcessSection](gdb, Cascade{Model: &db.ProcessStep{}, Column: "process_section_id"}),
		FinalWord:            NewSingletonStore[db.FinalWordSection](gdb),
		Footer:               NewSingletonStore[db.Footer](gdb),

		Stats:              NewCollectionStore[db.Stat](gdb),
		BrutalMathStats:    NewCollectionStore[db.BrutalMathStat](gdb),
		WhyCentauraFeature: NewCollectionStore[db.WhyCentauraFeature](gdb),
		Services:           NewCollectionStore[db.Service](gdb),
		ComparisonFeatures: NewCollectionStore[db.ComparisonTableFeature](gdb),
		Portfolio:          NewCollectionStore[db.PortfolioProject](gdb),
		ProcessSteps:       NewCollectionStore[db.ProcessStep](gdb),
		Testimonials:       NewCollectionStore[db.Testimonial](gdb),
		FAQs:               NewCollectionStore[db.FAQ](gdb),
		SocialLinks:        NewCollectionStore[db.SocialLink](gdb),
		Media:              NewMediaStore(gdb),
	}
}

// DB exposes the underlying gorm instance.
func (c *Content) DB() *gorm.DB {
	return c.db
}

// withDB 返回绑定到 tx 的副本，所有存储共享同一个事务。
func (c *Content) withDB(tx *gorm.DB) *Content {
	return &Content{
		db:                   tx,
		SEO:                  c.SEO.withDB(tx),
		Navigation:           c.Navigation.withDB(tx),
		Hero:                 c.Hero.withDB(tx),
		BrutalMath:           c.BrutalMath.withDB(tx),
		WhyCentaura:          c.WhyCentaura.withDB(tx),
		ComparisonTable:      c.ComparisonTable.withDB(tx),
		PeopleBehindStrategy: c.PeopleBehindStrategy.withDB(tx),
		WhyWeBuilt:           c.WhyWeBuilt.withDB(tx),
		Process:              c.Process.withDB(tx),
		FinalWord:            c.FinalWord.withDB(tx),
		Footer:               c.Footer.withDB(tx),

		Stats:              c.Stats.withDB(tx),
		BrutalMathStats:    c.BrutalMathStats.withDB(tx),
		WhyCentauraFeature: c.WhyCentauraFeature.withDB(tx),
		Services:           c.Services.withDB(tx),
		ComparisonFeatures: c.ComparisonFeatures.withDB(tx),
		Portfolio:          c.Portfolio.withDB(tx),
		ProcessSteps:       c.ProcessSteps.withDB(tx),
		Testimonials:       c.Testimonials.withDB(tx),
		FAQs:               c.FAQs.withDB(tx),
		SocialLinks:        c.SocialLinks.withDB(tx),
		Media:              c.Media.withDB(tx),
	}
}
