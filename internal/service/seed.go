package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrMalformedSeed 在种子文件无法解析时返回
var ErrMalformedSeed = errors.New("malformed seed document")

// Text 接受字符串、数字或布尔值，统一保存为文本。
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return fmt.Errorf("expected text value, got %s", trimmed)
	}
	*t = Text(trimmed)
	return nil
}

// SeedDocument 与首页聚合接口的输出结构一致。
type SeedDocument struct {
	Hero                 SeedHero               `json:"hero"`
	Stats                []SeedStat             `json:"stats"`
	BrutalMath           SeedBrutalMath         `json:"brutal_math"`
	WhyCentaura          SeedWhyCentaura        `json:"why_centaura"`
	Services             []SeedServiceItem      `json:"services"`
	ComparisonTable      SeedComparisonTable    `json:"comparison_table"`
	CaseStudies          []SeedCaseStudy        `json:"case_studies"`
	PeopleBehindStrategy SeedPeople             `json:"people_behind_strategy"`
	WhyWeBuilt           SeedWhyWeBuilt         `json:"why_we_built"`
	Process              SeedProcess            `json:"process"`
	FinalWord            SeedFinalWord          `json:"final_word"`
	Footer               map[string]interface{} `json:"footer"`
	ImageGallery         []SeedImage            `json:"image_gallery"`
}

type SeedHero struct {
	Title              *Text        `json:"title"`
	Subtitle           *Text        `json:"subtitle"`
	BackgroundImageURL *Text        `json:"background_image_url"`
	CTAText            *Text        `json:"cta_text"`
	CTAURL             *Text        `json:"cta_url"`
	Quote              *Text        `json:"quote"`
	Founders           SeedFounders `json:"founders"`
}

type SeedFounders struct {
	Names  *Text           `json:"names"`
	Title  *Text           `json:"title"`
	Images json.RawMessage `json:"images"`
}

type SeedStat struct {
	Label *Text `json:"label"`
	Value *Text `json:"value"`
}

type SeedBrutalMath struct {
	Title       *Text                `json:"title"`
	Subtitle    *Text                `json:"subtitle"`
	Statistics  []SeedBrutalMathStat `json:"statistics"`
	ClosingText *Text                `json:"closing_text"`
}

type SeedBrutalMathStat struct {
	Value       *Text `json:"value"`
	Description *Text `json:"description"`
}

type SeedWhyCentaura struct {
	Label    *Text        `json:"label"`
	Title    *Text        `json:"title"`
	ImageURL *Text        `json:"image_url"`
	Features []SeedTitled `json:"features"`
	CTAText  *Text        `json:"cta_text"`
	CTAURL   *Text        `json:"cta_url"`
}

type SeedTitled struct {
	Title       *Text `json:"title"`
	Description *Text `json:"description"`
}

type SeedServiceItem struct {
	Label       *Text `json:"label"`
	Title       *Text `json:"title"`
	Description *Text `json:"description"`
	Outcome     *Text `json:"outcome"`
}

type SeedComparisonTable struct {
	Title    *Text                   `json:"title"`
	Subtitle *Text                   `json:"subtitle"`
	Features []SeedComparisonFeature `json:"features"`
	CTAText  *Text                   `json:"cta_text"`
	CTAURL   *Text                   `json:"cta_url"`
}

type SeedComparisonFeature struct {
	Name     *Text `json:"name"`
	Typical  *bool `json:"typical"`
	Centaura *bool `json:"centaura"`
}

type SeedCaseStudy struct {
	Category    *Text `json:"category"`
	Title       *Text `json:"title"`
	Description *Text `json:"description"`
	ImageURL    *Text `json:"image_url"`
}

type SeedPeople struct {
	Title   *Text      `json:"title"`
	Intro   *Text      `json:"intro"`
	Jane    SeedPerson `json:"jane"`
	Aimun   SeedPerson `json:"aimun"`
	CTAText *Text      `json:"cta_text"`
	CTAURL  *Text      `json:"cta_url"`
}

type SeedPerson struct {
	Name     *Text           `json:"name"`
	Title    *Text           `json:"title"`
	ImageURL *Text           `json:"image_url"`
	Bio      json.RawMessage `json:"bio"`
}

type SeedWhyWeBuilt struct {
	Left  SeedColumn `json:"left"`
	Right SeedColumn `json:"right"`
}

type SeedColumn struct {
	Title   *Text           `json:"title"`
	Content json.RawMessage `json:"content"`
}

type SeedProcess struct {
	Label   *Text             `json:"label"`
	Title   *Text             `json:"title"`
	Steps   []SeedProcessStep `json:"steps"`
	CTAText *Text             `json:"cta_text"`
	CTAURL  *Text             `json:"cta_url"`
}

type SeedProcessStep struct {
	Number      *Text `json:"number"`
	Title       *Text `json:"title"`
	Description *Text `json:"description"`
}

type SeedFinalWord struct {
	Label           *Text           `json:"label"`
	Title           *Text           `json:"title"`
	Content         json.RawMessage `json:"content"`
	BackgroundImage *Text           `json:"background_image"`
	CTAText         *Text           `json:"cta_text"`
	CTAURL          *Text           `json:"cta_url"`
}

type SeedImage struct {
	URL *Text `json:"url"`
}

// SeedReport 汇总一次导入写入的数据量
type SeedReport struct {
	Stats           int
	BrutalMathStats int
	Features        int
	Services        int
	Comparison      int
	CaseStudies     int
	ProcessSteps    int
	SocialLinks     int
	GalleryCreated  int
	GallerySkipped  int
}

// SeedService 把种子 JSON 写入数据库：图片墙按派生 ID 幂等 upsert，其余区块整体替换。
type SeedService struct {
	content *Content
	log     *logger.Logger
}

// NewSeedService returns a SeedService writing through content.
func NewSeedService(content *Content, log *logger.Logger) *SeedService {
	if log == nil {
		log = logger.Nop()
	}
	return &SeedService{content: content, log: log.With("component", "seed")}
}

// ParseSeed 解析种子 JSON。
func ParseSeed(data []byte) (*SeedDocument, error) {
	var doc SeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeed, err)
	}
	return &doc, nil
}

// ImportFile 读取并导入指定路径的种子文件。
func (s *SeedService) ImportFile(ctx context.Context, path string) (*SeedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	doc, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, doc)
}

// Import 在单个事务内写入全部区块，任何一步失败都会整体回滚。
func (s *SeedService) Import(ctx context.Context, doc *SeedDocument) (*SeedReport, error) {
	report := &SeedReport{}
	err := s.content.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := s.content.withDB(tx)
		steps := []struct {
			name string
			run  func(context.Context, *Content, *SeedDocument, *SeedReport) error
		}{
			{"hero", seedHero},
			{"stats", seedStats},
			{"brutal_math", seedBrutalMath},
			{"why_centaura", seedWhyCentaura},
			{"services", seedServices},
			{"comparison_table", seedComparisonTable},
			{"case_studies", seedCaseStudies},
			{"people_behind_strategy", seedPeople},
			{"why_we_built", seedWhyWeBuilt},
			{"process", seedProcess},
			{"final_word", seedFinalWord},
			{"footer", seedFooter},
			{"image_gallery", seedGallery},
		}
		for _, step := range steps {
			s.log.Info("seeding section", "section", step.name)
			if err := step.run(ctx, c, doc, report); err != nil {
				return fmt.Errorf("seed %s: %w", step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("seed import failed", "error", err)
		return nil, err
	}

	s.log.Info("seed import finished",
		"stats", report.Stats,
		"services", report.Services,
		"case_studies", report.CaseStudies,
		"gallery_created", report.GalleryCreated,
		"gallery_skipped", report.GallerySkipped,
	)
	return report, nil
}

func seedHero(ctx context.Context, c *Content, doc *SeedDocument, _ *SeedReport) error {
	h := doc.Hero
	_, err := c.Hero.Replace(ctx, &db.Hero{
		Title:           text(h.Title, ""),
		Subtitle:        textPtr(h.Subtitle, ""),
		BackgroundImage: textPtr(h.BackgroundImageURL, ""),
		CTAText:         textPtr(h.CTAText, ""),
		CTALink:         textPtr(h.CTAURL, DefaultCTAURL),
		Quote:           textPtr(h.Quote, ""),
		FoundersNames:   textPtr(h.Founders.Names, ""),
		FoundersTitle:   textPtr(h.Founders.Title, ""),
		FoundersImages:  listJSON(h.Founders.Images),
		Content:         datatypes.JSONMap{},
	})
	return err
}

func seedStats(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	if err := c.Stats.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, item := range doc.Stats {
		if _, err := c.Stats.Create(ctx, &db.Stat{
			Label:     text(item.Label, ""),
			Value:     text(item.Value, ""),
			SortOrder: idx,
		}); err != nil {
			return err
		}
		report.Stats++
	}
	return nil
}

func seedBrutalMath(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	b := doc.BrutalMath
	if _, err := c.BrutalMath.Replace(ctx, &db.BrutalMathSection{
		Title:       text(b.Title, ""),
		Subtitle:    textPtr(b.Subtitle, ""),
		ClosingText: textPtr(b.ClosingText, ""),
		Content:     datatypes.JSONMap{},
	}); err != nil {
		return err
	}

	if err := c.BrutalMathStats.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, item := range b.Statistics {
		if _, err := c.BrutalMathStats.Create(ctx, &db.BrutalMathStat{
			Value:       text(item.Value, ""),
			Description: text(item.Description, ""),
			SortOrder:   idx,
		}); err != nil {
			return err
		}
		report.BrutalMathStats++
	}
	return nil
}

func seedWhyCentaura(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	w := doc.WhyCentaura
	if _, err := c.WhyCentaura.Replace(ctx, &db.WhyCentauraSection{
		Label:    textPtr(w.Label, ""),
		Title:    text(w.Title, ""),
		ImageURL: textPtr(w.ImageURL, ""),
		CTAText:  textPtr(w.CTAText, ""),
		CTAURL:   textPtr(w.CTAURL, DefaultCTAURL),
		Content:  datatypes.JSONMap{},
	}); err != nil {
		return err
	}

	if err := c.WhyCentauraFeature.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, item := range w.Features {
		if _, err := c.WhyCentauraFeature.Create(ctx, &db.WhyCentauraFeature{
			Title:       text(item.Title, ""),
			Description: text(item.Description, ""),
			SortOrder:   idx,
		}); err != nil {
			return err
		}
		report.Features++
	}
	return nil
}

func seedServices(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	if err := c.Services.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, item := range doc.Services {
		if _, err := c.Services.Create(ctx, &db.Service{
			Label:       textPtr(item.Label, ""),
			Title:       text(item.Title, ""),
			Description: text(item.Description, ""),
			Outcome:     textPtr(item.Outcome, ""),
			SortOrder:   idx,
			Content:     datatypes.JSONMap{},
		}); err != nil {
			return err
		}
		report.Services++
	}
	return nil
}

func seedComparisonTable(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	t := doc.ComparisonTable
	table, err := c.ComparisonTable.Replace(ctx, &db.ComparisonTable{
		Title:    text(t.Title, ""),
		Subtitle: textPtr(t.Subtitle, ""),
		CTAText:  textPtr(t.CTAText, ""),
		CTAURL:   textPtr(t.CTAURL, DefaultCTAURL),
		Content:  datatypes.JSONMap{},
	})
	if err != nil {
		return err
	}

	for idx, item := range t.Features {
		if _, err := c.ComparisonFeatures.Create(ctx, &db.ComparisonTableFeature{
			ComparisonTableID: table.ID,
			Name:              text(item.Name, ""),
			Typical:           flag(item.Typical, false),
			Centaura:          flag(item.Centaura, true),
			SortOrder:         idx,
		}); err != nil {
			return err
		}
		report.Comparison++
	}
	return nil
}

func seedCaseStudies(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	if err := c.Portfolio.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, item := range doc.CaseStudies {
		if _, err := c.Portfolio.Create(ctx, &db.PortfolioProject{
			Title:       text(item.Title, ""),
			Description: text(item.Description, ""),
			ImageURL:    textPtr(item.ImageURL, ""),
			Category:    textPtr(item.Category, ""),
			IsActive:    true,
			SortOrder:   idx,
			Content:     datatypes.JSONMap{},
		}); err != nil {
			return err
		}
		report.CaseStudies++
	}
	return nil
}

func seedPeople(ctx context.Context, c *Content, doc *SeedDocument, _ *SeedReport) error {
	p := doc.PeopleBehindStrategy
	_, err := c.PeopleBehindStrategy.Replace(ctx, &db.PeopleBehindStrategy{
		Title:         text(p.Title, ""),
		Intro:         textPtr(p.Intro, ""),
		JaneName:      textPtr(p.Jane.Name, ""),
		JaneTitle:     textPtr(p.Jane.Title, ""),
		JaneImageURL:  textPtr(p.Jane.ImageURL, ""),
		JaneBio:       listJSON(p.Jane.Bio),
		AimunName:     textPtr(p.Aimun.Name, ""),
		AimunTitle:    textPtr(p.Aimun.Title, ""),
		AimunImageURL: textPtr(p.Aimun.ImageURL, ""),
		AimunBio:      listJSON(p.Aimun.Bio),
		CTAText:       textPtr(p.CTAText, ""),
		CTAURL:        textPtr(p.CTAURL, DefaultCTAURL),
		Content:       datatypes.JSONMap{},
	})
	return err
}

func seedWhyWeBuilt(ctx context.Context, c *Content, doc *SeedDocument, _ *SeedReport) error {
	w := doc.WhyWeBuilt
	_, err := c.WhyWeBuilt.Replace(ctx, &db.WhyWeBuiltSection{
		LeftTitle:    textPtr(w.Left.Title, ""),
		LeftContent:  listJSON(w.Left.Content),
		RightTitle:   textPtr(w.Right.Title, ""),
		RightContent: listJSON(w.Right.Content),
		Content:      datatypes.JSONMap{},
	})
	return err
}

func seedProcess(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	p := doc.Process
	section, err := c.Process.Replace(ctx, &db.ProcessSection{
		Label:   textPtr(p.Label, ""),
		Title:   text(p.Title, ""),
		CTAText: textPtr(p.CTAText, ""),
		CTAURL:  textPtr(p.CTAURL, DefaultCTAURL),
		Content: datatypes.JSONMap{},
	})
	if err != nil {
		return err
	}

	for idx, item := range p.Steps {
		if _, err := c.ProcessSteps.Create(ctx, &db.ProcessStep{
			ProcessSectionID: section.ID,
			Number:           text(item.Number, ""),
			Title:            text(item.Title, ""),
			Description:      text(item.Description, ""),
			SortOrder:        idx,
		}); err != nil {
			return err
		}
		report.ProcessSteps++
	}
	return nil
}

func seedFinalWord(ctx context.Context, c *Content, doc *SeedDocument, _ *SeedReport) error {
	f := doc.FinalWord
	_, err := c.FinalWord.Replace(ctx, &db.FinalWordSection{
		Label:           textPtr(f.Label, ""),
		Title:           text(f.Title, ""),
		Content:         listJSON(f.Content),
		BackgroundImage: textPtr(f.BackgroundImage, ""),
		CTAText:         textPtr(f.CTAText, ""),
		CTAURL:          textPtr(f.CTAURL, DefaultCTAURL),
	})
	return err
}

// seedFooter 保存完整的页脚 JSON，并从 contact.social_links 重建社交链接。
func seedFooter(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	footer := doc.Footer
	if footer == nil {
		footer = map[string]interface{}{}
	}

	copyright := ""
	if raw, ok := footer["copyright"]; ok && raw != nil {
		copyright = fmt.Sprint(raw)
	}
	if _, err := c.Footer.Replace(ctx, &db.Footer{
		CopyrightText: copyright,
		Content:       datatypes.JSONMap(footer),
	}); err != nil {
		return err
	}

	if err := c.SocialLinks.DeleteAll(ctx); err != nil {
		return err
	}
	for idx, link := range socialLinks(footer) {
		platform, _ := link["platform"].(string)
		url := DefaultCTAURL
		if raw, ok := link["url"].(string); ok {
			url = raw
		}
		if _, err := c.SocialLinks.Create(ctx, &db.SocialLink{
			Platform:  platform,
			URL:       &url,
			SortOrder: idx,
		}); err != nil {
			return err
		}
		report.SocialLinks++
	}
	return nil
}

func seedGallery(ctx context.Context, c *Content, doc *SeedDocument, report *SeedReport) error {
	for idx, image := range doc.ImageGallery {
		url := text(image.URL, "")
		_, created, err := c.Media.GetOrCreate(ctx, &db.MediaAsset{
			PublicID:     GalleryPublicID(idx, url),
			URL:          &url,
			SecureURL:    &url,
			WebURL:       &url,
			ThumbnailURL: &url,
			Folder:       db.GalleryFolder,
		})
		if err != nil {
			return err
		}
		if created {
			report.GalleryCreated++
		} else {
			report.GallerySkipped++
		}
	}
	return nil
}

// GalleryPublicID 由位置和 URL 的最后一段（去掉查询串）派生稳定的资源 ID。
func GalleryPublicID(index int, rawURL string) string {
	segments := strings.Split(rawURL, "/")
	name := segments[len(segments)-1]
	if cut := strings.Index(name, "?"); cut >= 0 {
		name = name[:cut]
	}
	return fmt.Sprintf("gallery_%d_%s", index, name)
}

func socialLinks(footer map[string]interface{}) []map[string]interface{} {
	contact, ok := footer["contact"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := contact["social_links"].([]interface{})
	if !ok {
		return nil
	}
	links := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if link, ok := item.(map[string]interface{}); ok {
			links = append(links, link)
		}
	}
	return links
}

func text(value *Text, fallback string) string {
	if value == nil {
		return fallback
	}
	return string(*value)
}

func textPtr(value *Text, fallback string) *string {
	s := text(value, fallback)
	return &s
}

func flag(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func listJSON(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(trimmed)
}
