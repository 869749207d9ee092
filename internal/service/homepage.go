package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/centaura/cms/internal/db"
	"gorm.io/datatypes"
)

// DefaultCTAURL 是缺省的按钮链接
const DefaultCTAURL = "#"

// Section wraps a singleton section view. An absent section encodes as {}.
type Section[T any] struct {
	Value *T
}

// Present reports whether the section row exists.
func (s Section[T]) Present() bool {
	return s.Value != nil
}

func (s Section[T]) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.Value)
}

// Homepage 是聚合接口的完整响应，键与种子 JSON 的结构一致。
type Homepage struct {
	Hero                 Section[HeroView]                 `json:"hero"`
	Stats                []StatView                        `json:"stats"`
	BrutalMath           Section[BrutalMathView]           `json:"brutal_math"`
	WhyCentaura          Section[WhyCentauraView]          `json:"why_centaura"`
	Services             []ServiceView                     `json:"services"`
	ComparisonTable      Section[ComparisonTableView]      `json:"comparison_table"`
	CaseStudies          []CaseStudyView                   `json:"case_studies"`
	PeopleBehindStrategy Section[PeopleBehindStrategyView] `json:"people_behind_strategy"`
	WhyWeBuilt           Section[WhyWeBuiltView]           `json:"why_we_built"`
	Process              Section[ProcessView]              `json:"process"`
	FinalWord            Section[FinalWordView]            `json:"final_word"`
	Footer               map[string]interface{}            `json:"footer"`
	ImageGallery         []GalleryImageView                `json:"image_gallery"`
}

type HeroView struct {
	Title              string       `json:"title"`
	Subtitle           string       `json:"subtitle"`
	CTAText            string       `json:"cta_text"`
	CTAURL             string       `json:"cta_url"`
	BackgroundImageURL string       `json:"background_image_url"`
	Quote              string       `json:"quote"`
	Founders           FoundersView `json:"founders"`
}

type FoundersView struct {
	Names  string          `json:"names"`
	Title  string          `json:"title"`
	Images json.RawMessage `json:"images"`
}

type StatView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type BrutalMathView struct {
	Title       string               `json:"title"`
	Subtitle    string               `json:"subtitle"`
	Statistics  []BrutalMathStatView `json:"statistics"`
	ClosingText string               `json:"closing_text"`
}

type BrutalMathStatView struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

type WhyCentauraView struct {
	Label    string           `json:"label"`
	Title    string           `json:"title"`
	ImageURL string           `json:"image_url"`
	Features []TitledTextView `json:"features"`
	CTAText  string           `json:"cta_text"`
	CTAURL   string           `json:"cta_url"`
}

type TitledTextView struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ServiceView struct {
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
}

type ComparisonTableView struct {
	Title    string                  `json:"title"`
	Subtitle string                  `json:"subtitle"`
	Features []ComparisonFeatureView `json:"features"`
	CTAText  string                  `json:"cta_text"`
	CTAURL   string                  `json:"cta_url"`
}

type ComparisonFeatureView struct {
	Name     string `json:"name"`
	Typical  bool   `json:"typical"`
	Centaura bool   `json:"centaura"`
}

type CaseStudyView struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type PeopleBehindStrategyView struct {
	Title   string     `json:"title"`
	Intro   string     `json:"intro"`
	Jane    PersonView `json:"jane"`
	Aimun   PersonView `json:"aimun"`
	CTAText string     `json:"cta_text"`
	CTAURL  string     `json:"cta_url"`
}

type PersonView struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	ImageURL string          `json:"image_url"`
	Bio      json.RawMessage `json:"bio"`
}

type WhyWeBuiltView struct {
	Left  ColumnView `json:"left"`
	Right ColumnView `json:"right"`
}

type ColumnView struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

type ProcessView struct {
	Label   string            `json:"label"`
	Title   string            `json:"title"`
	Steps   []ProcessStepView `json:"steps"`
	CTAText string            `json:"cta_text"`
	CTAURL  string            `json:"cta_url"`
}

type ProcessStepView struct {
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type FinalWordView struct {
	Label           string          `json:"label"`
	Title           string          `json:"title"`
	Content         json.RawMessage `json:"content"`
	BackgroundImage string          `json:"background_image"`
	CTAText         string          `json:"cta_text"`
	CTAURL          string          `json:"cta_url"`
}

type GalleryImageView struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// HomepageService 组装首页聚合数据；只读，不缓存，每次请求都重新查询。
type HomepageService struct {
	content *Content
}

// NewHomepageService returns a HomepageService reading from content.
func NewHomepageService(content *Content) *HomepageService {
	return &HomepageService{content: content}
}

// Build 依次读取各区块；缺失的区块使用空默认值，只有存储不可用时才返回错误。
func (s *HomepageService) Build(ctx context.Context) (*Homepage, error) {
	c := s.content
	page := &Homepage{Footer: map[string]interface{}{}}

	hero, err := optional(c.Hero.Current(ctx))
	if err != nil {
		return nil, err
	}
	if hero != nil {
		page.Hero.Value = heroView(hero)
	}

	stats, err := c.Stats.List(ctx)
	if err != nil {
		return nil, err
	}
	page.Stats = make([]StatView, 0, len(stats))
	for _, stat := range stats {
		page.Stats = append(page.Stats, StatView{Label: stat.Label, Value: stat.Value})
	}

	if page.BrutalMath.Value, err = s.brutalMath(ctx); err != nil {
		return nil, err
	}
	if page.WhyCentaura.Value, err = s.whyCentaura(ctx); err != nil {
		return nil, err
	}

	services, err := c.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	page.Services = make([]ServiceView, 0, len(services))
	for _, item := range services {
		page.Services = append(page.Services, ServiceView{
			Label:       deref(item.Label),
			Title:       item.Title,
			Description: item.Description,
			Outcome:     deref(item.Outcome),
		})
	}

	if page.ComparisonTable.Value, err = s.comparisonTable(ctx); err != nil {
		return nil, err
	}

	projects, err := c.Portfolio.ListWhere(ctx, "is_active = ?", true)
	if err != nil {
		return nil, err
	}
	page.CaseStudies = make([]CaseStudyView, 0, len(projects))
	for _, project := range projects {
		page.CaseStudies = append(page.CaseStudies, CaseStudyView{
			Category:    deref(project.Category),
			Title:       project.Title,
			Description: project.Description,
			ImageURL:    deref(project.ImageURL),
		})
	}

	people, err := optional(c.PeopleBehindStrategy.Current(ctx))
	if err != nil {
		return nil, err
	}
	if people != nil {
		page.PeopleBehindStrategy.Value = peopleView(people)
	}

	whyBuilt, err := optional(c.WhyWeBuilt.Current(ctx))
	if err != nil {
		return nil, err
	}
	if whyBuilt != nil {
		page.WhyWeBuilt.Value = &WhyWeBuiltView{
			Left:  ColumnView{Title: deref(whyBuilt.LeftTitle), Content: jsonList(whyBuilt.LeftContent)},
			Right: ColumnView{Title: deref(whyBuilt.RightTitle), Content: jsonList(whyBuilt.RightContent)},
		}
	}

	if page.Process.Value, err = s.process(ctx); err != nil {
		return nil, err
	}

	finalWord, err := optional(c.FinalWord.Current(ctx))
	if err != nil {
		return nil, err
	}
	if finalWord != nil {
		page.FinalWord.Value = &FinalWordView{
			Label:           deref(finalWord.Label),
			Title:           finalWord.Title,
			Content:         jsonList(finalWord.Content),
			BackgroundImage: deref(finalWord.BackgroundImage),
			CTAText:         deref(finalWord.CTAText),
			CTAURL:          ctaURL(finalWord.CTAURL),
		}
	}

	footer, err := optional(c.Footer.Current(ctx))
	if err != nil {
		return nil, err
	}
	if footer != nil {
		for key, value := range footer.Content {
			page.Footer[key] = value
		}
		page.Footer["copyright"] = footer.CopyrightText
	}

	gallery, err := c.Media.ListByFolder(ctx, db.GalleryFolder, GalleryLimit)
	if err != nil {
		return nil, err
	}
	page.ImageGallery = make([]GalleryImageView, 0, len(gallery))
	for _, asset := range gallery {
		page.ImageGallery = append(page.ImageGallery, GalleryImageView{URL: deref(asset.URL), Alt: asset.PublicID})
	}

	return page, nil
}

func (s *HomepageService) brutalMath(ctx context.Context) (*BrutalMathView, error) {
	section, err := optional(s.content.BrutalMath.Current(ctx))
	if err != nil || section == nil {
		return nil, err
	}
	stats, err := s.content.BrutalMathStats.List(ctx)
	if err != nil {
		return nil, err
	}

	view := &BrutalMathView{
		Title:       section.Title,
		Subtitle:    deref(section.Subtitle),
		Statistics:  make([]BrutalMathStatView, 0, len(stats)),
		ClosingText: deref(section.ClosingText),
	}
	for _, stat := range stats {
		view.Statistics = append(view.Statistics, BrutalMathStatView{Value: stat.Value, Description: stat.Description})
	}
	return view, nil
}

func (s *HomepageService) whyCentaura(ctx context.Context) (*WhyCentauraView, error) {
	section, err := optional(s.content.WhyCentaura.Current(ctx))
	if err != nil || section == nil {
		return nil, err
	}
	features, err := s.content.WhyCentauraFeature.List(ctx)
	if err != nil {
		return nil, err
	}

	view := &WhyCentauraView{
		Label:    deref(section.Label),
		Title:    section.Title,
		ImageURL: deref(section.ImageURL),
		Features: make([]TitledTextView, 0, len(features)),
		CTAText:  deref(section.CTAText),
		CTAURL:   ctaURL(section.CTAURL),
	}
	for _, feature := range features {
		view.Features = append(view.Features, TitledTextView{Title: feature.Title, Description: feature.Description})
	}
	return view, nil
}

func (s *HomepageService) comparisonTable(ctx context.Context) (*ComparisonTableView, error) {
	table, err := optional(s.content.ComparisonTable.Current(ctx))
	if err != nil || table == nil {
		return nil, err
	}
	features, err := s.content.ComparisonFeatures.ListWhere(ctx, "comparison_table_id = ?", table.ID)
	if err != nil {
		return nil, err
	}

	view := &ComparisonTableView{
		Title:    table.Title,
		Subtitle: deref(table.Subtitle),
		Features: make([]ComparisonFeatureView, 0, len(features)),
		CTAText:  deref(table.CTAText),
		CTAURL:   ctaURL(table.CTAURL),
	}
	for _, feature := range features {
		view.Features = append(view.Features, ComparisonFeatureView{
			Name:     feature.Name,
			Typical:  feature.Typical,
			Centaura: feature.Centaura,
		})
	}
	return view, nil
}

func (s *HomepageService) process(ctx context.Context) (*ProcessView, error) {
	section, err := optional(s.content.Process.Current(ctx))
	if err != nil || section == nil {
		return nil, err
	}
	steps, err := s.content.ProcessSteps.ListWhere(ctx, "process_section_id = ?", section.ID)
	if err != nil {
		return nil, err
	}

	view := &ProcessView{
		Label:   deref(section.Label),
		Title:   section.Title,
		Steps:   make([]ProcessStepView, 0, len(steps)),
		CTAText: deref(section.CTAText),
		CTAURL:  ctaURL(section.CTAURL),
	}
	for _, step := range steps {
		view.Steps = append(view.Steps, ProcessStepView{Number: step.Number, Title: step.Title, Description: step.Description})
	}
	return view, nil
}

func heroView(hero *db.Hero) *HeroView {
	return &HeroView{
		Title:              hero.Title,
		Subtitle:           deref(hero.Subtitle),
		CTAText:            deref(hero.CTAText),
		CTAURL:             ctaURL(hero.CTALink),
		BackgroundImageURL: deref(hero.BackgroundImage),
		Quote:              deref(hero.Quote),
		Founders: FoundersView{
			Names:  deref(hero.FoundersNames),
			Title:  deref(hero.FoundersTitle),
			Images: jsonList(hero.FoundersImages),
		},
	}
}

func peopleView(people *db.PeopleBehindStrategy) *PeopleBehindStrategyView {
	return &PeopleBehindStrategyView{
		Title: people.Title,
		Intro: deref(people.Intro),
		Jane: PersonView{
			Name:     deref(people.JaneName),
			Title:    deref(people.JaneTitle),
			ImageURL: deref(people.JaneImageURL),
			Bio:      jsonList(people.JaneBio),
		},
		Aimun: PersonView{
			Name:     deref(people.AimunName),
			Title:    deref(people.AimunTitle),
			ImageURL: deref(people.AimunImageURL),
			Bio:      jsonList(people.AimunBio),
		},
		CTAText: deref(people.CTAText),
		CTAURL:  ctaURL(people.CTAURL),
	}
}

// optional 把 ErrNotFound 转成 nil 结果。
func optional[T any](item *T, err error) (*T, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return item, err
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// ctaURL 未设置（NULL）的按钮链接渲染为 "#"，空字符串原样保留。
func ctaURL(value *string) string {
	if value == nil {
		return DefaultCTAURL
	}
	return *value
}

func jsonList(raw datatypes.JSON) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(trimmed)
}
