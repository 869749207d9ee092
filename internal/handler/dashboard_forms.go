package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// NormalizeURL 把空字符串与占位符 "#" 视为未设置。
func NormalizeURL(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == service.DefaultCTAURL {
		return nil
	}
	return &trimmed
}

// SplitLines 按换行拆分文本，去掉空行。
func SplitLines(raw string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// ParseMenuItems 解析导航菜单 JSON，必须是数组，否则返回空数组。
func ParseMenuItems(raw string) datatypes.JSON {
	var items []interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil || items == nil {
		return datatypes.JSON("[]")
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}

func linesJSON(lines []string) datatypes.JSON {
	encoded, err := json.Marshal(lines)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}

func formText(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

func formOptional(c *gin.Context, key string) *string {
	value := formText(c, key)
	if value == "" {
		return nil
	}
	return &value
}

func formSortOrder(c *gin.Context, verr *service.ValidationError) int {
	raw := formText(c, "sort_order")
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add("sort_order", "A valid integer is required.")
		return 0
	}
	return value
}

func seoPlaceholder() *db.SEO {
	return &db.SEO{Title: "Centaura Group", Description: "Strategic consultancy for exit planning"}
}

func navigationPlaceholder() *db.Navigation {
	logo := "Centaura"
	return &db.Navigation{LogoText: &logo, MenuItems: datatypes.JSON("[]")}
}

func heroPlaceholder() *db.Hero {
	return &db.Hero{Title: "THE EXIT YOU DESERVE.", FoundersImages: datatypes.JSON("[]"), Content: datatypes.JSONMap{}}
}

func footerPlaceholder() *db.Footer {
	return &db.Footer{CopyrightText: "© 2025 Centaura Group. All Rights Reserved.", Content: datatypes.JSONMap{}}
}

func finalWordPlaceholder() *db.FinalWordSection {
	label := "FINAL WORD"
	return &db.FinalWordSection{
		Label:   &label,
		Title:   "The Business You Build Determines the Options You Have",
		Content: datatypes.JSON("[]"),
	}
}

func applySEOForm(c *gin.Context, item *db.SEO, _ *service.ValidationError) {
	item.Title = formText(c, "title")
	item.Description = formText(c, "description")
	item.Keywords = formText(c, "keywords")
	item.OGImage = NormalizeURL(c.PostForm("og_image"))
	item.OGTitle = formOptional(c, "og_title")
	item.OGDescription = formOptional(c, "og_description")
}

func applyNavigationForm(c *gin.Context, item *db.Navigation, _ *service.ValidationError) {
	item.LogoText = formOptional(c, "logo_text")
	item.LogoImageURL = NormalizeURL(c.PostForm("logo_image_url"))
	item.MenuItems = ParseMenuItems(c.PostForm("menu_items"))
}

func applyHeroForm(c *gin.Context, item *db.Hero, _ *service.ValidationError) {
	item.Title = formText(c, "title")
	item.Subtitle = formOptional(c, "subtitle")
	item.BackgroundImage = NormalizeURL(c.PostForm("background_image"))
	item.CTAText = formOptional(c, "cta_text")
	item.CTALink = NormalizeURL(c.PostForm("cta_link"))
	item.Quote = formOptional(c, "quote")
	item.FoundersNames = formOptional(c, "founders_names")
	item.FoundersTitle = formOptional(c, "founders_title")
}

func applyFooterForm(c *gin.Context, item *db.Footer, _ *service.ValidationError) {
	item.CopyrightText = formText(c, "copyright_text")
}

func applyFinalWordForm(c *gin.Context, item *db.FinalWordSection, _ *service.ValidationError) {
	item.Label = formOptional(c, "label")
	item.Title = formText(c, "title")
	item.Content = linesJSON(SplitLines(c.PostForm("content")))
	item.BackgroundImage = NormalizeURL(c.PostForm("background_image"))
	item.CTAText = formOptional(c, "cta_text")
	item.CTAURL = NormalizeURL(c.PostForm("cta_url"))
}

func applyStatForm(c *gin.Context, item *db.Stat, verr *service.ValidationError) {
	item.Label = formText(c, "label")
	item.Value = formText(c, "value")
	item.Icon = formOptional(c, "icon")
	item.SortOrder = formSortOrder(c, verr)
}

func applyServiceForm(c *gin.Context, item *db.Service, verr *service.ValidationError) {
	item.Label = formOptional(c, "label")
	item.Title = formText(c, "title")
	item.Description = formText(c, "description")
	item.Outcome = formOptional(c, "outcome")
	item.Icon = formOptional(c, "icon")
	item.ImageURL = NormalizeURL(c.PostForm("image_url"))
	item.SortOrder = formSortOrder(c, verr)
}
