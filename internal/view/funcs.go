package view

import (
	"encoding/json"
	"html/template"
	"strings"
	"time"
)

// FuncMap 返回后台模板使用的全部函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"deref":      Deref,
		"markdown":   RenderMarkdown,
		"excerpt":    Excerpt,
		"lines":      JoinLines,
		"prettyJSON": PrettyJSON,
		"socialIcon": func(platform string) template.HTML {
			return template.HTML(SocialIconSVG(platform))
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
	}
}

// Deref renders a nullable string as its value or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// JoinLines 把 JSON 字符串数组还原为按行分隔的文本，供 textarea 编辑。
func JoinLines(raw []byte) string {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	return strings.Join(items, "\n")
}

// PrettyJSON indents raw JSON for display; invalid input renders as "[]".
func PrettyJSON(raw []byte) string {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil || value == nil {
		return "[]"
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}
