// Package markdown 將 AI 產生的食譜內容轉為 HTML。
//
// 只支援逐行判斷的子集：標題、項目、編號步驟、空行與段落。
// 不處理巢狀結構，也不跳脫 HTML。
package markdown

import (
	"html/template"
	"regexp"
	"strings"
	"unicode/utf8"
)

// NumberedMode 編號步驟的呈現方式
type NumberedMode int

const (
	// NumberedParagraph 與一般段落相同
	NumberedParagraph NumberedMode = iota
	// NumberedListItem 整行放進 <li>
	NumberedListItem
	// NumberedSplit 拆成編號與內容兩個 span，需要 "N. " 格式
	NumberedSplit
)

// Style 呈現樣式
type Style struct {
	HeadingTag string
	Numbered   NumberedMode
	// BlankLine 空白行輸出的 HTML，空字串時輸出空段落
	BlankLine string
	// MaxLines 只處理前幾行，0 表示不限
	MaxLines int
}

// 預設樣式
var (
	Display = Style{HeadingTag: "h3", Numbered: NumberedListItem, BlankLine: "<br/>"}
	Card    = Style{HeadingTag: "h4", Numbered: NumberedParagraph, MaxLines: 8}
	Shared  = Style{HeadingTag: "h2", Numbered: NumberedSplit}
)

var (
	numberedLine = regexp.MustCompile(`^\d+\.`)
	splitLine    = regexp.MustCompile(`^(\d+)\. (.*)$`)
)

// Render 依樣式轉換內容
func Render(content string, style Style) template.HTML {
	lines := strings.Split(content, "\n")
	if style.MaxLines > 0 && len(lines) > style.MaxLines {
		lines = lines[:style.MaxLines]
	}

	heading := style.HeadingTag
	if heading == "" {
		heading = "h3"
	}

	var b strings.Builder
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		renderLine(&b, line, heading, style)
	}
	return template.HTML(b.String())
}

func renderLine(b *strings.Builder, line, heading string, style Style) {
	switch {
	case strings.HasPrefix(line, "## "):
		wrap(b, heading, line[3:])
		return
	case strings.HasPrefix(line, "- "):
		wrap(b, "li", line[2:])
		return
	}

	switch style.Numbered {
	case NumberedListItem:
		if numberedLine.MatchString(line) {
			wrap(b, "li", line)
			return
		}
	case NumberedSplit:
		if m := splitLine.FindStringSubmatch(line); m != nil {
			b.WriteString(`<div class="step"><span class="step-number">`)
			b.WriteString(m[1])
			b.WriteString(`.</span><span>`)
			b.WriteString(m[2])
			b.WriteString(`</span></div>`)
			return
		}
	}

	if style.BlankLine != "" && strings.TrimSpace(line) == "" {
		b.WriteString(style.BlankLine)
		return
	}
	wrap(b, "p", line)
}

func wrap(b *strings.Builder, tag, inner string) {
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(">")
	b.WriteString(inner)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
}

// Preview 取前 n 個字元並加上 "..."
func Preview(content string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(content) > n {
		content = string([]rune(content)[:n])
	}
	return content + "..."
}
