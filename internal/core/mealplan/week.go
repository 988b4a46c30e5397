// Package mealplan 計算週計畫的日期區間並排出餐點表格。
package mealplan

import (
	"time"
)

// DateLayout 後端使用的日期格式
const DateLayout = "2006-01-02"

// LabelLayout 表格欄位標題格式，例如 "Mon, Jan 2"
const LabelLayout = "Mon, Jan 2"

// Week 週一到週日的一週，Anchor 為導覽用的目前日期
type Week struct {
	Anchor time.Time
	Start  time.Time
	End    time.Time
}

// WeekOf 回傳包含 anchor 的週，週一開始
func WeekOf(anchor time.Time) Week {
	day := startOfDay(anchor)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Week{
		Anchor: anchor,
		Start:  start,
		End:    start.AddDate(0, 0, 6),
	}
}

// Range 查詢用的起訖日期
func (w Week) Range() (start, end string) {
	return w.Start.Format(DateLayout), w.End.Format(DateLayout)
}

// Days 一週七天，依序
func (w Week) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// Prev 上一週
func (w Week) Prev() Week {
	return WeekOf(w.Anchor.AddDate(0, 0, -7))
}

// Next 下一週
func (w Week) Next() Week {
	return WeekOf(w.Anchor.AddDate(0, 0, 7))
}

// Today 回到包含 now 的週
func Today(now time.Time) Week {
	return WeekOf(now)
}

// ParseAnchor 解析網址上的日期，失敗時使用 now
func ParseAnchor(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	t, err := time.ParseInLocation(DateLayout, s, now.Location())
	if err != nil {
		return now
	}
	return t
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
