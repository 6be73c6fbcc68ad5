package dates

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout は日付のみの項目の入出力形式です。
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"02/01/2006",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseDate は暦日を解釈し、UTC の 0 時として返します。
func ParseDate(raw string) (time.Time, error) {
	t, err := parseAny(raw, dateLayouts)
	if err != nil {
		return time.Time{}, err
	}
	return TruncateDate(t), nil
}

// ParseDateTime は日時を解釈します。タイムゾーンを持たない値は UTC とみなします。
func ParseDateTime(raw string) (time.Time, error) {
	t, err := parseAny(raw, dateTimeLayouts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// TruncateDate は時刻成分を落とした UTC の日付を返します。
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseAny(raw string, layouts []string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("dates: empty value")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dates: unsupported format %q", trimmed)
}
