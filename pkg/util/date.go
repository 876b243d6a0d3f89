package util

import (
	"strings"
	"time"
)

// dateTpl maps placeholders to Go layout parts. Longer placeholders come
// first so YYYY is never read as two YY.
var dateTpl = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDate formats t with a template such as "YYYY-MM-DD hh:mm:ss".
// The zero time formats as "".
//
//	FormatDate(t, "DD/MM/YYYY") // "10/11/2023"
func FormatDate(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTpl.Replace(tpl))
}
