package filing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var moneyUnitPattern = regexp.MustCompile(`単位\s*[:：]\s*(百万円|千円|円)`)

const emptyCell = "－"

// FlattenTextBlock はテキストブロックの値を行単位のテキストにする。
// HTML の表であれば <tr> ごとに 1 行、セルは空白区切りで空のセルは「－」
func FlattenTextBlock(block string) string {
	if !strings.Contains(block, "<") {
		return block
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(block))
	if err != nil {
		return block
	}
	rows := doc.Find("tr")
	if rows.Length() == 0 {
		return doc.Text()
	}
	lines := make([]string, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		filled := false
		tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
			text := strings.Join(strings.Fields(td.Text()), "")
			if text == "" {
				// 列がずれないよう空のセルは「－」で埋める
				text = emptyCell
			} else {
				filled = true
			}
			cells = append(cells, text)
		})
		if filled {
			lines = append(lines, strings.Join(cells, " "))
		}
	})
	return strings.Join(lines, "\n")
}

// MoneyUnit は「(単位：百万円)」などの表記から金額の単位を返す。見つからなければ ""
func MoneyUnit(block string) string {
	m := moneyUnitPattern.FindStringSubmatch(FlattenTextBlock(block))
	if m == nil {
		return ""
	}
	return m[1]
}
