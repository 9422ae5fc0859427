package filing

import (
	"strconv"
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"golang.org/x/text/width"
)

// 全角英数字は半角に揃えてから比較する (ＤＥＩ / DEI の表記揺れ)
const (
	companyNameLabel   = "会社名、表紙"
	edinetCodeLabel    = "EDINETコード、DEI"
	fiscalYearEndLabel = "当事業年度終了日、DEI"
)

// Meta は表紙・DEI の情報。相対年度が「提出日時点」なので Prune 前の行から読む
type Meta struct {
	CompanyName   string
	EDINETCode    string
	FiscalYearEnd string
}

func ReadMeta(rows []internal.DisclosureRow) Meta {
	var meta Meta
	for _, row := range rows {
		v := strings.TrimSpace(row.Value)
		switch width.Fold.String(row.ItemLabel) {
		case companyNameLabel:
			if meta.CompanyName == "" {
				meta.CompanyName = v
			}
		case edinetCodeLabel:
			if meta.EDINETCode == "" {
				meta.EDINETCode = v
			}
		case fiscalYearEndLabel:
			if meta.FiscalYearEnd == "" {
				meta.FiscalYearEnd = v
			}
		}
	}
	return meta
}

// FiscalYear は当事業年度終了日 (2024-03-31) の先頭 4 文字を年として返す
func (m Meta) FiscalYear() (int, bool) {
	if len(m.FiscalYearEnd) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(m.FiscalYearEnd[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}
