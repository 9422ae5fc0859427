package report

import (
	"encoding/csv"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
)

// Excel で文字化けしないように先頭に付ける
const utf8BOM = "\ufeff"

// FormatCell は数値をカンマ区切り (小数点以下最大 2 桁) にする。文字列はそのまま
func FormatCell(c internal.Cell) string {
	if c.IsText {
		return c.Text
	}
	return humanize.CommafWithDigits(c.Number, 2)
}

func formatCells(cells []internal.Cell) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		out = append(out, FormatCell(c))
	}
	return out
}

// Records はレポートを CSV の行に展開する。
// 内訳の行は [親の行名, 項目名, 値...] になる
func Records(rep internal.Report) [][]string {
	var records [][]string
	for _, row := range rep.Rows {
		switch row.Kind {
		case internal.RowPlaceholder:
			records = append(records, []string{row.Name, ""})
		case internal.RowNested:
			if len(row.Children) == 0 {
				records = append(records, []string{row.Name})
				continue
			}
			for _, child := range row.Children {
				records = append(records, append([]string{row.Name, child.Name}, formatCells(child.Cells)...))
			}
		default:
			records = append(records, append([]string{row.Name}, formatCells(row.Cells)...))
		}
	}
	return records
}

// WriteCSV は BOM 付き UTF-8 の CSV を書き出す
func WriteCSV(w io.Writer, rep internal.Report) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return eris.Wrap(err, "CSV の書き込みに失敗しました")
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(Records(rep)); err != nil {
		return eris.Wrap(err, "CSV の書き込みに失敗しました")
	}
	return nil
}
