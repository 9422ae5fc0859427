package report

import (
	"io"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

const sheetName = "指標"

// WriteXLSX はレポートを 1 シートの Excel ファイルとして書き出す。
// 数値は数値セル、区切り行は太字
func WriteXLSX(w io.Writer, rep internal.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return eris.Wrap(err, "シート名を設定できませんでした")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return eris.Wrap(err, "スタイルを作成できませんでした")
	}

	line := 1
	if rep.CompanyName != "" {
		if err := setRow(f, line, []interface{}{rep.CompanyName, rep.EDINETCode, rep.DocID}); err != nil {
			return err
		}
		line++
	}
	for _, row := range rep.Rows {
		switch row.Kind {
		case internal.RowPlaceholder:
			if err := setRow(f, line, []interface{}{row.Name}); err != nil {
				return err
			}
			if err := f.SetRowStyle(sheetName, line, line, headerStyle); err != nil {
				return eris.Wrap(err, "スタイルを設定できませんでした")
			}
			line++
		case internal.RowNested:
			for _, child := range row.Children {
				if err := setRow(f, line, append([]interface{}{row.Name, child.Name}, cellValues(child.Cells)...)); err != nil {
					return err
				}
				line++
			}
		default:
			if err := setRow(f, line, append([]interface{}{row.Name}, cellValues(row.Cells)...)); err != nil {
				return err
			}
			line++
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return eris.Wrap(err, "列幅を設定できませんでした")
	}
	if err := f.SetColWidth(sheetName, "B", "D", 18); err != nil {
		return eris.Wrap(err, "列幅を設定できませんでした")
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "Excel ファイルの書き込みに失敗しました")
	}
	return nil
}

func cellValues(cells []internal.Cell) []interface{} {
	values := make([]interface{}, 0, len(cells))
	for _, c := range cells {
		if c.IsText {
			values = append(values, c.Text)
		} else {
			values = append(values, c.Number)
		}
	}
	return values
}

func setRow(f *excelize.File, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return eris.Wrap(err, "セル名を作成できませんでした")
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return eris.Wrapf(err, "%d 行目を書き込めませんでした", line)
	}
	return nil
}
