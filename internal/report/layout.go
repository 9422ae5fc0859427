package report

import (
	"strconv"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/aggregate"
	"github.com/joe-black-jb/compass-metrics/internal/metrics"
	"github.com/rotisserie/eris"
)

// 前期の列を持たない行の前期側
const noValue = "-"

// RowSpec はレポートの 1 行の定義。
// Cells も Items も nil なら区切り行
type RowSpec struct {
	Name  string
	Cells func(f *Figures) []internal.Cell
	Items func(f *Figures) []internal.ReportRow
}

func header(name string) RowSpec {
	return RowSpec{Name: name}
}

func pair(name string, get func(f *Figures) internal.PeriodPair) RowSpec {
	return RowSpec{Name: name, Cells: func(f *Figures) []internal.Cell {
		return internal.Pair(get(f))
	}}
}

// 当期のみの数値
func current(name string, get func(f *Figures) float64) RowSpec {
	return RowSpec{Name: name, Cells: func(f *Figures) []internal.Cell {
		return []internal.Cell{internal.Text(noValue), internal.Num(get(f))}
	}}
}

// 当期のみの文字列
func currentText(name string, get func(f *Figures) string) RowSpec {
	return RowSpec{Name: name, Cells: func(f *Figures) []internal.Cell {
		return []internal.Cell{internal.Text(noValue), internal.Text(get(f))}
	}}
}

func ratios(name string, a, b func(f *Figures) internal.PeriodPair) RowSpec {
	return RowSpec{Name: name, Cells: func(f *Figures) []internal.Cell {
		return metrics.RatioPair(a(f), b(f))
	}}
}

func roic(name string, income func(f *Figures) internal.PeriodPair) RowSpec {
	return RowSpec{Name: name, Cells: func(f *Figures) []internal.Cell {
		cells := metrics.ROIC(income(f), f.InvestedCapital)
		return cells[:]
	}}
}

func breakdown(name string, get func(f *Figures) aggregate.Aggregate) RowSpec {
	return RowSpec{Name: name, Items: func(f *Figures) []internal.ReportRow {
		agg := get(f)
		items := make([]internal.ReportRow, 0, len(agg.Items))
		for _, item := range agg.Items {
			items = append(items, internal.ReportRow{
				Name:  item.Label,
				Kind:  internal.RowValues,
				Cells: internal.Pair(item.Values),
			})
		}
		return items
	}}
}

func yearCells(f *Figures) []internal.Cell {
	if f.Year == 0 {
		return []internal.Cell{internal.Text(noValue), internal.Text(noValue)}
	}
	return []internal.Cell{
		internal.Text(strconv.Itoa(f.Year - 1)),
		internal.Text(strconv.Itoa(f.Year)),
	}
}

func moneyUnit(f *Figures) string {
	if f.MoneyUnit == "" {
		return noValue
	}
	return f.MoneyUnit
}

// DefaultLayout はレポートの行と順序
func DefaultLayout() []RowSpec {
	return []RowSpec{
		{Name: "年", Cells: yearCells},
		currentText("単位", moneyUnit),
		pair("売上高", func(f *Figures) internal.PeriodPair { return f.Summary.Revenues }),
		currentText("売上高成長率", func(f *Figures) string { return f.Summary.RevenueGrowthRate }),
		pair("売上原価", func(f *Figures) internal.PeriodPair { return f.Summary.CostOfSales }),
		pair("売上総利益", func(f *Figures) internal.PeriodPair { return f.Summary.GrossProfit }),
		ratios("売上総利益率",
			func(f *Figures) internal.PeriodPair { return f.Summary.GrossProfit },
			func(f *Figures) internal.PeriodPair { return f.Summary.Revenues }),
		pair("販売費及び一般管理費", func(f *Figures) internal.PeriodPair { return f.Summary.SGA }),
		pair("営業利益", func(f *Figures) internal.PeriodPair { return f.Summary.OperatingProfits }),
		ratios("営業利益率",
			func(f *Figures) internal.PeriodPair { return f.Summary.OperatingProfits },
			func(f *Figures) internal.PeriodPair { return f.Summary.Revenues }),
		currentText("営業利益成長率", func(f *Figures) string { return f.Summary.OperatingProfitGrowthRate }),
		pair("NOPAT(営業利益x(1-0.3))", func(f *Figures) internal.PeriodPair { return f.Summary.NOPAT }),
		pair("減価償却費", func(f *Figures) internal.PeriodPair { return f.Summary.Depreciation }),
		current("設備投資", func(f *Figures) float64 { return f.Summary.CapitalExpenditure }),

		header("【正味運転資本】"),
		breakdown("売上債権", func(f *Figures) aggregate.Aggregate { return f.WorkingCapital.Receivables }),
		pair("売上債権合計", func(f *Figures) internal.PeriodPair { return f.WorkingCapital.Receivables.Sum }),
		breakdown("棚卸資産", func(f *Figures) aggregate.Aggregate { return f.WorkingCapital.Inventories }),
		pair("棚卸資産合計", func(f *Figures) internal.PeriodPair { return f.WorkingCapital.Inventories.Sum }),
		breakdown("仕入債務", func(f *Figures) aggregate.Aggregate { return f.WorkingCapital.Payables }),
		pair("仕入債務合計", func(f *Figures) internal.PeriodPair { return f.WorkingCapital.Payables.Sum }),
		pair("正味運転資本", func(f *Figures) internal.PeriodPair { return f.WorkingCapital.Net }),
		current("正味運転資本の増減", func(f *Figures) float64 { return f.WorkingCapital.Fluctuation }),

		header("【有利子負債】"),
		breakdown("有利子負債", func(f *Figures) aggregate.Aggregate { return f.Debt }),
		pair("有利子負債合計", func(f *Figures) internal.PeriodPair { return f.Debt.Sum }),
		current("債権者コスト", func(f *Figures) float64 { return f.DebtCost }),

		header("【その他】"),
		pair("株主資本", func(f *Figures) internal.PeriodPair { return f.ShareholdersEquity }),
		current("株式数(自社株控除後)", func(f *Figures) float64 { return f.Shares }),

		header("【遊休資産】"),
		pair("投資有価証券", func(f *Figures) internal.PeriodPair { return f.InvestmentSecurities }),
		pair("現金及び預金", func(f *Figures) internal.PeriodPair { return f.CashAndDeposits }),

		header("【FCF】"),
		current("FCF(NOPAT+減価償却費-設備投資±正味運転資本増減)", func(f *Figures) float64 { return f.FCF }),

		header("【資本効率】"),
		pair("投下資本(有利子負債＋株主資本)", func(f *Figures) internal.PeriodPair { return f.InvestedCapital }),
		ratios("税引き後営業利益率(税率３０％)",
			func(f *Figures) internal.PeriodPair { return f.Summary.NOPAT },
			func(f *Figures) internal.PeriodPair { return f.Summary.Revenues }),
		ratios("投下資本回転率(税率３０％)",
			func(f *Figures) internal.PeriodPair { return f.Summary.Revenues },
			func(f *Figures) internal.PeriodPair { return f.InvestedCapital }),
		roic("ROIC(NOPAT/投下資本)", func(f *Figures) internal.PeriodPair { return f.Summary.NOPAT }),
		ratios("実効税率",
			func(f *Figures) internal.PeriodPair { return f.IncomeTaxes },
			func(f *Figures) internal.PeriodPair { return f.PretaxIncome }),
		ratios("実効税引き後営業利益率(営業利益x(1-実効税率))",
			func(f *Figures) internal.PeriodPair { return f.NOPLAT },
			func(f *Figures) internal.PeriodPair { return f.Summary.Revenues }),
		pair("NOPLAT(営業利益x(1-実効税率))", func(f *Figures) internal.PeriodPair { return f.NOPLAT }),
		roic("ROIC(NOPLAT/投下資本)", func(f *Figures) internal.PeriodPair { return f.NOPLAT }),

		header("【予測レシオ】"),
		currentText("売上原価：売上原価/売上高", func(f *Figures) string {
			return metrics.Ratio(f.Summary.CostOfSales[1], f.Summary.Revenues[1])
		}),
		currentText("販売費及び一般管理費：販売費及び一般管理費/売上高", func(f *Figures) string {
			return metrics.Ratio(f.Summary.SGA[1], f.Summary.Revenues[1])
		}),
		currentText("減価償却費：減価償却費(t)/正味有形固定資産(t-1)", func(f *Figures) string {
			return metrics.Ratio(f.Summary.Depreciation[1], f.NetTangibleFixedAssets[0])
		}),
		currentText("売掛金：売掛金/売上高", func(f *Figures) string {
			return metrics.Ratio(f.WorkingCapital.Receivables.Sum[1], f.Summary.Revenues[1])
		}),
		currentText("棚卸資産：棚卸資産/売上原価", func(f *Figures) string {
			return metrics.Ratio(f.WorkingCapital.Inventories.Sum[1], f.Summary.CostOfSales[1])
		}),
		currentText("買掛金：買掛金/売上高", func(f *Figures) string {
			return metrics.Ratio(f.WorkingCapital.Payables.Sum[1], f.Summary.Revenues[1])
		}),
		pair("正味有形固定資産(有形固定資産-累計減価償却費)", func(f *Figures) internal.PeriodPair { return f.NetTangibleFixedAssets }),
		currentText("正味有形固定資産：正味有形固定資産/売上高", func(f *Figures) string {
			return metrics.Ratio(f.NetTangibleFixedAssets[1], f.Summary.Revenues[1])
		}),
	}
}

// Assemble は layout の順に行を組み立てる。行名が重複していればエラー
func Assemble(layout []RowSpec, f Figures) (internal.Report, error) {
	seen := make(map[string]bool, len(layout))
	rows := make([]internal.ReportRow, 0, len(layout))
	for _, spec := range layout {
		if seen[spec.Name] {
			return internal.Report{}, eris.Errorf("行名 %q が重複しています", spec.Name)
		}
		seen[spec.Name] = true

		row := internal.ReportRow{Name: spec.Name}
		switch {
		case spec.Items != nil:
			row.Kind = internal.RowNested
			row.Children = spec.Items(&f)
		case spec.Cells != nil:
			row.Kind = internal.RowValues
			row.Cells = spec.Cells(&f)
		default:
			row.Kind = internal.RowPlaceholder
		}
		rows = append(rows, row)
	}
	return internal.Report{Rows: rows}, nil
}
