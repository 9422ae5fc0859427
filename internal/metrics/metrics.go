package metrics

import (
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// 法定実効税率
const StatutoryTaxRate = 0.3

// 比率の分母・分子が 0 の場合の表記
const ZeroPercent = "0%"

var hundred = decimal.NewFromInt(100)

// 20 → "20.0", 33.333 (2 桁) → "33.33"
func formatDecimal(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// GrowthRatio は (curr - prev) / prev * 100。どちらかが 0 なら "0%"
func GrowthRatio(prev, curr float64) string {
	if prev == 0 || curr == 0 {
		return ZeroPercent
	}
	p := decimal.NewFromFloat(prev)
	r := decimal.NewFromFloat(curr).Sub(p).Div(p).Mul(hundred)
	return formatDecimal(r.Round(2)) + "%"
}

// Ratio は a / b * 100 を小数点以下 2 桁で表す
func Ratio(a, b float64) string {
	return RatioDecimals(a, b, 2)
}

func RatioDecimals(a, b float64, decimals int32) string {
	if a == 0 || b == 0 {
		return ZeroPercent
	}
	r := decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Mul(hundred)
	return formatDecimal(r.Round(decimals)) + "%"
}

// RatioPair は期ごとの Ratio
func RatioPair(a, b internal.PeriodPair) []internal.Cell {
	return []internal.Cell{
		internal.Text(Ratio(a[0], b[0])),
		internal.Text(Ratio(a[1], b[1])),
	}
}

// EffectiveTaxRate は法人税等 / 税引前当期純利益 (小数点以下 2 桁)
func EffectiveTaxRate(tax, pretax float64) (float64, error) {
	if pretax == 0 {
		return 0, eris.Wrapf(internal.ErrDivisionUndefined, "実効税率: 税引前当期純利益が 0 です (法人税等 %v)", tax)
	}
	f, _ := decimal.NewFromFloat(tax).Div(decimal.NewFromFloat(pretax)).Round(2).Float64()
	return f, nil
}

// InvestedCapital は期ごとに (株主資本 + 有利子負債) / 2
func InvestedCapital(equity, debt internal.PeriodPair) internal.PeriodPair {
	var ic internal.PeriodPair
	for i := range ic {
		ic[i] = (equity[i] + debt[i]) / 2
	}
	return ic
}

// ROIC は期ごとに round(income / capital, 4) * 100。投下資本が 0 の期は "0%"
func ROIC(income, capital internal.PeriodPair) [2]internal.Cell {
	var cells [2]internal.Cell
	for i := range cells {
		if capital[i] == 0 {
			cells[i] = internal.Text(ZeroPercent)
			continue
		}
		r := decimal.NewFromFloat(income[i]).Div(decimal.NewFromFloat(capital[i])).Round(4).Mul(hundred)
		f, _ := r.Float64()
		cells[i] = internal.Num(f)
	}
	return cells
}

// NOPAT は営業利益 × (1 - 法定実効税率)
func NOPAT(operatingProfit float64) float64 {
	coefficient := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(StatutoryTaxRate))
	f, _ := decimal.NewFromFloat(operatingProfit).Mul(coefficient).Round(2).Float64()
	return f
}

func NOPATPair(operatingProfits internal.PeriodPair) internal.PeriodPair {
	return internal.PeriodPair{NOPAT(operatingProfits[0]), NOPAT(operatingProfits[1])}
}

// NOPLAT は営業利益 × (1 - 実効税率)
func NOPLAT(operatingProfit, effectiveTaxRate float64) float64 {
	f, _ := decimal.NewFromFloat(operatingProfit).
		Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(effectiveTaxRate))).
		Float64()
	return f
}

// FCF は当期の NOPAT - 設備投資 + 減価償却費 - 正味運転資本の増減
func FCF(nopat, capex, depreciation, workingCapitalFluctuation float64) float64 {
	return nopat - capex + depreciation - workingCapitalFluctuation
}
