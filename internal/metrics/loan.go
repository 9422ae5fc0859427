package metrics

import (
	"regexp"
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/width"
)

const notApplicableText = "該当事項はありません"

var (
	// 当期首残高・当期末残高
	loanBalancePattern = regexp.MustCompile(`^(?:[△▲]?[0-9,]+|[－―\-—])$`)
	// 平均利率 (%)
	loanRatePattern = regexp.MustCompile(`^(?:[0-9.]+|[－―\-—])$`)
)

type LoanRow struct {
	Description  string
	StartBalance float64
	EndBalance   float64
	Rate         float64
}

func isLoanValue(token string) bool {
	return loanBalancePattern.MatchString(token) || loanRatePattern.MatchString(token)
}

// ParseLoanSchedule は借入金等明細表から当期末残高と平均利率のある行を抜き出す。
// 区分 当期首残高 当期末残高 平均利率 の 4 語が並ぶ箇所を 1 行とみなすので、改行の有無は問わない
func ParseLoanSchedule(text string) []LoanRow {
	if strings.Contains(text, notApplicableText) {
		return nil
	}
	tokens := strings.Fields(width.Narrow.String(filing.FlattenTextBlock(text)))
	var rows []LoanRow
	for i := 0; i+3 < len(tokens); i++ {
		desc, startText, endText, rateText := tokens[i], tokens[i+1], tokens[i+2], tokens[i+3]
		if isLoanValue(desc) ||
			!loanBalancePattern.MatchString(startText) ||
			!loanBalancePattern.MatchString(endText) ||
			!loanRatePattern.MatchString(rateText) {
			continue
		}
		i += 3
		if filing.IsNotApplicable(endText) || filing.IsNotApplicable(rateText) {
			continue
		}
		start, err := filing.ParseValue(startText)
		if err != nil {
			continue
		}
		end, err := filing.ParseValue(endText)
		if err != nil {
			continue
		}
		rate, err := filing.ParseValue(rateText)
		if err != nil {
			zap.L().Debug("平均利率を読み取れませんでした", zap.String("description", desc), zap.String("rate", rateText))
			continue
		}
		rows = append(rows, LoanRow{Description: desc, StartBalance: start, EndBalance: end, Rate: rate})
	}
	return rows
}

// WeightedAverageCost は当期末残高で加重した平均利率 Σ(残高 × 利率) / Σ残高。
// 「該当事項はありません」や読み取れる行がない場合は 0
func WeightedAverageCost(text string) float64 {
	var weighted, total decimal.Decimal
	for _, row := range ParseLoanSchedule(text) {
		end := decimal.NewFromFloat(row.EndBalance)
		weighted = weighted.Add(end.Mul(decimal.NewFromFloat(row.Rate)))
		total = total.Add(end)
	}
	if total.IsZero() {
		return 0
	}
	f, _ := weighted.Div(total).Float64()
	return f
}
