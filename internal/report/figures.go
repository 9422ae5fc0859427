package report

import (
	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/aggregate"
	"github.com/joe-black-jb/compass-metrics/internal/concept"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/joe-black-jb/compass-metrics/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type Options struct {
	// 決算年度。0 なら当事業年度終了日から求める
	Year int
	Mode filing.Mode
}

// Summary は損益計算書まわりの要約
type Summary struct {
	Revenues                  internal.PeriodPair
	RevenueGrowthRate         string
	CostOfSales               internal.PeriodPair
	GrossProfit               internal.PeriodPair
	SGA                       internal.PeriodPair
	OperatingProfits          internal.PeriodPair
	OperatingProfitGrowthRate string
	NOPAT                     internal.PeriodPair
	Depreciation              internal.PeriodPair
	CapitalExpenditure        float64 // 当期のみ
}

// Figures は 1 書類分の計算結果。レポートの各行はここから組み立てる
type Figures struct {
	Year      int
	MoneyUnit string

	Summary        Summary
	WorkingCapital aggregate.WorkingCapital
	Debt           aggregate.Aggregate
	DebtCost       float64

	ShareholdersEquity   internal.PeriodPair
	Shares               float64
	InvestmentSecurities internal.PeriodPair
	CashAndDeposits      internal.PeriodPair
	FCF                  float64

	InvestedCapital   internal.PeriodPair
	IncomeTaxes       internal.PeriodPair
	PretaxIncome      internal.PeriodPair
	EffectiveTaxRates internal.PeriodPair // 税引前当期純利益が 0 の期は 0
	NOPLAT            internal.PeriodPair

	NetTangibleFixedAssets internal.PeriodPair
}

// conceptPair は概念キーの項目名を決めて [前期, 当期] の値を返す
func conceptPair(t *filing.Table, reg *concept.Registry, key string, prior, current filing.PeriodTag) (internal.PeriodPair, error) {
	label := t.Canonicalize(reg.Synonyms(key), filing.Reported)
	if label == "" {
		zap.L().Debug("項目が見つかりません", zap.String("key", key))
	}
	pair, err := t.ResolvePair(label, prior, current)
	if err != nil {
		return internal.PeriodPair{}, eris.Wrapf(err, "%s", key)
	}
	return pair, nil
}

func conceptValue(t *filing.Table, reg *concept.Registry, key string, tag filing.PeriodTag) (float64, error) {
	label := t.Canonicalize(reg.Synonyms(key), tag)
	v, err := t.Value(label, tag)
	if err != nil {
		return 0, eris.Wrapf(err, "%s", key)
	}
	return v, nil
}

// Summarize は売上高・営業利益などの要約を計算する。貸借対照表は不要
func Summarize(t *filing.Table, reg *concept.Registry) (Summary, error) {
	var s Summary
	var err error
	pairs := []struct {
		key  string
		dest *internal.PeriodPair
	}{
		{concept.Revenues, &s.Revenues},
		{concept.CostOfSales, &s.CostOfSales},
		{concept.SGA, &s.SGA},
		{concept.OperatingProfit, &s.OperatingProfits},
		{concept.Depreciation, &s.Depreciation},
	}
	for _, p := range pairs {
		if *p.dest, err = conceptPair(t, reg, p.key, filing.Prior, filing.Current); err != nil {
			return Summary{}, err
		}
	}
	// 設備投資等の概要は当期のみ開示される
	if s.CapitalExpenditure, err = conceptValue(t, reg, concept.Capex, filing.Current); err != nil {
		return Summary{}, err
	}
	s.RevenueGrowthRate = metrics.GrowthRatio(s.Revenues[0], s.Revenues[1])
	s.GrossProfit = s.Revenues.Sub(s.CostOfSales)
	s.OperatingProfitGrowthRate = metrics.GrowthRatio(s.OperatingProfits[0], s.OperatingProfits[1])
	s.NOPAT = metrics.NOPATPair(s.OperatingProfits)
	return s, nil
}

// Compute は 1 書類分の指標をすべて計算する。
// 貸借対照表のテキストブロックがない書類は ErrBalanceSheetNotFound
func Compute(t *filing.Table, reg *concept.Registry, opts Options) (Figures, error) {
	bsLabel := t.Canonicalize(reg.Synonyms(concept.BalanceSheetText), filing.Current)
	if bsLabel == "" {
		return Figures{}, eris.Wrap(internal.ErrBalanceSheetNotFound, "指標を計算できません")
	}
	bs, _ := t.Text(bsLabel, filing.Current)
	zap.L().Debug("指標を計算します", zap.Int("rows", t.Len()), zap.Stringer("mode", t.Mode()), zap.Int("year", opts.Year))

	f := Figures{Year: opts.Year, MoneyUnit: filing.MoneyUnit(bs)}
	var err error

	if f.Summary, err = Summarize(t, reg); err != nil {
		return Figures{}, err
	}
	if f.WorkingCapital, err = aggregate.NetWorkingCapital(t, reg); err != nil {
		return Figures{}, err
	}
	if f.Debt, err = aggregate.Build(t, reg, aggregate.InterestBearingDebt); err != nil {
		return Figures{}, err
	}

	if label := t.Canonicalize(reg.Synonyms(concept.LoanScheduleText), filing.Current); label != "" {
		text, _ := t.Text(label, filing.Current)
		f.DebtCost = metrics.WeightedAverageCost(text)
	}

	pairs := []struct {
		key  string
		dest *internal.PeriodPair
	}{
		{concept.ShareholdersEquity, &f.ShareholdersEquity},
		{concept.InvestmentSecurities, &f.InvestmentSecurities},
		{concept.CashAndDeposits, &f.CashAndDeposits},
		{concept.IncomeTaxes, &f.IncomeTaxes},
		{concept.PretaxIncome, &f.PretaxIncome},
	}
	for _, p := range pairs {
		if *p.dest, err = conceptPair(t, reg, p.key, filing.Prior, filing.Current); err != nil {
			return Figures{}, err
		}
	}

	issued, err := conceptValue(t, reg, concept.IssuedShares, filing.CurrentEnd)
	if err != nil {
		return Figures{}, err
	}
	treasury, err := conceptValue(t, reg, concept.TreasuryShares, filing.CurrentEnd)
	if err != nil {
		return Figures{}, err
	}
	f.Shares = issued - treasury

	f.FCF = metrics.FCF(
		f.Summary.NOPAT[1],
		f.Summary.CapitalExpenditure,
		f.Summary.Depreciation[1],
		f.WorkingCapital.Fluctuation,
	)

	f.InvestedCapital = metrics.InvestedCapital(f.ShareholdersEquity, f.Debt.Sum)
	for i := range f.EffectiveTaxRates {
		rate, err := metrics.EffectiveTaxRate(f.IncomeTaxes[i], f.PretaxIncome[i])
		if err != nil {
			zap.L().Debug("実効税率を 0 とします", zap.Int("period", i), zap.Error(err))
			rate = 0
		}
		f.EffectiveTaxRates[i] = rate
		f.NOPLAT[i] = metrics.NOPLAT(f.Summary.OperatingProfits[i], rate)
	}

	tangible, err := conceptPair(t, reg, concept.TangibleFixedAssets, filing.Prior, filing.Current)
	if err != nil {
		return Figures{}, err
	}
	accumulated, err := conceptPair(t, reg, concept.AccumulatedDepreciation, filing.Prior, filing.Current)
	if err != nil {
		return Figures{}, err
	}
	f.NetTangibleFixedAssets = tangible.Sub(accumulated)

	return f, nil
}
