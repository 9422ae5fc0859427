package aggregate

import (
	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/concept"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/rotisserie/eris"
)

// Spec は内訳と、値を取得する相対年度
type Spec struct {
	Bucket  string
	Prior   filing.PeriodTag
	Current filing.PeriodTag
}

var (
	// 売上債権
	Receivables = Spec{concept.Receivables, filing.Prior, filing.Current}
	// 棚卸資産
	Inventories = Spec{concept.Inventories, filing.Prior, filing.Current}
	// 仕入債務
	Payables = Spec{concept.Payables, filing.Prior, filing.Current}
	// 有利子負債 (期末残高)
	InterestBearingDebt = Spec{concept.InterestBearingDebt, filing.PriorEnd, filing.CurrentEnd}
)

type Item struct {
	Label  string
	Values internal.PeriodPair
}

// Aggregate は書類に存在する構成項目の内訳と合計
type Aggregate struct {
	Bucket string
	Items  []Item
	Sum    internal.PeriodPair
}

func (a Aggregate) Has(label string) bool {
	_, ok := a.Value(label)
	return ok
}

func (a Aggregate) Value(label string) (internal.PeriodPair, bool) {
	for _, item := range a.Items {
		if item.Label == label {
			return item.Values, true
		}
	}
	return internal.PeriodPair{}, false
}

// Labels は書類に存在した構成項目の項目名を返す
func Labels(t *filing.Table, reg *concept.Registry, bucket string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, synonyms := range reg.Members(bucket) {
		label := t.Canonicalize(synonyms, filing.Current)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// Build は内訳を集計する。書類にない構成項目は内訳にも合計にも含めない
func Build(t *filing.Table, reg *concept.Registry, spec Spec) (Aggregate, error) {
	agg := Aggregate{Bucket: spec.Bucket}
	for _, label := range Labels(t, reg, spec.Bucket) {
		values, err := t.ResolvePair(label, spec.Prior, spec.Current)
		if err != nil {
			return Aggregate{}, eris.Wrapf(err, "%s の集計に失敗しました", spec.Bucket)
		}
		agg.Items = append(agg.Items, Item{Label: label, Values: values})
		agg.Sum = agg.Sum.Add(values)
	}
	return agg, nil
}

// WorkingCapital は正味運転資本 = 売上債権 + 棚卸資産 - 仕入債務
type WorkingCapital struct {
	Receivables Aggregate
	Inventories Aggregate
	Payables    Aggregate
	Net         internal.PeriodPair
	// 当期 - 前期
	Fluctuation float64
}

func NetWorkingCapital(t *filing.Table, reg *concept.Registry) (WorkingCapital, error) {
	var wc WorkingCapital
	var err error
	if wc.Receivables, err = Build(t, reg, Receivables); err != nil {
		return WorkingCapital{}, err
	}
	if wc.Inventories, err = Build(t, reg, Inventories); err != nil {
		return WorkingCapital{}, err
	}
	if wc.Payables, err = Build(t, reg, Payables); err != nil {
		return WorkingCapital{}, err
	}
	wc.Net = wc.Receivables.Sum.Add(wc.Inventories.Sum).Sub(wc.Payables.Sum)
	wc.Fluctuation = wc.Net.Fluctuation()
	return wc, nil
}
