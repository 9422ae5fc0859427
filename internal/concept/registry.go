package concept

import (
	_ "embed"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v2"
)

//go:embed concepts.yaml
var defaultData []byte

// 概念キー
const (
	Revenues                = "revenues"
	CostOfSales             = "cost_of_sales"
	SGA                     = "sga"
	OperatingProfit         = "operating_profit"
	IncomeTaxes             = "income_taxes"
	PretaxIncome            = "pretax_income"
	Depreciation            = "depreciation"
	Capex                   = "capex"
	ShareholdersEquity      = "shareholders_equity"
	TangibleFixedAssets     = "tangible_fixed_assets"
	AccumulatedDepreciation = "accumulated_depreciation"
	InvestmentSecurities    = "investment_securities"
	CashAndDeposits         = "cash_and_deposits"
	IssuedShares            = "issued_shares"
	TreasuryShares          = "treasury_shares"
	BalanceSheetText        = "balance_sheet_text"
	LoanScheduleText        = "loan_schedule_text"
)

// 内訳キー
const (
	Receivables         = "receivables"
	Inventories         = "inventories"
	Payables            = "payables"
	InterestBearingDebt = "interest_bearing_debt"
)

var (
	requiredConcepts = []string{
		Revenues, CostOfSales, SGA, OperatingProfit, IncomeTaxes, PretaxIncome,
		Depreciation, Capex, ShareholdersEquity, TangibleFixedAssets, AccumulatedDepreciation,
		InvestmentSecurities, CashAndDeposits, IssuedShares, TreasuryShares,
		BalanceSheetText, LoanScheduleText,
	}
	requiredBuckets = []string{Receivables, Inventories, Payables, InterestBearingDebt}
)

type file struct {
	Concepts map[string][]string   `yaml:"concepts"`
	Buckets  map[string][][]string `yaml:"buckets"`
}

// Registry は概念キーから勘定科目名の候補への対応表
type Registry struct {
	concepts map[string][]string
	buckets  map[string][][]string
}

// Default は埋め込みの concepts.yaml を読み込む
func Default() *Registry {
	r, err := Parse(defaultData)
	if err != nil {
		panic(err)
	}
	return r
}

// Load は path の YAML を読み込む。path が空なら Default
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "概念定義ファイル %s を読み込めませんでした", path)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "概念定義ファイル %s", path)
	}
	return r, nil
}

// Parse は YAML を検証して Registry を返す。キーの重複はエラー
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, eris.Wrap(err, "YAML の解析に失敗しました")
	}
	for _, key := range requiredConcepts {
		if err := validateGroup(key, f.Concepts[key]); err != nil {
			return nil, err
		}
	}
	for _, key := range requiredBuckets {
		members, ok := f.Buckets[key]
		if !ok {
			return nil, eris.Errorf("内訳 %q が定義されていません", key)
		}
		for _, group := range members {
			if err := validateGroup(key, group); err != nil {
				return nil, err
			}
		}
	}
	return &Registry{concepts: f.Concepts, buckets: f.Buckets}, nil
}

func validateGroup(key string, group []string) error {
	if len(group) == 0 {
		return eris.Errorf("%q の候補が空です", key)
	}
	seen := make(map[string]bool, len(group))
	for _, label := range group {
		if label == "" {
			return eris.Errorf("%q に空の項目名があります", key)
		}
		if seen[label] {
			return eris.Errorf("%q に項目名 %q が重複しています", key, label)
		}
		seen[label] = true
	}
	return nil
}

// Synonyms は概念キーの候補を返す。未定義なら nil
func (r *Registry) Synonyms(key string) []string {
	return append([]string(nil), r.concepts[key]...)
}

// Members は内訳を構成する項目ごとの候補を定義順に返す
func (r *Registry) Members(bucket string) [][]string {
	members := make([][]string, 0, len(r.buckets[bucket]))
	for _, group := range r.buckets[bucket] {
		members = append(members, append([]string(nil), group...))
	}
	return members
}

func (r *Registry) Concepts() []string {
	keys := make([]string, 0, len(r.concepts))
	for key := range r.concepts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
