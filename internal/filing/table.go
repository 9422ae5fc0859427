package filing

import (
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Mode は項目が見つからない・数値に変換できない場合の扱い
type Mode int

const (
	// 0 として処理を続ける (既定)
	Lenient Mode = iota
	// エラーを返す
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Table は 1 書類分の開示行。生成後は変更しない
type Table struct {
	rows  []internal.DisclosureRow
	index map[string][]int
	mode  Mode
	log   *zap.Logger
}

type Option func(*Table)

func WithMode(mode Mode) Option {
	return func(t *Table) {
		t.mode = mode
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(t *Table) {
		t.log = log
	}
}

// NewTable は rows のコピーから Table を作る。rows の順序は開示順とみなす
func NewTable(rows []internal.DisclosureRow, opts ...Option) *Table {
	t := &Table{
		rows:  append([]internal.DisclosureRow(nil), rows...),
		index: make(map[string][]int),
	}
	for i, row := range t.rows {
		t.index[row.ItemLabel] = append(t.index[row.ItemLabel], i)
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = zap.L()
	}
	return t
}

func (t *Table) Mode() Mode {
	return t.mode
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Rows は行のコピーを返す
func (t *Table) Rows() []internal.DisclosureRow {
	return append([]internal.DisclosureRow(nil), t.rows...)
}

// Has は label の行が tag に一致する相対年度で存在するか
func (t *Table) Has(label string, tag PeriodTag) bool {
	for _, i := range t.index[label] {
		if tag.Match(t.rows[i].RelativePeriod) {
			return true
		}
	}
	return false
}

// 連結 > 個別 > その他
func scopeRank(scope string) int {
	switch {
	case strings.Contains(scope, "連結"):
		return 0
	case strings.Contains(scope, "個別"):
		return 1
	default:
		return 2
	}
}

// lookup は相対年度が一致する行のうち、優先度の最も高い連結区分で最初に開示された行を返す
func (t *Table) lookup(label string, tag PeriodTag) (internal.DisclosureRow, bool) {
	best := -1
	bestRank := 3
	for _, i := range t.index[label] {
		row := t.rows[i]
		if !tag.Match(row.RelativePeriod) {
			continue
		}
		if rank := scopeRank(row.ConsolidationScope); rank < bestRank {
			best, bestRank = i, rank
			if rank == 0 {
				break
			}
		}
	}
	if best < 0 {
		return internal.DisclosureRow{}, false
	}
	return t.rows[best], true
}

// Resolve は label と tag に一致する値を返す。
// 行がない場合、Lenient なら 0、Strict なら ErrConceptNotPresent。
// 数値に変換できない値はモードに関係なく ErrUnparsableValue を返す
func (t *Table) Resolve(label string, tag PeriodTag) (float64, error) {
	row, ok := t.lookup(label, tag)
	if !ok {
		if t.mode == Strict {
			return 0, eris.Wrapf(internal.ErrConceptNotPresent, "項目 %q (%s)", label, tag)
		}
		return 0, nil
	}
	v, err := ParseValue(row.Value)
	if err != nil {
		return 0, eris.Wrapf(err, "項目 %q (%s)", label, tag)
	}
	return v, nil
}

// Value は Resolve にモードの方針を適用する。Lenient ではエラーを返さない
func (t *Table) Value(label string, tag PeriodTag) (float64, error) {
	v, err := t.Resolve(label, tag)
	if err == nil {
		return v, nil
	}
	if t.mode == Strict {
		return 0, err
	}
	t.log.Warn("値を 0 として扱います",
		zap.String("label", label),
		zap.String("period", tag.String()),
		zap.Error(err),
	)
	return 0, nil
}

// ResolvePair は [前期, 当期] の値を返す
func (t *Table) ResolvePair(label string, prior, current PeriodTag) (internal.PeriodPair, error) {
	p, err := t.Value(label, prior)
	if err != nil {
		return internal.PeriodPair{}, err
	}
	c, err := t.Value(label, current)
	if err != nil {
		return internal.PeriodPair{}, err
	}
	return internal.PeriodPair{p, c}, nil
}

// Text は数値変換せずに値を返す (テキストブロック用)
func (t *Table) Text(label string, tag PeriodTag) (string, bool) {
	row, ok := t.lookup(label, tag)
	if !ok {
		return "", false
	}
	return row.Value, true
}

// Canonicalize は synonyms のうち、tag に一致する行が存在する最初の項目名を返す。
// どれも存在しない場合は ""
func (t *Table) Canonicalize(synonyms []string, tag PeriodTag) string {
	for _, label := range synonyms {
		if t.Has(label, tag) {
			return label
		}
	}
	return ""
}
