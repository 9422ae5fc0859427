package internal

import (
	"encoding/json"
	"fmt"
)

// DisclosureRow は XBRL_TO_CSV の 1 行 (要素ID・コンテキストID・ユニットID 等は削除済み)
type DisclosureRow struct {
	ItemLabel          string `json:"itemLabel"`          // 項目名
	RelativePeriod     string `json:"relativePeriod"`     // 相対年度
	ConsolidationScope string `json:"consolidationScope"` // 連結・個別
	Value              string `json:"value"`              // 値
}

// PeriodPair は [前期, 当期] の組
type PeriodPair [2]float64

func (p PeriodPair) Add(o PeriodPair) PeriodPair {
	return PeriodPair{p[0] + o[0], p[1] + o[1]}
}

func (p PeriodPair) Sub(o PeriodPair) PeriodPair {
	return PeriodPair{p[0] - o[0], p[1] - o[1]}
}

// Fluctuation は当期 - 前期
func (p PeriodPair) Fluctuation() float64 {
	return p[1] - p[0]
}

// Cell はレポートの 1 セル。数値か文字列 ("-", "20.0%" など) のどちらか
type Cell struct {
	Number float64
	Text   string
	IsText bool
}

func Num(v float64) Cell {
	return Cell{Number: v}
}

func Text(s string) Cell {
	return Cell{Text: s, IsText: true}
}

// Pair は PeriodPair を 2 つの数値セルに変換する
func Pair(p PeriodPair) []Cell {
	return []Cell{Num(p[0]), Num(p[1])}
}

func (c Cell) String() string {
	if c.IsText {
		return c.Text
	}
	return fmt.Sprint(c.Number)
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsText {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Number)
}

type RowKind int

const (
	RowValues RowKind = iota
	// 区切り行 (値は空文字)
	RowPlaceholder
	// 内訳 (項目名 → 値)
	RowNested
)

func (k RowKind) MarshalText() ([]byte, error) {
	switch k {
	case RowPlaceholder:
		return []byte("placeholder"), nil
	case RowNested:
		return []byte("nested"), nil
	default:
		return []byte("values"), nil
	}
}

type ReportRow struct {
	Name     string      `json:"name"`
	Kind     RowKind     `json:"kind"`
	Cells    []Cell      `json:"values,omitempty"`
	Children []ReportRow `json:"items,omitempty"`
}

// Report は 1 書類分の指標。Rows の順序がそのまま出力順になる
type Report struct {
	DocID          string      `json:"docID,omitempty"`
	DocDescription string      `json:"docDescription,omitempty"` // 書類の説明 (ファイル名に使う)
	EDINETCode     string      `json:"edinetCode,omitempty"`
	CompanyName    string      `json:"companyName,omitempty"`
	Rows           []ReportRow `json:"rows"`
}

func (r Report) Row(name string) (ReportRow, bool) {
	for _, row := range r.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return ReportRow{}, false
}

// Document は EDINET 書類一覧 API の results の要素
type Document struct {
	SeqNumber      int    `json:"seqNumber"`
	DocID          string `json:"docID"`
	EDINETCode     string `json:"edinetCode"`
	SecCode        string `json:"secCode"`
	FilerName      string `json:"filerName"`
	PeriodStart    string `json:"periodStart"`
	PeriodEnd      string `json:"periodEnd"`
	SubmitDateTime string `json:"submitDateTime"`
	FormCode       string `json:"formCode"`
	DocTypeCode    string `json:"docTypeCode"`
	DocDescription string `json:"docDescription"`
	CsvFlag        string `json:"csvFlag"`
}

type DocumentList struct {
	Results []Document `json:"results"`
}
