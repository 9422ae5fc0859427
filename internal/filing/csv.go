package filing

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// XBRL_TO_CSV の列名
const (
	columnItemLabel = "項目名"
	columnPeriod    = "相対年度"
	columnScope     = "連結・個別"
	columnValue     = "値"
)

var requiredColumns = []string{columnItemLabel, columnPeriod, columnScope, columnValue}

// LoadCSV は XBRL_TO_CSV の CSV を開示順の行として読み込む。
// EDINET の CSV は BOM 付き UTF-16LE のタブ区切り。BOM がなければ UTF-8 として読む。
// 要素ID・コンテキストID・ユニットID などの列は捨てる
func LoadCSV(r io.Reader) ([]internal.DisclosureRow, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	body, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, eris.Wrap(err, "CSV のデコードに失敗しました")
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = sniffDelimiter(body)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "CSV のヘッダーを読み込めませんでした")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, eris.Errorf("CSV に列 %q がありません", name)
		}
	}

	field := func(record []string, name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []internal.DisclosureRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "CSV の %d 行目を読み込めませんでした", len(rows)+2)
		}
		rows = append(rows, internal.DisclosureRow{
			ItemLabel:          field(record, columnItemLabel),
			RelativePeriod:     field(record, columnPeriod),
			ConsolidationScope: field(record, columnScope),
			Value:              field(record, columnValue),
		})
	}
	return rows, nil
}

// ヘッダー行にタブがあればタブ区切り
func sniffDelimiter(body []byte) rune {
	line := body
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}
