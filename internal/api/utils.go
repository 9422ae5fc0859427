package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/report"
	"github.com/rotisserie/eris"
)

// ErrInvalidParameter はリクエストパラメータの誤り (400)
var ErrInvalidParameter = eris.New("invalid parameter")

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", eris.Wrapf(ErrInvalidParameter, "format %q は json, csv, xlsx のいずれかを指定してください", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Encode はレポートを format の形式に変換する
func Encode(rep internal.Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		if err := report.WriteCSV(&buf, rep); err != nil {
			return nil, err
		}
	case FormatXLSX:
		if err := report.WriteXLSX(&buf, rep); err != nil {
			return nil, err
		}
	default:
		body, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "JSON に変換できませんでした")
		}
		return body, nil
	}
	return buf.Bytes(), nil
}

// ParseDate は YYYY-MM-DD を日本時間の日付として読む
func ParseDate(s string) (time.Time, error) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	date, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, eris.Wrapf(ErrInvalidParameter, "日付 %q は YYYY-MM-DD で指定してください", s)
	}
	return date, nil
}
