package filing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"golang.org/x/text/width"
)

var numberPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// 「該当なし」を表す記号
var notApplicable = map[string]bool{
	"":  true,
	"－": true,
	"―": true,
	"—": true,
	"‐": true,
	"-": true,
}

// IsNotApplicable は値が「－」などの該当なし記号かどうかを返す
func IsNotApplicable(raw string) bool {
	return notApplicable[strings.TrimSpace(raw)]
}

// ParseValue は開示された値を数値に変換する
//
//	"1,234" → 1234, "△500" → -500, "－" → 0
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if notApplicable[s] {
		return 0, nil
	}
	// 全角数字・全角カンマを半角に
	s = width.Narrow.String(s)

	negative := false
	for _, mark := range []string{"△", "▲"} {
		if strings.HasPrefix(s, mark) {
			negative = true
			s = strings.TrimSpace(strings.TrimPrefix(s, mark))
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	if !numberPattern.MatchString(s) {
		return 0, eris.Wrapf(internal.ErrUnparsableValue, "値 %q", raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(internal.ErrUnparsableValue, "値 %q: %v", raw, err)
	}
	if negative {
		return -v, nil
	}
	return v, nil
}
