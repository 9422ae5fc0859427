package filing

import "regexp"

// PeriodTag は相対年度の列に対する正規表現。完全一致ではなく部分一致で判定する
type PeriodTag struct {
	re *regexp.Regexp
}

var (
	// 前期 または 前期末
	Prior = MustPeriodTag(`前期末?`)
	// 当期 または 当期末
	Current = MustPeriodTag(`当期末?`)
	PriorEnd   = MustPeriodTag(`前期末`)
	CurrentEnd = MustPeriodTag(`当期末`)
	// 前処理で残す行
	Reported = MustPeriodTag(`当期末?|前期末?`)
)

func MustPeriodTag(pattern string) PeriodTag {
	return PeriodTag{re: regexp.MustCompile(pattern)}
}

func (t PeriodTag) Match(relativePeriod string) bool {
	if t.re == nil {
		return true
	}
	return t.re.MatchString(relativePeriod)
}

func (t PeriodTag) String() string {
	if t.re == nil {
		return "*"
	}
	return t.re.String()
}
