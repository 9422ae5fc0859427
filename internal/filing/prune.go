package filing

import (
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
)

const indicatorSuffix = "、経営指標等"

// Prune は項目名が空の行と、当期・前期以外の行を除いた新しいスライスを返す。
// 「売上高、経営指標等」のような項目名は「売上高」に揃える
func Prune(rows []internal.DisclosureRow) []internal.DisclosureRow {
	pruned := make([]internal.DisclosureRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.ItemLabel) == "" {
			continue
		}
		if !Reported.Match(row.RelativePeriod) {
			continue
		}
		row.ItemLabel = strings.TrimSuffix(row.ItemLabel, indicatorSuffix)
		pruned = append(pruned, row)
	}
	return pruned
}
