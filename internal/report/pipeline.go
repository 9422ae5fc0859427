package report

import (
	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/concept"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
)

// Build は 1 書類分のレポートを作る
func Build(t *filing.Table, reg *concept.Registry, opts Options) (internal.Report, error) {
	f, err := Compute(t, reg, opts)
	if err != nil {
		return internal.Report{}, err
	}
	return Assemble(DefaultLayout(), f)
}

// FromRows は CSV から読み込んだままの行からレポートを作る。
// 表紙・DEI を読んでから当期・前期以外の行を落とす
func FromRows(raw []internal.DisclosureRow, reg *concept.Registry, opts Options) (internal.Report, error) {
	meta := filing.ReadMeta(raw)
	if opts.Year == 0 {
		opts.Year, _ = meta.FiscalYear()
	}
	t := filing.NewTable(filing.Prune(raw), filing.WithMode(opts.Mode))
	rep, err := Build(t, reg, opts)
	if err != nil {
		return internal.Report{}, err
	}
	rep.EDINETCode = meta.EDINETCode
	rep.CompanyName = meta.CompanyName
	return rep, nil
}
