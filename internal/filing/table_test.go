package filing

import (
	"testing"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
)

func row(label, period, scope, value string) internal.DisclosureRow {
	return internal.DisclosureRow{ItemLabel: label, RelativePeriod: period, ConsolidationScope: scope, Value: value}
}

func TestResolveAbsentLabel(t *testing.T) {
	tbl := NewTable([]internal.DisclosureRow{row("売上高", "当期", "連結", "100")})
	got, err := tbl.Resolve("営業利益", Current)
	if err != nil || got != 0 {
		t.Errorf("Resolve(absent) = %v, %v, want 0, nil", got, err)
	}

	strict := NewTable(tbl.Rows(), WithMode(Strict))
	if _, err := strict.Resolve("営業利益", Current); !eris.Is(err, internal.ErrConceptNotPresent) {
		t.Errorf("strict Resolve(absent) error = %v, want ErrConceptNotPresent", err)
	}
	if _, err := strict.Resolve("売上高", Prior); !eris.Is(err, internal.ErrConceptNotPresent) {
		t.Errorf("strict Resolve(no period match) error = %v, want ErrConceptNotPresent", err)
	}
}

func TestResolveScopePreference(t *testing.T) {
	tests := []struct {
		name string
		rows []internal.DisclosureRow
		want float64
	}{
		{
			name: "consolidated wins over earlier non-consolidated",
			rows: []internal.DisclosureRow{
				row("売掛金", "当期末", "個別", "10"),
				row("売掛金", "当期末", "その他", "5"),
				row("売掛金", "当期末", "連結", "20"),
				row("売掛金", "当期末", "連結", "30"),
			},
			want: 20,
		},
		{
			name: "non-consolidated wins over other",
			rows: []internal.DisclosureRow{
				row("売掛金", "当期末", "その他", "5"),
				row("売掛金", "当期末", "個別", "10"),
			},
			want: 10,
		},
		{
			name: "other when nothing else",
			rows: []internal.DisclosureRow{
				row("売掛金", "前期末", "連結", "1"),
				row("売掛金", "当期末", "その他", "5"),
			},
			want: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTable(tt.rows).Resolve("売掛金", Current)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePeriodTags(t *testing.T) {
	tbl := NewTable([]internal.DisclosureRow{
		row("社債", "前期末", "連結", "100"),
		row("社債", "当期末", "連結", "200"),
		row("売上高", "前期", "連結", "1000"),
		row("売上高", "当期", "連結", "1200"),
	})
	pair, err := tbl.ResolvePair("社債", PriorEnd, CurrentEnd)
	if err != nil {
		t.Fatal(err)
	}
	if pair != (internal.PeriodPair{100, 200}) {
		t.Errorf("ResolvePair(社債) = %v", pair)
	}
	// 当期末? は「当期」にも「当期末」にも一致する
	pair, _ = tbl.ResolvePair("売上高", Prior, Current)
	if pair != (internal.PeriodPair{1000, 1200}) {
		t.Errorf("ResolvePair(売上高) = %v", pair)
	}
	pair, _ = tbl.ResolvePair("売上高", PriorEnd, CurrentEnd)
	if pair != (internal.PeriodPair{0, 0}) {
		t.Errorf("ResolvePair(売上高, end) = %v, want zeros", pair)
	}
}

func TestValueModes(t *testing.T) {
	rows := []internal.DisclosureRow{row("売上高", "当期", "連結", "不明")}

	if _, err := NewTable(rows).Resolve("売上高", Current); !eris.Is(err, internal.ErrUnparsableValue) {
		t.Errorf("Resolve error = %v, want ErrUnparsableValue", err)
	}
	got, err := NewTable(rows).Value("売上高", Current)
	if err != nil || got != 0 {
		t.Errorf("lenient Value = %v, %v, want 0, nil", got, err)
	}
	if _, err := NewTable(rows, WithMode(Strict)).Value("売上高", Current); !eris.Is(err, internal.ErrUnparsableValue) {
		t.Errorf("strict Value error = %v, want ErrUnparsableValue", err)
	}
}

func TestNewTableCopiesRows(t *testing.T) {
	rows := []internal.DisclosureRow{row("売上高", "当期", "連結", "100")}
	tbl := NewTable(rows)
	rows[0].Value = "999"
	if got, _ := tbl.Resolve("売上高", Current); got != 100 {
		t.Errorf("Resolve after caller mutation = %v, want 100", got)
	}
}

func TestCanonicalize(t *testing.T) {
	tbl := NewTable([]internal.DisclosureRow{
		row("営業収益", "前期", "連結", "1"),
		row("売上収益", "当期", "連結", "2"),
		row("営業収益", "当期", "連結", "3"),
	})
	synonyms := []string{"売上高", "営業収益", "売上収益"}

	first := tbl.Canonicalize(synonyms, Current)
	if first != "営業収益" {
		t.Errorf("Canonicalize = %q, want 営業収益", first)
	}
	if again := tbl.Canonicalize(synonyms, Current); again != first {
		t.Errorf("Canonicalize is not deterministic: %q then %q", first, again)
	}
	if got := tbl.Canonicalize([]string{"売上高"}, Current); got != "" {
		t.Errorf("Canonicalize(absent) = %q, want empty", got)
	}
	if got := tbl.Canonicalize([]string{"売上収益"}, Prior); got != "" {
		t.Errorf("Canonicalize(period mismatch) = %q, want empty", got)
	}
}

func TestText(t *testing.T) {
	tbl := NewTable([]internal.DisclosureRow{
		row("貸借対照表 [テキストブロック]", "当期", "個別", "個別BS"),
		row("貸借対照表 [テキストブロック]", "当期", "連結", "連結BS"),
	})
	if got, ok := tbl.Text("貸借対照表 [テキストブロック]", Current); !ok || got != "連結BS" {
		t.Errorf("Text = %q, %v", got, ok)
	}
	if _, ok := tbl.Text("連結貸借対照表 [テキストブロック]", Current); ok {
		t.Error("Text found an absent label")
	}
}

func TestPrune(t *testing.T) {
	rows := []internal.DisclosureRow{
		row("", "当期", "連結", "1"),
		row("会社名、表紙", "提出日時点", "その他", "テスト株式会社"),
		row("売上高、経営指標等", "当期", "連結", "100"),
		row("売上高", "前期", "個別", "90"),
		row("売上高", "前々期", "連結", "80"),
	}
	pruned := Prune(rows)
	if len(pruned) != 2 {
		t.Fatalf("len(Prune) = %d, want 2: %v", len(pruned), pruned)
	}
	if pruned[0].ItemLabel != "売上高" || pruned[1].RelativePeriod != "前期" {
		t.Errorf("Prune = %v", pruned)
	}
	if rows[2].ItemLabel != "売上高、経営指標等" {
		t.Error("Prune mutated its input")
	}
}

func TestReadMeta(t *testing.T) {
	meta := ReadMeta([]internal.DisclosureRow{
		row("会社名、表紙", "提出日時点", "その他", "テスト株式会社"),
		row("ＥＤＩＮＥＴコード、ＤＥＩ", "提出日時点", "その他", "E00001"),
		row("当事業年度終了日、ＤＥＩ", "提出日時点", "その他", "2024-03-31"),
	})
	if meta.CompanyName != "テスト株式会社" || meta.EDINETCode != "E00001" {
		t.Errorf("ReadMeta = %+v", meta)
	}
	if year, ok := meta.FiscalYear(); !ok || year != 2024 {
		t.Errorf("FiscalYear = %d, %v", year, ok)
	}
	if _, ok := (Meta{}).FiscalYear(); ok {
		t.Error("FiscalYear of empty meta succeeded")
	}
}
