package concept

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	r := Default()
	for _, key := range requiredConcepts {
		if len(r.Synonyms(key)) == 0 {
			t.Errorf("Synonyms(%q) is empty", key)
		}
	}
	got := r.Synonyms(OperatingProfit)
	if got[0] != "営業利益又は営業損失（△）" {
		t.Errorf("Synonyms(operating_profit)[0] = %q", got[0])
	}
	bs := r.Synonyms(BalanceSheetText)
	if len(bs) != 2 || bs[0] != "連結貸借対照表 [テキストブロック]" || bs[1] != "貸借対照表 [テキストブロック]" {
		t.Errorf("Synonyms(balance_sheet_text) = %v", bs)
	}
	debt := r.Members(InterestBearingDebt)
	if len(debt) != 11 {
		t.Fatalf("len(Members(interest_bearing_debt)) = %d, want 11", len(debt))
	}
	if debt[3][0] != "リース債務（流動負債）" {
		t.Errorf("debt[3] = %v", debt[3])
	}
}

func TestSynonymsReturnsCopy(t *testing.T) {
	r := Default()
	s := r.Synonyms(Revenues)
	s[0] = "changed"
	if r.Synonyms(Revenues)[0] != "売上高" {
		t.Error("Synonyms must not expose the registry's slice")
	}
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	data := strings.Replace(string(defaultData), "concepts:\n", "concepts:\n  revenues: [営業収益]\n", 1)
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("duplicate key was accepted")
	}
}

func TestParseRejectsMissingConcept(t *testing.T) {
	data := strings.Replace(string(defaultData), "  capex: [設備投資額、設備投資等の概要]\n", "", 1)
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("missing capex was accepted")
	}
}

func TestParseRejectsDuplicateSynonym(t *testing.T) {
	data := strings.Replace(string(defaultData), "sga: [販売費及び一般管理費]", "sga: [販売費及び一般管理費, 販売費及び一般管理費]", 1)
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("duplicate synonym was accepted")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concepts.yaml")
	data := strings.Replace(string(defaultData), "revenues: [売上高, 売上収益, 営業収益]", "revenues: [営業収益, 売上高]", 1)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.Synonyms(Revenues); got[0] != "営業収益" {
		t.Errorf("Synonyms(revenues) = %v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
	if r, err := Load(""); err != nil || r == nil {
		t.Errorf("Load(\"\") = %v, %v", r, err)
	}
}
