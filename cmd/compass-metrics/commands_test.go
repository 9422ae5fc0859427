package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const filingCSV = "項目名,相対年度,連結・個別,値\n" +
	"会社名、表紙,提出日時点,その他,テスト株式会社\n" +
	"当事業年度終了日、DEI,提出日時点,その他,2024-03-31\n" +
	"連結貸借対照表 [テキストブロック],当期,連結,(単位：百万円)\n" +
	"売上高,前期,連結,\"1,000\"\n" +
	"売上高,当期,連結,\"1,200\"\n"

func TestReportCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "jpcrp.csv")
	if err := os.WriteFile(input, []byte(filingCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	t.Setenv("ENV", "test")
	t.Setenv("OUTPUT_DIR", out)

	root := newRootCmd()
	root.SetArgs([]string{"report", input, "--format", "json", "--doc-id", "S100TEST", "--description", "有価証券報告書－第100期"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	body, err := os.ReadFile(filepath.Join(out, "S100TEST_有価証券報告書－第100期.json"))
	if err != nil {
		t.Fatal(err)
	}
	var rep struct {
		DocID          string `json:"docID"`
		DocDescription string `json:"docDescription"`
		CompanyName string `json:"companyName"`
		Rows        []struct {
			Name   string        `json:"name"`
			Values []interface{} `json:"values"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.DocID != "S100TEST" || rep.DocDescription != "有価証券報告書－第100期" || rep.CompanyName != "テスト株式会社" {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Rows) == 0 || rep.Rows[0].Name != "年" || rep.Rows[0].Values[1] != "2024" {
		t.Errorf("first row = %+v", rep.Rows[0])
	}
}

func TestReportCmdWithoutBalanceSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "jpcrp.csv")
	if err := os.WriteFile(input, []byte("項目名,相対年度,連結・個別,値\n売上高,当期,連結,100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV", "test")
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))

	root := newRootCmd()
	root.SetArgs([]string{"report", input})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for filing without balance sheet")
	}
}

func writeFiling(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "jpcrp.csv")
	if err := os.WriteFile(input, []byte(filingCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV", "test")
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	return input
}

func TestRootFlagsAreNotShared(t *testing.T) {
	input := writeFiling(t)

	first := newRootCmd()
	first.SetArgs([]string{"report", input, "--concepts", filepath.Join(t.TempDir(), "missing.yaml")})
	if err := first.Execute(); err == nil {
		t.Fatal("expected error for missing concepts file")
	}

	second := newRootCmd()
	second.SetArgs([]string{"report", input})
	if err := second.Execute(); err != nil {
		t.Fatalf("second command tree: %v", err)
	}
}

func TestConceptsCmd(t *testing.T) {
	t.Setenv("ENV", "test")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"concepts"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"revenues\t売上高 | 売上収益 | 営業収益\n",
		"interest_bearing_debt\tリース債務（流動負債） | リース債務、流動負債\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}
