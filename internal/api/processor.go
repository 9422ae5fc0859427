package api

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/concept"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/joe-black-jb/compass-metrics/internal/report"
	"github.com/joe-black-jb/compass-metrics/internal/storage"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher は EDINET から書類を取得する
type Fetcher interface {
	AnnualReportsBetween(ctx context.Context, from, to time.Time, filerName string) ([]internal.Document, error)
	FetchRows(ctx context.Context, docID string) ([]internal.DisclosureRow, error)
}

// Store はレポートファイルの保存先
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type Processor struct {
	Fetcher  Fetcher
	Store    Store
	Registry *concept.Registry
	Mode     filing.Mode
	// 1 回の検索で遡れる日数
	MaxDays int
}

// ReportFile は保存済みのレポートファイル
type ReportFile struct {
	Key  string `json:"key"`
	Data string `json:"data,omitempty"`
}

const defaultMaxDays = 31

// GetDocumentsProcessor は from から to までに提出された有価証券報告書を返す
func (p *Processor) GetDocumentsProcessor(ctx context.Context, from, to, filerName string) ([]internal.Document, error) {
	if from == "" {
		return nil, eris.Wrap(ErrInvalidParameter, "date を指定してください")
	}
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end := start
	if to != "" {
		if end, err = ParseDate(to); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, eris.Wrap(ErrInvalidParameter, "to は date 以降の日付を指定してください")
	}
	maxDays := p.MaxDays
	if maxDays <= 0 {
		maxDays = defaultMaxDays
	}
	if end.Sub(start) > time.Duration(maxDays)*24*time.Hour {
		return nil, eris.Wrapf(ErrInvalidParameter, "期間は %d 日以内で指定してください", maxDays)
	}
	return p.Fetcher.AnnualReportsBetween(ctx, start, end, filerName)
}

// GetReportProcessor は EDINET から書類を取得してレポートを作る
func (p *Processor) GetReportProcessor(ctx context.Context, docID string, year int) (internal.Report, error) {
	if docID == "" {
		return internal.Report{}, eris.Wrap(ErrInvalidParameter, "docID を指定してください")
	}
	rows, err := p.Fetcher.FetchRows(ctx, docID)
	if err != nil {
		return internal.Report{}, err
	}
	rep, err := report.FromRows(rows, p.Registry, report.Options{Year: year, Mode: p.Mode})
	if err != nil {
		return internal.Report{}, eris.Wrapf(err, "docID: %s", docID)
	}
	rep.DocID = docID
	return rep, nil
}

// DocumentReportProcessor は書類一覧の 1 件からレポートを作る。書類の説明はファイル名に使う
func (p *Processor) DocumentReportProcessor(ctx context.Context, doc internal.Document, year int) (internal.Report, error) {
	rep, err := p.GetReportProcessor(ctx, doc.DocID, year)
	if err != nil {
		return internal.Report{}, err
	}
	rep.DocDescription = doc.DocDescription
	if rep.EDINETCode == "" {
		rep.EDINETCode = doc.EDINETCode
	}
	if rep.CompanyName == "" {
		rep.CompanyName = doc.FilerName
	}
	return rep, nil
}

// BuildReportProcessor はアップロードされた XBRL_TO_CSV からレポートを作る
func (p *Processor) BuildReportProcessor(r io.Reader, docID string, year int) (internal.Report, error) {
	rows, err := filing.LoadCSV(r)
	if err != nil {
		return internal.Report{}, eris.Wrapf(ErrInvalidParameter, "CSV を読み込めませんでした: %v", err)
	}
	rep, err := report.FromRows(rows, p.Registry, report.Options{Year: year, Mode: p.Mode})
	if err != nil {
		return internal.Report{}, err
	}
	rep.DocID = docID
	return rep, nil
}

// StoreReportProcessor はレポートを S3 に保存してキーを返す
func (p *Processor) StoreReportProcessor(ctx context.Context, rep internal.Report, format Format) (string, error) {
	if p.Store == nil {
		return "", eris.New("BUCKET_NAME が設定されていないため保存できません")
	}
	if rep.EDINETCode == "" || rep.DocID == "" {
		return "", eris.Wrap(ErrInvalidParameter, "EDINET コードと docID のないレポートは保存できません")
	}
	body, err := Encode(rep, format)
	if err != nil {
		return "", err
	}
	key := storage.ReportKey(rep.EDINETCode, rep.DocID, string(format))
	if err := p.Store.Put(ctx, key, body, format.ContentType()); err != nil {
		return "", err
	}
	return key, nil
}

// GetStoredReportsProcessor は EDINET コードの保存済みレポートを返す。
// extension を指定した場合はその拡張子のファイルだけ中身も返す
func (p *Processor) GetStoredReportsProcessor(ctx context.Context, edinetCode, extension string) ([]ReportFile, error) {
	if p.Store == nil {
		return nil, eris.New("BUCKET_NAME が設定されていません")
	}
	if edinetCode == "" {
		return nil, eris.Wrap(ErrInvalidParameter, "EDINETCode を指定してください")
	}
	keys, err := p.Store.List(ctx, edinetCode+"/Metrics/")
	if err != nil {
		return nil, err
	}
	var files []ReportFile
	for _, key := range keys {
		file := ReportFile{Key: key}
		if extension != "" {
			if !strings.HasSuffix(key, "."+extension) {
				continue
			}
			body, err := p.Store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			file.Data = string(body)
		}
		files = append(files, file)
	}
	zap.L().Debug("保存済みレポート", zap.String("EDINETCode", edinetCode), zap.Int("count", len(files)))
	return files, nil
}
