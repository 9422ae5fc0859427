package edinet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.edinet-fsa.go.jp/api/v2"

var annualReportPattern = regexp.MustCompile(`^(訂正)?有価証券報告書`)

// Client は EDINET API v2 のクライアント
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	// 日付ごとの書類一覧取得の間隔
	Interval time.Duration
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type metadata struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type documentsResponse struct {
	Metadata metadata            `json:"metadata"`
	Results  []internal.Document `json:"results"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	query.Set("Subscription-Key", c.apiKey)
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "リクエストを作成できませんでした")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s の取得に失敗しました", path)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, eris.Errorf("%s の取得に失敗しました (status %d)", path, resp.StatusCode)
	}
	return resp, nil
}

// Documents は date に提出された書類の一覧を返す
func (c *Client) Documents(ctx context.Context, date time.Time) ([]internal.Document, error) {
	query := url.Values{}
	query.Set("date", date.Format("2006-01-02"))
	query.Set("type", "2")
	resp, err := c.get(ctx, "documents.json", query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body documentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "書類一覧をデコードできませんでした")
	}
	// API キーの誤りなどは HTTP 200 のまま metadata.status で返ってくる
	if body.Metadata.Status != "" && body.Metadata.Status != "200" {
		return nil, eris.Errorf("書類一覧の取得に失敗しました: %s %s", body.Metadata.Status, body.Metadata.Message)
	}
	zap.L().Debug("書類一覧を取得しました",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("count", len(body.Results)),
	)
	return body.Results, nil
}

// IsAnnualReport は有価証券報告書 (訂正を含む) かどうか
func IsAnnualReport(doc internal.Document) bool {
	if doc.DocTypeCode != "120" && doc.DocTypeCode != "130" {
		return false
	}
	return doc.SecCode != "" && annualReportPattern.MatchString(doc.DocDescription)
}

// AnnualReports は有価証券報告書だけを返す。filerName が空でなければ提出者名に含むものに絞る
func AnnualReports(docs []internal.Document, filerName string) []internal.Document {
	var reports []internal.Document
	for _, doc := range docs {
		if !IsAnnualReport(doc) {
			continue
		}
		if filerName != "" && !strings.Contains(doc.FilerName, filerName) {
			continue
		}
		reports = append(reports, doc)
	}
	return reports
}

// AnnualReportsBetween は from から to までの日ごとに有価証券報告書を探す
func (c *Client) AnnualReportsBetween(ctx context.Context, from, to time.Time, filerName string) ([]internal.Document, error) {
	var reports []internal.Document
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		docs, err := c.Documents(ctx, date)
		if err != nil {
			return nil, err
		}
		reports = append(reports, AnnualReports(docs, filerName)...)

		if c.Interval > 0 && date.Before(to) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.Interval):
			}
		}
	}
	return reports, nil
}

// Download は書類の CSV 一式 (type=5) の ZIP を返す
func (c *Client) Download(ctx context.Context, docID string) ([]byte, error) {
	query := url.Values{}
	query.Set("type", "5")
	resp, err := c.get(ctx, "documents/"+url.PathEscape(docID), query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 書類がない場合も 200 で JSON のエラーが返る
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Metadata metadata `json:"metadata"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, eris.Wrapf(err, "docID: %s のファイルのダウンロードに失敗しました", docID)
		}
		return nil, eris.Errorf("docID: %s のファイルのダウンロードに失敗しました: %s", docID, body.Metadata.Message)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "docID: %s のファイルを読み込めませんでした", docID)
	}
	zap.L().Info("書類をダウンロードしました", zap.String("docID", docID), zap.Int("bytes", len(data)))
	return data, nil
}
