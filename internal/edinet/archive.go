package edinet

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/rotisserie/eris"
)

// ExtractCSV は ZIP の中から XBRL_TO_CSV/jpcrp*.csv (有価証券報告書本文) を探して返す
func ExtractCSV(data []byte) (string, []byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, eris.Wrap(err, "ZIP を開けませんでした")
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		dir, file := path.Split(f.Name)
		if path.Base(strings.TrimSuffix(dir, "/")) != "XBRL_TO_CSV" {
			continue
		}
		if !strings.HasPrefix(file, "jpcrp") || path.Ext(file) != ".csv" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, eris.Wrapf(err, "%s を開けませんでした", f.Name)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, eris.Wrapf(err, "%s を読み込めませんでした", f.Name)
		}
		return f.Name, body, nil
	}
	return "", nil, eris.New("ZIP に XBRL_TO_CSV/jpcrp*.csv がありません")
}

// FetchRows は書類をダウンロードして開示行を読み込む
func (c *Client) FetchRows(ctx context.Context, docID string) ([]internal.DisclosureRow, error) {
	data, err := c.Download(ctx, docID)
	if err != nil {
		return nil, err
	}
	_, body, err := ExtractCSV(data)
	if err != nil {
		return nil, eris.Wrapf(err, "docID: %s", docID)
	}
	rows, err := filing.LoadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "docID: %s", docID)
	}
	return rows, nil
}
