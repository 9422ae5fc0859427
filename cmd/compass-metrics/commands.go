package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/api"
	"github.com/joe-black-jb/compass-metrics/internal/concept"
	"github.com/joe-black-jb/compass-metrics/internal/config"
	"github.com/joe-black-jb/compass-metrics/internal/edinet"
	"github.com/joe-black-jb/compass-metrics/internal/filing"
	"github.com/joe-black-jb/compass-metrics/internal/report"
	"github.com/joe-black-jb/compass-metrics/internal/storage"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg      config.Config
	registry *concept.Registry
	mode     filing.Mode

	// 環境変数より優先するフラグ
	strict   bool
	concepts string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "compass-metrics",
		Short:         "EDINET の有価証券報告書から財務指標を計算する",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().BoolVar(&a.strict, "strict", false, "項目が見つからない場合にエラーにする")
	root.PersistentFlags().StringVar(&a.concepts, "concepts", "", "項目名の同義語ファイル (YAML)")

	root.AddCommand(
		a.reportCmd(),
		a.documentsCmd(),
		a.fetchCmd(),
		a.serveCmd(),
		a.purgeCmd(),
		a.conceptsCmd(),
	)
	return wrapErrors(root)
}

// wrapErrors はサブコマンドのエラーをログに出す
func wrapErrors(root *cobra.Command) *cobra.Command {
	for _, cmd := range root.Commands() {
		runE := cmd.RunE
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			err := runE(cmd, args)
			if err != nil {
				zap.L().Error(cmd.Name()+" に失敗しました", zap.Error(err))
			}
			return err
		}
	}
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictMode = a.strict
	}
	if a.concepts != "" {
		cfg.ConceptsFile = a.concepts
	}
	a.cfg = cfg

	if a.registry, err = concept.Load(cfg.ConceptsFile); err != nil {
		return err
	}
	a.mode = filing.Lenient
	if cfg.StrictMode {
		a.mode = filing.Strict
	}
	zap.L().Debug("設定を読み込みました",
		zap.String("env", cfg.Env),
		zap.Stringer("mode", a.mode),
		zap.String("concepts", cfg.ConceptsFile),
	)
	return nil
}

func (a *app) client() (*edinet.Client, error) {
	if a.cfg.EDINETAPIKey == "" {
		return nil, eris.New("EDINET_API_KEY が設定されていません")
	}
	return edinet.NewClient(a.cfg.EDINETBaseURL, a.cfg.EDINETAPIKey, a.cfg.HTTPTimeout), nil
}

func (a *app) store(ctx context.Context) (*storage.Store, error) {
	if a.cfg.BucketName == "" {
		return nil, eris.New("BUCKET_NAME が設定されていません")
	}
	return storage.New(ctx, a.cfg.Region, a.cfg.BucketName)
}

// writeReport は OUTPUT_DIR にレポートを書き出してパスを返す
func (a *app) writeReport(rep internal.Report, format api.Format) (string, error) {
	body, err := api.Encode(rep, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "ディレクトリ %s を作成できませんでした", a.cfg.OutputDir)
	}
	docID := rep.DocID
	if docID == "" {
		docID = "local"
	}
	path := filepath.Join(a.cfg.OutputDir, report.Filename(docID, rep.DocDescription, string(format)))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", eris.Wrapf(err, "%s に書き込めませんでした", path)
	}
	return path, nil
}

// fetchReports は書類ごとにレポートを作って書き出す。Store があれば S3 にも保存する
func (a *app) fetchReports(ctx context.Context, p *api.Processor, docs []internal.Document, format api.Format, year int) error {
	var failed int
	for _, doc := range docs {
		rep, err := p.DocumentReportProcessor(ctx, doc, year)
		if err != nil {
			// 1 件の失敗で残りを止めない
			zap.L().Warn("指標を計算できませんでした", zap.String("docID", doc.DocID), zap.Error(err))
			failed++
			continue
		}
		path, err := a.writeReport(rep, format)
		if err != nil {
			return err
		}
		zap.L().Info("レポートを作成しました", zap.String("docID", doc.DocID), zap.String("path", path))
		if p.Store != nil {
			key, err := p.StoreReportProcessor(ctx, rep, format)
			if err != nil {
				return err
			}
			zap.L().Info("S3 に保存しました", zap.String("key", key))
		}
	}
	if failed > 0 {
		return eris.Errorf("%d 件中 %d 件の書類で失敗しました", len(docs), failed)
	}
	return nil
}

func (a *app) reportCmd() *cobra.Command {
	var format string
	var year int
	var docID, description string
	cmd := &cobra.Command{
		Use:   "report <csv>",
		Short: "XBRL_TO_CSV のファイルから指標を計算する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := api.ParseFormat(format)
			if err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return eris.Wrapf(err, "%s を開けませんでした", args[0])
			}
			defer file.Close()

			rows, err := filing.LoadCSV(file)
			if err != nil {
				return err
			}
			rep, err := report.FromRows(rows, a.registry, report.Options{Year: year, Mode: a.mode})
			if err != nil {
				return err
			}
			rep.DocID = docID
			rep.DocDescription = description
			path, err := a.writeReport(rep, f)
			if err != nil {
				return err
			}
			zap.L().Info("レポートを作成しました", zap.String("path", path), zap.String("company", rep.CompanyName))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "出力形式 (json, csv, xlsx)")
	cmd.Flags().IntVar(&year, "year", 0, "決算年度 (省略時は当事業年度終了日から求める)")
	cmd.Flags().StringVar(&docID, "doc-id", "", "書類管理番号")
	cmd.Flags().StringVar(&description, "description", "", "書類の説明 (ファイル名に使う)")
	return cmd
}

func (a *app) documentsCmd() *cobra.Command {
	var date, to, filer, format string
	var fetch bool
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "提出された有価証券報告書の一覧を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			p := &api.Processor{Fetcher: c, Registry: a.registry, Mode: a.mode}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			docs, err := p.GetDocumentsProcessor(cmd.Context(), date, to, filer)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, doc := range docs {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", doc.DocID, doc.EDINETCode, doc.FilerName, doc.DocDescription)
			}
			zap.L().Info("書類一覧", zap.String("from", date), zap.String("to", to), zap.Int("count", len(docs)))
			if !fetch {
				return nil
			}
			f, err := api.ParseFormat(format)
			if err != nil {
				return err
			}
			return a.fetchReports(cmd.Context(), p, docs, f, 0)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "提出日 (YYYY-MM-DD、省略時は今日)")
	cmd.Flags().StringVar(&to, "to", "", "期間の終わり (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filer, "filer", "", "提出者名 (部分一致)")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "一覧の書類のレポートも作成する")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "--fetch の出力形式 (json, csv, xlsx)")
	return cmd
}

func (a *app) fetchCmd() *cobra.Command {
	var format string
	var year int
	var store bool
	cmd := &cobra.Command{
		Use:   "fetch <docID>...",
		Short: "EDINET から書類を取得して指標を計算する",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := api.ParseFormat(format)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			p := &api.Processor{Fetcher: c, Registry: a.registry, Mode: a.mode}
			if store {
				s, err := a.store(cmd.Context())
				if err != nil {
					return err
				}
				p.Store = s
			}

			docs := make([]internal.Document, 0, len(args))
			for _, docID := range args {
				docs = append(docs, internal.Document{DocID: docID})
			}
			return a.fetchReports(cmd.Context(), p, docs, f, year)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "出力形式 (json, csv, xlsx)")
	cmd.Flags().IntVar(&year, "year", 0, "決算年度")
	cmd.Flags().BoolVar(&store, "store", false, "S3 にも保存する")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "API サーバーを起動する",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &api.Processor{Registry: a.registry, Mode: a.mode}
			c, err := a.client()
			if err != nil {
				return err
			}
			p.Fetcher = c
			if a.cfg.BucketName != "" {
				s, err := a.store(cmd.Context())
				if err != nil {
					return err
				}
				p.Store = s
			} else {
				zap.L().Warn("BUCKET_NAME が未設定のためレポートは保存できません")
			}
			zap.L().Info("サーバーを起動します", zap.String("addr", a.cfg.Addr))
			return api.Router(api.NewHandler(p), a.cfg.Addr, a.cfg.AllowOrigins)
		},
	}
}

func (a *app) purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <prefix>",
		Short: "S3 の prefix 配下のオブジェクトを削除する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			n, err := s.DeletePrefix(cmd.Context(), args[0])
			zap.L().Info("オブジェクトを削除しました", zap.String("bucket", s.Bucket()), zap.String("prefix", args[0]), zap.Int("count", n))
			return err
		},
	}
}

// conceptsCmd は項目名の同義語と内訳の構成を表示する
func (a *app) conceptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "concepts",
		Short: "項目名の同義語を表示する",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, key := range a.registry.Concepts() {
				fmt.Fprintf(out, "%s\t%s\n", key, strings.Join(a.registry.Synonyms(key), " | "))
			}
			for _, bucket := range []string{concept.Receivables, concept.Inventories, concept.Payables, concept.InterestBearingDebt} {
				for _, group := range a.registry.Members(bucket) {
					fmt.Fprintf(out, "%s\t%s\n", bucket, strings.Join(group, " | "))
				}
			}
			return nil
		},
	}
}
