package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joe-black-jb/compass-metrics/internal"
	"github.com/joe-black-jb/compass-metrics/internal/report"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type Handler struct {
	p *Processor
}

func NewHandler(p *Processor) *Handler {
	return &Handler{p: p}
}

func statusOf(err error) int {
	switch {
	case eris.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case eris.Is(err, internal.ErrBalanceSheetNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func yearQuery(c *gin.Context) (int, error) {
	s := c.Query("year")
	if s == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 {
		return 0, eris.Wrapf(ErrInvalidParameter, "year %q", s)
	}
	return year, nil
}

// GET /documents?date=2024-06-27&to=2024-06-28&filerName=トヨタ
func (h *Handler) GetDocumentsGin(c *gin.Context) {
	docs, err := h.p.GetDocumentsProcessor(c.Request.Context(), c.Query("date"), c.Query("to"), c.Query("filerName"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if docs == nil {
		docs = []internal.Document{}
	}
	c.IndentedJSON(http.StatusOK, docs)
}

// GET /reports/:docID?format=json|csv|xlsx&store=true&docDescription=有価証券報告書－第100期
func (h *Handler) GetReportGin(c *gin.Context) {
	format, err := ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	year, err := yearQuery(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rep, err := h.p.DocumentReportProcessor(c.Request.Context(), internal.Document{
		DocID:          c.Param("docID"),
		DocDescription: c.Query("docDescription"),
	}, year)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("store") == "true" {
		key, err := h.p.StoreReportProcessor(c.Request.Context(), rep, format)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("X-Object-Key", key)
	}
	h.render(c, rep, format)
}

// POST /reports (multipart: file, docID, docDescription, format, year)
func (h *Handler) PostReportGin(c *gin.Context) {
	format, err := ParseFormat(c.PostForm("format"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, eris.Wrap(ErrInvalidParameter, "file を指定してください"))
		return
	}
	f, err := file.Open()
	if err != nil {
		abortWithError(c, eris.Wrap(err, "アップロードされたファイルを開けませんでした"))
		return
	}
	defer f.Close()

	year := 0
	if s := c.PostForm("year"); s != "" {
		if year, err = strconv.Atoi(s); err != nil {
			abortWithError(c, eris.Wrapf(ErrInvalidParameter, "year %q", s))
			return
		}
	}
	rep, err := h.p.BuildReportProcessor(f, c.PostForm("docID"), year)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rep.DocDescription = c.PostForm("docDescription")
	h.render(c, rep, format)
}

// GET /reports?EDINETCode=E00001&extension=csv
func (h *Handler) GetStoredReportsGin(c *gin.Context) {
	files, err := h.p.GetStoredReportsProcessor(c.Request.Context(), c.Query("EDINETCode"), c.Query("extension"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if files == nil {
		files = []ReportFile{}
	}
	c.IndentedJSON(http.StatusOK, files)
}

func (h *Handler) render(c *gin.Context, rep internal.Report, format Format) {
	if format == FormatJSON {
		c.IndentedJSON(http.StatusOK, rep)
		return
	}
	body, err := Encode(rep, format)
	if err != nil {
		abortWithError(c, err)
		return
	}
	docID := rep.DocID
	if docID == "" {
		docID = "report"
	}
	name := report.Filename(docID, rep.DocDescription, string(format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	c.Data(http.StatusOK, format.ContentType(), body)
}
