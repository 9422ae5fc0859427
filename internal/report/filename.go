package report

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeFilenamePattern = regexp.MustCompile(`[\\/:*?"<>|()（）]+`)

// SanitizeFilename はファイル名に使えない文字を取り除く
func SanitizeFilename(name string) string {
	return strings.TrimSpace(unsafeFilenamePattern.ReplaceAllString(name, ""))
}

// Filename は {docID}_{書類の説明}.{拡張子}。説明が空なら {docID}_metrics.{拡張子}
func Filename(docID, description, extension string) string {
	title := SanitizeFilename(description)
	if title == "" {
		title = "metrics"
	}
	return fmt.Sprintf("%s_%s.%s", docID, title, extension)
}
