package internal

import "github.com/rotisserie/eris"

var (
	// 書類に該当する項目がない
	ErrConceptNotPresent = eris.New("concept not present in filing")
	// 数値でも「－」でも「△」付き数値でもない値
	ErrUnparsableValue = eris.New("unparsable value")
	// 分母が 0
	ErrDivisionUndefined = eris.New("division undefined")
	// 貸借対照表のテキストブロックがない書類は処理できない
	ErrBalanceSheetNotFound = eris.New("貸借対照表が見つかりませんでした")
)
