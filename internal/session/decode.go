package session

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// charsetTable maps chardet charset names to decoders.
var charsetTable = map[string]encoding.Encoding{
	"gbk":          simplifiedchinese.GBK,
	"gb-18030":     simplifiedchinese.GB18030,
	"gb18030":      simplifiedchinese.GB18030,
	"big5":         traditionalchinese.Big5,
	"euc-kr":       korean.EUCKR,
	"shift_jis":    japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

// DecodeChunk converts one drained byte chunk to text.
//
// The cascade is ordered: UTF-8, then GBK, then whatever chardet detects,
// then Latin-1, which maps every byte and therefore never fails. Each chunk
// is decoded independently because the stream's encoding cannot be assumed
// stable from raw bytes alone. Decoding never returns an error past the
// session boundary.
func DecodeChunk(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	if s, ok := decodeStrict(simplifiedchinese.GBK, b); ok {
		return s
	}
	if enc := detectEncoding(b); enc != nil {
		if s, ok := decodeStrict(enc, b); ok {
			return s
		}
	}
	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// decodeStrict decodes b and accepts the result only if no byte had to be
// replaced, which is the closest analogue of "decodes without error".
func decodeStrict(enc encoding.Encoding, b []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func detectEncoding(b []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || result == nil {
		return nil
	}
	return charsetTable[strings.ToLower(result.Charset)]
}
