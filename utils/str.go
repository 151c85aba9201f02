package utils

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	UTF8  = "UTF8"
	UTF_8 = "UTF-8"
	GBK   = "GBK"
)

// GBK 转 UTF-8
func GbkToUtf8(s []byte) (d []byte, e error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewDecoder())
	d, e = io.ReadAll(reader)
	return
}

// UTF-8 转 GBK
func Utf8ToGbk(s []byte) (d []byte, e error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewEncoder())
	d, e = io.ReadAll(reader)
	return
}

// GBK string 转 UTF-8
func GbkStrToUtf8(s string) (d string, e error) {
	t, e := GbkToUtf8([]byte(s))
	if e != nil {
		return
	}
	d = string(t)
	return
}

func PurifyForUtf8(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "")
}

// 图层名、波段名等标签统一为UTF-8：非法UTF-8时按GBK解码，仍失败则剔除非法字节
func ToUtf8Label(s string) string {
	if utf8.ValidString(s) {
		return strings.ReplaceAll(s, "\x00", "")
	}
	if d, e := GbkStrToUtf8(s); e == nil && utf8.ValidString(d) {
		return d
	}
	return PurifyForUtf8(s)
}

// 按编码名解码标签，UTF-8时只做清洗
func DecodeLabel(s, encoding string) string {
	switch strings.ToUpper(encoding) {
	case GBK:
		if d, e := GbkStrToUtf8(s); e == nil {
			return d
		}
		return PurifyForUtf8(s)
	case "", UTF8, UTF_8:
		return ToUtf8Label(s)
	}
	return PurifyForUtf8(s)
}
