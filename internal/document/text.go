package document

import (
	"bytes"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// toUTF8 decodes data using the detected charset, keeping valid UTF-8 input as is
func toUTF8(data []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && name != "utf-8" && utf8.Valid(data) {
		return data, nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, err
		}
		return data, nil
	}
	return out, nil
}

func extractPlain(data []byte) (string, error) {
	text, err := toUTF8(data, "text/plain")
	if err != nil {
		return "", err
	}
	return joinLines(string(bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n")))), nil
}

func extractHTML(data []byte) (string, error) {
	text, err := toUTF8(data, "text/html")
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(text))
	if err != nil {
		return "", err
	}
	doc.Find("script,noscript,style,template").Remove()

	// Break lines at block boundaries so headings and list items stay apart
	doc.Find("p,li,h1,h2,h3,h4,h5,h6,div,tr,br,section,article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return joinLines(doc.Text()), nil
	}
	return joinLines(body.Text()), nil
}
