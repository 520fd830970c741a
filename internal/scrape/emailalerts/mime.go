package emailalerts

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// htmlBody walks the MIME tree of a raw RFC822 message and returns the first
// text/html part, already transfer-decoded. Alert mail is always HTML; the
// plain-text alternative carries no links worth parsing.
func htmlBody(raw []byte) (string, bool) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	return findHTMLPart(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
}

func findHTMLPart(contentType, cte string, body io.Reader) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", false
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return "", false
			}
			html, ok := findHTMLPart(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part,
			)
			if ok {
				return html, true
			}
		}
	}

	if mediaType != "text/html" {
		return "", false
	}
	decoded, err := io.ReadAll(decodeTransfer(body, cte))
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newWhitespaceStripper(r))
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// whitespaceStripper filters CR/LF out of base64 bodies so the stdlib
// decoder does not choke on folded lines.
type whitespaceStripper struct{ r io.Reader }

func newWhitespaceStripper(r io.Reader) io.Reader { return &whitespaceStripper{r: r} }

func (w *whitespaceStripper) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	kept := 0
	for i := 0; i < n; i++ {
		if p[i] == '\r' || p[i] == '\n' || p[i] == ' ' || p[i] == '\t' {
			continue
		}
		p[kept] = p[i]
		kept++
	}
	if kept == 0 && err == nil && n > 0 {
		return w.Read(p)
	}
	return kept, err
}
