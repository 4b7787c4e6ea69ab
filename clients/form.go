package clients

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormBody is a multipart payload: plain fields plus at most one file part.
type FormBody struct {
	Fields    map[string]string
	FileField string
	FileName  string
	FileMIME  string
	File      []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *FormBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range f.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if f.FileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+quoteEscaper.Replace(f.FileField)+`"; filename="`+quoteEscaper.Replace(f.FileName)+`"`)
		mime := f.FileMIME
		if mime == "" {
			mime = "application/octet-stream"
		}
		header.Set("Content-Type", mime)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.File); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// progressReader reports upload percentage as the transport drains the body.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	last   int
	report func(pct int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.sent += int64(n)
		pct := int(p.sent * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
