package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

type filePart struct {
	field, name, contentType string
	r                        io.Reader
}

// Multipart collects fields and files for Upload.
type Multipart struct {
	fields [][2]string
	files  []filePart
}

func NewMultipart() *Multipart { return &Multipart{} }

func (m *Multipart) Field(name, value string) *Multipart {
	if value != "" {
		m.fields = append(m.fields, [2]string{name, value})
	}
	return m
}

func (m *Multipart) File(field, fileName, contentType string, r io.Reader) *Multipart {
	m.files = append(m.files, filePart{field: field, name: fileName, contentType: contentType, r: r})
	return m
}

// Encode writes the form and returns it with its boundary content type.
func (m *Multipart) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.name, err)
		}
	}
	for _, kv := range m.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
