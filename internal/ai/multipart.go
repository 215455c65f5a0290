package ai

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

type formFile struct {
	field string
	image *Image
}

type formField struct {
	name  string
	value string
}

// multipartForm keeps field order so requests are reproducible in tests.
type multipartForm struct {
	fields []formField
	files  []formFile
}

func newMultipartForm() *multipartForm {
	return &multipartForm{}
}

func (f *multipartForm) AddField(name, value string) *multipartForm {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

func (f *multipartForm) AddImage(field string, image *Image) *multipartForm {
	f.files = append(f.files, formFile{field: field, image: image})
	return f
}

func (f *multipartForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(
			`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.field), escapeQuotes(file.image.filename()),
		))
		header.Set("Content-Type", file.image.contentType())
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.image.Data); err != nil {
			return nil, "", err
		}
	}

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
