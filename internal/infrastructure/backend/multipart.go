package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"returns-desk/internal/domain/entity"
)

// Имена полей формы, которые ожидает бэкенд.
const (
	fieldItemNumber      = "itemNumber"
	fieldClaimDetails    = "claimDetails"
	fieldItemDescription = "itemDescription"
	fieldImages          = "images"
)

// FormField скалярное поле формы.
type FormField struct {
	Name  string
	Value string
}

// UploadForm содержимое multipart-запроса: поля в заданном порядке,
// затем изображения под одним и тем же ключом images.
type UploadForm struct {
	Fields []FormField
	Images []entity.NormalizedImage
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode собирает тело запроса и возвращает его вместе с Content-Type.
func (f UploadForm) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, field := range f.Fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
		}
	}

	for i, img := range f.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			fieldImages, quoteEscaper.Replace(img.Name)))
		h.Set("Content-Type", img.ContentType())

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create image part %d: %w", i, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("write image part %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
