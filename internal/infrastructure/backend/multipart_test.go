package backend

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"returns-desk/internal/domain/entity"
)

func TestUploadForm_FieldsThenImagesInOrder(t *testing.T) {
	form := UploadForm{
		Fields: []FormField{{Name: "itemNumber", Value: "123"}},
		Images: []entity.NormalizedImage{
			{Name: "one.png", Data: []byte("1")},
			{Name: `two "quoted".png`, Data: []byte("2")},
		},
	}

	body, contentType, err := form.Encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(body, params["boundary"])

	type part struct{ name, filename, data string }
	var parts []part
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, part{p.FormName(), p.FileName(), string(data)})
	}

	require.Equal(t, []part{
		{"itemNumber", "", "123"},
		{"images", "one.png", "1"},
		{"images", `two "quoted".png`, "2"},
	}, parts)
}
