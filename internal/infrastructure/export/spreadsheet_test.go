package export

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestBuild_RowsAndImages(t *testing.T) {
	results := []entity.QueryResult{
		{ID: "0", Image: b64("zero"), Annotation: "Grade A"},
		{ID: "1", Image: "data:image/jpeg;base64," + b64("one"), Annotation: "Grade C, dented"},
		{ID: "", Image: b64("anon"), Annotation: "no id"},
	}

	bundle, err := NewExporter(zap.NewNop()).Build(results)
	require.NoError(t, err)
	require.NotNil(t, bundle)

	require.Equal(t, SpreadsheetName, bundle.Spreadsheet.Name)
	f, err := excelize.OpenReader(bytes.NewReader(bundle.Spreadsheet.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, len(results)+1)
	require.Equal(t, []string{"ID", "Result"}, rows[0])
	require.Equal(t, []string{"0", "Grade A"}, rows[1])
	require.Equal(t, []string{"1", "Grade C, dented"}, rows[2])
	require.Equal(t, "no id", rows[3][1])

	require.Len(t, bundle.Images, len(results))
	require.Equal(t, "image_0.png", bundle.Images[0].Name)
	require.Equal(t, []byte("zero"), bundle.Images[0].Data)
	require.Equal(t, "image_1.png", bundle.Images[1].Name)
	require.Equal(t, []byte("one"), bundle.Images[1].Data)
	require.Equal(t, "image_unknown.png", bundle.Images[2].Name)

	require.Len(t, bundle.Files(), len(results)+1)
}

func TestBuild_EmptyIsNoop(t *testing.T) {
	bundle, err := NewExporter(zap.NewNop()).Build(nil)
	require.NoError(t, err)
	require.Nil(t, bundle)
	require.Empty(t, bundle.Files())
}

func TestBuild_BadBase64(t *testing.T) {
	_, err := NewExporter(zap.NewNop()).Build([]entity.QueryResult{{ID: "3", Image: "%%%"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"3"`)
}

func TestImageName(t *testing.T) {
	require.Equal(t, "image_12.png", ImageName("12"))
	require.Equal(t, "image_unknown.png", ImageName(""))
}
