package export

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
)

const (
	SpreadsheetName = "results.xlsx"
	sheetName       = "Results"
	unknownID       = "unknown"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Exporter превращает результаты поиска в таблицу и набор изображений.
type Exporter struct {
	log *zap.Logger
}

func NewExporter(log *zap.Logger) *Exporter {
	return &Exporter{log: log}
}

// Build собирает выгрузку. Для пустого списка возвращает nil: файлов нет.
func (e *Exporter) Build(results []entity.QueryResult) (*entity.ExportBundle, error) {
	if len(results) == 0 {
		return nil, nil
	}

	sheet, err := buildSpreadsheet(results)
	if err != nil {
		return nil, err
	}

	images := make([]entity.ExportFile, 0, len(results))
	for _, r := range results {
		data, err := decodeImage(r.Image)
		if err != nil {
			return nil, fmt.Errorf("decode image for result %q: %w", r.ID, err)
		}
		images = append(images, entity.ExportFile{
			Name:        ImageName(r.ID),
			ContentType: "image/png",
			Data:        data,
		})
	}

	e.log.Info("export built",
		zap.Int("rows", len(results)),
		zap.Int("spreadsheet_bytes", len(sheet)))

	return &entity.ExportBundle{
		Spreadsheet: entity.ExportFile{Name: SpreadsheetName, ContentType: xlsxContentType, Data: sheet},
		Images:      images,
	}, nil
}

// ImageName имя файла изображения: image_<id>.png, unknown при пустом id.
func ImageName(id string) string {
	if id == "" {
		id = unknownID
	}
	return "image_" + id + ".png"
}

func buildSpreadsheet(results []entity.QueryResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{"ID", "Result"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]interface{}{r.ID, r.Annotation}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeImage снимает префикс data URL, если он есть, и декодирует base64.
func decodeImage(b64 string) ([]byte, error) {
	if idx := strings.Index(b64, ","); idx != -1 && strings.HasPrefix(b64, "data:") {
		b64 = b64[idx+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
}
