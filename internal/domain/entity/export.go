package entity

// ExportFile один файл выгрузки результатов.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportBundle таблица и изображения одной выгрузки.
type ExportBundle struct {
	Spreadsheet ExportFile
	Images      []ExportFile
}

// Files возвращает все файлы выгрузки: сначала таблицу, затем изображения.
func (b *ExportBundle) Files() []ExportFile {
	if b == nil {
		return nil
	}
	files := make([]ExportFile, 0, len(b.Images)+1)
	files = append(files, b.Spreadsheet)
	return append(files, b.Images...)
}
