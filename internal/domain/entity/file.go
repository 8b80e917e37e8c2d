package entity

// AcquiredFile исходный файл, выбранный оператором или присланный в чат.
type AcquiredFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// NormalizedImage изображение, перекодированное в PNG.
type NormalizedImage struct {
	Name string // имя исходного файла с расширением .png
	Data []byte
}

// ContentType всегда image/png.
func (NormalizedImage) ContentType() string {
	return "image/png"
}
