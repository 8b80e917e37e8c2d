package port

import (
	"context"
)

// PhotoInspector локальная проверка фото перед отправкой
type PhotoInspector interface {
	// Check возвращает ошибку, если фото непригодно для оценки (мелкое, смазанное, пересвеченное)
	Check(ctx context.Context, imageData []byte) error
}
