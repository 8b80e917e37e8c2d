package app

import "errors"

var (
	// ErrEmptyUpload отправка без единого изображения.
	ErrEmptyUpload = errors.New("no images to submit")

	// ErrStale ответ пришёл после более нового запроса того же экрана и отброшен.
	ErrStale = errors.New("superseded by a newer request")

	// ErrMissingItemNumber не указан SKU.
	ErrMissingItemNumber = errors.New("item number is required")

	// ErrBusy оператор уже ждёт ответа бэкенда.
	ErrBusy = errors.New("submission already in progress")

	// ErrNotCollecting оператор не начал сценарий с фото.
	ErrNotCollecting = errors.New("no photo flow in progress")
)

// Сообщения, которые видит оператор. Все виды сбоев бэкенда сводятся к одной фразе на операцию.
const (
	MsgFetchItemError       = "Error fetching item details. Please try again."
	MsgFetchCategoriesError = "Error fetching categories. Please try again."
	MsgFetchTagsError       = "Error fetching tags. Please try again."
	MsgFetchResultsError    = "Error fetching results. Please try again."
	MsgSubmitImagesError    = "Error submitting images. Please try again."
	MsgOnboardError         = "Error onboarding item. Please try again."
	MsgOnboardSuccess       = "Item successfully onboarded!"
	MsgUpdateModelError     = "Error updating decision model. Please try again."
	MsgUpdateModelSuccess   = "Decision model updated successfully!"
	MsgExportError          = "Error exporting results. Please try again."
)
