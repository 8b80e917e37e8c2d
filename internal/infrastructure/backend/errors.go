package backend

import (
	"errors"
	"fmt"
)

// ErrUnsuccessful бэкенд ответил 200, но status в теле не "success".
var ErrUnsuccessful = errors.New("API returned unsuccessful status")

// APIError ошибка вызова бэкенда. Покрывает сетевые сбои, коды не 2xx
// и неуспешный status в теле ответа.
type APIError struct {
	Op         string // имя операции, например get-item-details
	StatusCode int    // 0, если ответа не было
	Status     string // поле status из тела
	Message    string // поле message из тела, если было
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: API error (status %d): %s", e.Op, e.StatusCode, e.Message)
	case e.Status != "":
		return fmt.Sprintf("%s: API error (status %d, %q): %v", e.Op, e.StatusCode, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: API error (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage возвращает message из ответа бэкенда, если он есть.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
