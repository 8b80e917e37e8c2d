package entity

import (
	"encoding/json"
	"strings"
)

// SimilarItem элемент выдачи поиска похожих товаров.
type SimilarItem struct {
	Image  string `json:"image"`  // base64
	Result string `json:"result"` // JSON-строка или свободный текст
}

// Annotation возвращает текст для показа оператору.
// Если result — JSON-объект с grading_reason_summary, берём его.
func (s SimilarItem) Annotation() string {
	trimmed := strings.TrimSpace(s.Result)
	if !strings.HasPrefix(trimmed, "{") {
		return s.Result
	}

	var parsed struct {
		Summary string `json:"grading_reason_summary"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil || parsed.Summary == "" {
		return s.Result
	}
	return parsed.Summary
}

// QueryResult строка результата поиска, пригодная для экспорта.
type QueryResult struct {
	ID         string `json:"id"` // порядковый номер; пустой, если неизвестен
	Image      string `json:"image"`
	Annotation string `json:"result"`
}
