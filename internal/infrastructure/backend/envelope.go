package backend

import (
	"encoding/json"
	"fmt"
	"sort"

	"returns-desk/internal/domain/entity"
)

const statusSuccess = "success"

// envelope общая часть ответов вида {status: ..., message: ...}.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e envelope) header() envelope { return e }

// enveloped реализуют все ответы с полем status.
type enveloped interface {
	header() envelope
}

type itemDetailsResponse struct {
	envelope
	Data *entity.ItemDetails `json:"data"`
}

type categoriesResponse struct {
	envelope
	Categories []string `json:"categories"`
}

type itemTagsResponse struct {
	envelope
	Tags tagDistribution `json:"tags"`
}

type similarItemsResponse struct {
	envelope
	SimilarItems []entity.SimilarItem `json:"similar_items"`
}

type statusResponse struct {
	envelope
}

// errorBody тело ответа с кодом не 2xx.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type similarQueryRequest struct {
	Query string `json:"query"`
}

type similarTagsRequest struct {
	Tags []string `json:"tags"`
}

// tagDistribution принимает три формы поля tags:
// ["a","b"], {"a": 3, "b": 1} и [{"tag":"a","count":3}].
type tagDistribution []entity.TagCount

func (d *tagDistribution) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}

	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		out := make(tagDistribution, 0, len(plain))
		for _, t := range plain {
			out = append(out, entity.TagCount{Tag: t})
		}
		*d = out
		return nil
	}

	var counted []entity.TagCount
	if err := json.Unmarshal(data, &counted); err == nil {
		*d = counted
		return nil
	}

	var freq map[string]int
	if err := json.Unmarshal(data, &freq); err != nil {
		return fmt.Errorf("unsupported tags format: %w", err)
	}

	out := make(tagDistribution, 0, len(freq))
	for tag, count := range freq {
		out = append(out, entity.TagCount{Tag: tag, Count: count})
	}
	// Самые частые сверху, при равенстве по алфавиту.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	*d = out
	return nil
}
