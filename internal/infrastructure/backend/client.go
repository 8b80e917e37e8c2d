package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

// Операции бэкенда. Совпадают с последним сегментом пути.
const (
	opItemDetails   = "get-item-details"
	opCategories    = "get-categories"
	opItemTags      = "get-item-tags"
	opSimilar       = "get-similar-item"
	opSimilarByTags = "get-similar-item-tags"
	opSort          = "sortv2"
	opOnboard       = "onboard-item"
	opUpdateModel   = "update-decision-model"
)

// Client HTTP-клиент API обработки возвратов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient создаёт клиент. httpClient == nil означает http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// GetItemDetails возвращает карточку товара.
func (c *Client) GetItemDetails(ctx context.Context, itemNumber string) (*entity.ItemDetails, error) {
	var resp itemDetailsResponse
	q := url.Values{"itemNumber": {itemNumber}}
	if err := c.getJSON(ctx, opItemDetails, q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &APIError{Op: opItemDetails, StatusCode: http.StatusOK, Status: resp.Status, Err: errors.New("empty item data")}
	}
	return resp.Data, nil
}

// GetCategories возвращает список категорий.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var resp categoriesResponse
	if err := c.getJSON(ctx, opCategories, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// GetItemTags возвращает распределение тегов товара, при необходимости в пределах категории.
func (c *Client) GetItemTags(ctx context.Context, itemNumber, category string) ([]entity.TagCount, error) {
	q := url.Values{"itemNumber": {itemNumber}}
	if category != "" {
		q.Set("category", category)
	}

	var resp itemTagsResponse
	if err := c.getJSON(ctx, opItemTags, q, &resp); err != nil {
		return nil, err
	}
	return []entity.TagCount(resp.Tags), nil
}

// SearchSimilar ищет похожие товары по тексту запроса.
func (c *Client) SearchSimilar(ctx context.Context, query string) ([]entity.SimilarItem, error) {
	var resp similarItemsResponse
	if err := c.postJSON(ctx, opSimilar, similarQueryRequest{Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp.SimilarItems, nil
}

// SearchByTags ищет похожие товары по выбранным тегам.
func (c *Client) SearchByTags(ctx context.Context, tags []string) ([]entity.SimilarItem, error) {
	if tags == nil {
		tags = []string{}
	}

	var resp similarItemsResponse
	if err := c.postJSON(ctx, opSimilarByTags, similarTagsRequest{Tags: tags}, &resp); err != nil {
		return nil, err
	}
	return resp.SimilarItems, nil
}

// SubmitQualityCheck отправляет фото товара на оценку.
func (c *Client) SubmitQualityCheck(ctx context.Context, itemNumber string, images []entity.NormalizedImage) (*entity.QualityReport, error) {
	form := UploadForm{
		Fields: []FormField{{Name: fieldItemNumber, Value: itemNumber}},
		Images: images,
	}

	var report entity.QualityReport
	if err := c.postForm(ctx, opSort, form, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SubmitClaim отправляет претензию с фото.
func (c *Client) SubmitClaim(ctx context.Context, itemNumber, claimDetails string, images []entity.NormalizedImage) (*entity.ClaimDecision, error) {
	form := UploadForm{
		Fields: []FormField{
			{Name: fieldItemNumber, Value: itemNumber},
			{Name: fieldClaimDetails, Value: claimDetails},
		},
		Images: images,
	}

	var decision entity.ClaimDecision
	if err := c.postForm(ctx, opSort, form, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// OnboardItem заводит новый товар. Бэкенд сообщает об успехе только кодом ответа.
func (c *Client) OnboardItem(ctx context.Context, itemNumber, description string, images []entity.NormalizedImage) error {
	form := UploadForm{
		Fields: []FormField{
			{Name: fieldItemDescription, Value: description},
			{Name: fieldItemNumber, Value: itemNumber},
		},
		Images: images,
	}
	return c.postForm(ctx, opOnboard, form, nil)
}

// UpdateDecisionModel сохраняет модель решений товара.
func (c *Client) UpdateDecisionModel(ctx context.Context, update *entity.DecisionModelUpdate) error {
	var resp statusResponse
	return c.postJSON(ctx, opUpdateModel, update, &resp)
}

func (c *Client) endpoint(op string, q url.Values) string {
	u := c.baseURL + "/api/" + op
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, op string, q url.Values, out enveloped) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(op, q), nil)
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	return c.doEnveloped(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op string, payload any, out enveloped) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op, nil), bytes.NewReader(body))
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doEnveloped(op, req, out)
}

func (c *Client) postForm(ctx context.Context, op string, form UploadForm, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return &APIError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op, nil), body)
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	c.log.Debug("submitting form",
		zap.String("op", op),
		zap.Int("fields", len(form.Fields)),
		zap.Int("images", len(form.Images)))

	return c.do(op, req, out)
}

// doEnveloped выполняет запрос и проверяет поле status.
func (c *Client) doEnveloped(op string, req *http.Request, out enveloped) error {
	if err := c.do(op, req, out); err != nil {
		return err
	}

	h := out.header()
	if h.Status != statusSuccess {
		return &APIError{
			Op:         op,
			StatusCode: http.StatusOK,
			Status:     h.Status,
			Message:    h.Message,
			Err:        ErrUnsuccessful,
		}
	}
	return nil
}

// do отправляет запрос и декодирует JSON-ответ в out (если out != nil).
func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
		c.log.Warn("backend request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unmarshaling response: %w", err)}
	}
	return nil
}

// errorMessage достаёт message или error из тела ошибки, иначе возвращает начало тела.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// Проверка реализации интерфейса
var _ port.Backend = (*Client)(nil)
