package entity

// ItemDetails карточка товара, которую отдаёт бэкенд.
type ItemDetails struct {
	ItemNumber         string   `json:"itemNumber"`
	Description        string   `json:"description"`
	Image              string   `json:"image,omitempty"` // base64
	ImageFilename      string   `json:"image_filename,omitempty"`
	DecisionModel      string   `json:"decisionModel"`      // чек-лист
	ClaimApprovalModel string   `json:"claimApprovalModel"` // модель сортировки
	SpecialCases       string   `json:"special_cases"`
	Tags               []string `json:"tags"`
}

// TagCount тег и его частота среди товаров категории.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// DecisionModelUpdate тело запроса на обновление модели решений.
type DecisionModelUpdate struct {
	ItemNumber         string   `json:"itemNumber"`
	DecisionModel      string   `json:"decisionModel"`
	ClaimApprovalModel string   `json:"claimApprovalModel"`
	SpecialCases       string   `json:"specialCases"`
	Tags               []string `json:"tags"`
}

// NewDecisionModelUpdate заполняет форму редактирования из карточки товара.
func NewDecisionModelUpdate(item *ItemDetails) *DecisionModelUpdate {
	tags := make([]string, len(item.Tags))
	copy(tags, item.Tags)
	return &DecisionModelUpdate{
		ItemNumber:         item.ItemNumber,
		DecisionModel:      item.DecisionModel,
		ClaimApprovalModel: item.ClaimApprovalModel,
		SpecialCases:       item.SpecialCases,
		Tags:               tags,
	}
}
