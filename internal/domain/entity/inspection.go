package entity

import (
	"encoding/json"
	"errors"
)

// GradingReason пара «фактор — объяснение» из отчёта о качестве.
type GradingReason struct {
	Factor      string
	Explanation string
}

// UnmarshalJSON разбирает объект из одного ключа: {"Packaging": "torn"}.
func (g *GradingReason) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return errors.New("grading reason must have exactly one factor")
	}
	for k, v := range raw {
		g.Factor, g.Explanation = k, v
	}
	return nil
}

// MarshalJSON обратное преобразование.
func (g GradingReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{g.Factor: g.Explanation})
}

// QualityReport итог проверки качества возвращённого товара.
type QualityReport struct {
	Reasons []GradingReason `json:"grading_reason"`
	Summary string          `json:"grading_reason_summary"`
}

// ClaimDecision решение по претензии.
type ClaimDecision struct {
	ValidationReasoning string   `json:"claim_validation_reasoning"`
	Approval            string   `json:"Approval"`
	RepairReasoning     string   `json:"repair_reasoning"`
	Toolkits            []string `json:"toolkits_recommended"`
}

// Approved: бэкенд помечает отказ буквой F, всё остальное — одобрение.
func (c ClaimDecision) Approved() bool {
	return c.Approval != "F"
}
