package heritage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AnalysisResult is the structured payload produced by the analysis
// capability. Field names mirror the wire schema; summary is the only
// required field.
type AnalysisResult struct {
	Summary           string   `json:"summary"`
	CulturalContext   string   `json:"cultural_context,omitempty"`
	HistoricalPeriod  string   `json:"historical_period,omitempty"`
	KeyThemes         []string `json:"key_themes,omitempty"`
	RegionOrigin      string   `json:"region_origin,omitempty"`
	RelatedTraditions []string `json:"related_traditions,omitempty"`
	PreservationNotes string   `json:"preservation_notes,omitempty"`
	TagsKZ            []string `json:"tags_kz,omitempty"`
	TagsRU            []string `json:"tags_ru,omitempty"`
}

// Validate rejects payloads missing the required summary, catching upstream
// prompt or format drift early.
func (a *AnalysisResult) Validate() error {
	if a == nil {
		return errors.New("analysis result is nil")
	}
	if strings.TrimSpace(a.Summary) == "" {
		return errors.New("analysis result missing required summary")
	}
	return nil
}

// Analysis decodes the stored analysis payload, or returns nil when the
// item has not been analyzed yet.
func (i *Item) Analysis() (*AnalysisResult, error) {
	if strings.TrimSpace(i.AIAnalysisJSON) == "" {
		return nil, nil
	}
	var result AnalysisResult
	if err := json.Unmarshal([]byte(i.AIAnalysisJSON), &result); err != nil {
		return nil, fmt.Errorf("decode stored analysis: %w", err)
	}
	return &result, nil
}

// SetAnalysis stores the analysis payload on the item.
func (i *Item) SetAnalysis(result *AnalysisResult) error {
	if result == nil {
		i.AIAnalysisJSON = ""
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	i.AIAnalysisJSON = string(data)
	return nil
}
