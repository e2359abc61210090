package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"muraai/internal/heritage"
	"muraai/internal/services"
)

// Analyze runs structured cultural analysis over the supplied content and
// returns the parsed result. The item type steers the prompt.
func (c *Client) Analyze(ctx context.Context, itemType heritage.ItemType, content string) (*heritage.AnalysisResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("gemini analyze: content required")
	}

	prompt := fmt.Sprintf(analysisPromptTemplate, itemType, content)
	raw, err := c.generateText(ctx, []part{{Text: prompt}}, true, "gemini analyze")
	if err != nil {
		return nil, err
	}

	var result heritage.AnalysisResult
	if err := DecodeModelJSON(raw, &result); err != nil {
		return nil, services.Wrap(services.ErrAnalysisParse, "analyze", "parse payload", "", err)
	}
	if err := result.Validate(); err != nil {
		return nil, services.Wrap(services.ErrAnalysisParse, "analyze", "validate payload", "", err)
	}
	return &result, nil
}
