// Package classify assigns outreach tiers to leads. Classification is an
// enrichment step: when it fails the lead is persisted unclassified.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

const systemPrompt = "You are a sales lead qualifier. You rate leads for outreach " +
	"priority on a 1-3 tier scale: tier 1 is a strong fit worth immediate outreach, " +
	"tier 2 is a plausible fit, tier 3 is a weak fit. Respond only with JSON."

// Classifier rates a lead for outreach priority.
type Classifier interface {
	Classify(ctx context.Context, lead model.Lead) (*model.Classification, error)
}

// LLMClassifier implements Classifier with a single model call.
type LLMClassifier struct {
	client anthropic.Client
	model  string
}

// NewLLMClassifier creates an LLMClassifier.
func NewLLMClassifier(client anthropic.Client, modelName string) *LLMClassifier {
	return &LLMClassifier{client: client, model: modelName}
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, lead model.Lead) (*model.Classification, error) {
	if c.client == nil {
		return nil, eris.New("classify: no client configured")
	}

	prompt := fmt.Sprintf(`Rate this lead:
Company: %s
Contact: %s
Role: %s
Industry: %s
Website: %s

Respond with a JSON object: {"tier": <1-3>, "tier_reason": "<one sentence>", "warm_connections": <integer, 0 if unknown>}`,
		lead.CompanyName, lead.ContactPerson, lead.Role, lead.Industry, lead.Website)

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 256,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "classify: create message")
	}

	class, err := parseClassification(resp.Text())
	if err != nil {
		zap.L().Warn("unparseable classification output",
			zap.String("company", lead.CompanyName), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func parseClassification(content string) (*model.Classification, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var class model.Classification
	if err := json.Unmarshal([]byte(content), &class); err != nil {
		return nil, eris.Wrap(err, "classify: unmarshal")
	}
	if class.Tier < 1 || class.Tier > 3 {
		return nil, eris.Errorf("classify: tier %d out of range", class.Tier)
	}
	return &class, nil
}
