package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/cost"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
	"github.com/sells-group/leadgen-cli/pkg/perplexity"
)

// fallbackInstruction is used when instruction generation fails; the lead
// generation call still runs with a serviceable generic prompt.
const fallbackInstruction = "Find business leads matching the tenant's target industry, " +
	"company size and location preferences. For each lead provide the company name, " +
	"a named contact person with their role, and any available email, phone, website " +
	"and address."

const leadSystemPrompt = "You are a lead generation researcher. You find real, " +
	"currently operating companies and their decision makers using up to date web " +
	"information. Respond only with JSON."

// LLMSource generates leads in two model calls: a reasoning model turns the
// tenant's profile into a focused research instruction, then a web-browsing
// model executes that instruction and returns a structured lead list.
type LLMSource struct {
	anthropic      anthropic.Client
	perplexity     perplexity.Client
	anthropicModel string
	costs          *cost.Calculator
}

// NewLLMSource creates an LLMSource. Either client may be nil: without the
// reasoning client the fallback instruction is used, without the browsing
// client the source is disabled.
func NewLLMSource(ac anthropic.Client, pc perplexity.Client, anthropicModel string) *LLMSource {
	return &LLMSource{
		anthropic:      ac,
		perplexity:     pc,
		anthropicModel: anthropicModel,
		costs:          cost.NewCalculator(cost.DefaultRates()),
	}
}

// Method implements Source.
func (s *LLMSource) Method() model.Method { return model.MethodLLM }

// Fetch implements Source.
func (s *LLMSource) Fetch(ctx context.Context, c Criteria) ([]model.Lead, error) {
	log := zap.L().With(zap.String("source", string(model.MethodLLM)))

	if s.perplexity == nil {
		log.Warn("perplexity api key not configured, skipping generation")
		return nil, nil
	}

	instruction := s.generateInstruction(ctx, c, log)

	prompt := fmt.Sprintf(`%s

Tenant profile:
%s

Return a JSON array of at most %d leads. Each element must have these string
fields: company_name, contact_person, contact_email, role, address, phone,
website, industry. Use an empty string for anything you cannot find. Do not
invent contact emails. Return only the JSON array, no prose.`,
		instruction, buildBrief(c), c.MaxResults)

	resp, err := s.perplexity.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: leadSystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		log.Warn("lead generation call failed", zap.Error(err))
		return nil, nil
	}
	if len(resp.Choices) == 0 {
		log.Warn("lead generation returned no choices")
		return nil, nil
	}

	leads := parseLeads(resp.Choices[0].Message.Content)
	if len(leads) > c.MaxResults {
		leads = leads[:c.MaxResults]
	}

	log.Info("lead generation complete",
		zap.Int("results", len(leads)), zap.Int("citations", len(resp.Citations)),
		zap.Float64("estimated_cost_usd", s.costs.Perplexity(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)))
	return leads, nil
}

// generateInstruction asks the reasoning model for a tenant-specific research
// instruction. Any failure falls back to the generic instruction.
func (s *LLMSource) generateInstruction(ctx context.Context, c Criteria, log *zap.Logger) string {
	if s.anthropic == nil {
		return fallbackInstruction
	}

	prompt := fmt.Sprintf(`Write a concise research instruction for finding sales leads
for the tenant below. The instruction should name the industry, location,
company profile and the kinds of contacts to look for. Respond with the
instruction text only.

Tenant: %s
Admin notes: %s

%s`, c.TenantName, c.AdminNotes, buildBrief(c))

	resp, err := s.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.anthropicModel,
		MaxTokens: 1024,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		log.Warn("instruction generation failed, using fallback", zap.Error(err))
		return fallbackInstruction
	}

	log.Debug("instruction generated",
		zap.Float64("estimated_cost_usd", s.costs.Anthropic(s.anthropicModel, resp.Usage.InputTokens, resp.Usage.OutputTokens)))

	instruction := strings.TrimSpace(resp.Text())
	if instruction == "" {
		return fallbackInstruction
	}
	return instruction
}

// buildBrief renders the tenant preferences as labelled lines, skipping empty
// fields so the prompt stays focused.
func buildBrief(c Criteria) string {
	prefs := c.Preferences
	fields := []struct {
		label, value string
	}{
		{"Target industry", prefs.TargetIndustry},
		{"Company size", prefs.CompanySize},
		{"Location", prefs.Location()},
		{"Company type", prefs.CompanyType},
		{"Target roles", prefs.TargetRoles},
		{"Keywords", prefs.Keywords},
		{"Revenue range", prefs.RevenueRange},
		{"Technology stack", prefs.TechnologyStack},
		{"Funding stage", prefs.FundingStage},
		{"Notes", prefs.Notes},
	}

	var b strings.Builder
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	if b.Len() == 0 {
		return "No specific preferences recorded."
	}
	return strings.TrimRight(b.String(), "\n")
}

// generatedLead is the wire shape leads come back in. Kept separate from
// model.Lead so model output quirks stay contained here.
type generatedLead struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email"`
	Role          string `json:"role"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
}

// parseLeads extracts leads from model output. Accepts a bare JSON array, an
// object with a "leads" key, or a single lead object, with or without code
// fences. Malformed output yields an empty slice, never an error.
func parseLeads(content string) []model.Lead {
	content = stripFences(content)

	var raw []generatedLead
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(content), &obj); err != nil {
			zap.L().Warn("unparseable lead generation output", zap.Error(err))
			return nil
		}
		if inner, ok := obj["leads"]; ok {
			if err := json.Unmarshal(inner, &raw); err != nil {
				zap.L().Warn("unparseable lead generation output", zap.Error(err))
				return nil
			}
		} else {
			var single generatedLead
			if err := json.Unmarshal([]byte(content), &single); err != nil {
				zap.L().Warn("unparseable lead generation output", zap.Error(err))
				return nil
			}
			raw = []generatedLead{single}
		}
	}

	leads := make([]model.Lead, 0, len(raw))
	for _, g := range raw {
		company := strings.TrimSpace(g.CompanyName)
		if company == "" {
			company = model.UnknownCompany
		}
		person := strings.TrimSpace(g.ContactPerson)
		if person == "" {
			person = model.UnknownContact
		}
		leads = append(leads, model.Lead{
			CompanyName:   company,
			ContactPerson: person,
			ContactEmail:  strings.TrimSpace(g.ContactEmail),
			Role:          strings.TrimSpace(g.Role),
			Address:       strings.TrimSpace(g.Address),
			Phone:         strings.TrimSpace(g.Phone),
			Website:       strings.TrimSpace(g.Website),
			Industry:      strings.TrimSpace(g.Industry),
			Source:        model.MethodLLM,
		})
	}
	return leads
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
