package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/model"
)

const generateSystemPrompt = `You are an expert cold email copywriter who writes highly personalized, conversational emails that get replies. You always return valid JSON.`

const generatePrompt = `You are an expert cold email copywriter. Write a highly personalized cold email.

LEAD INFORMATION:
- Name: %s
- Title: %s
- Company: %s

%sRESEARCH DATA:
%s

SENDER'S BUSINESS CONTEXT:
- Company: %s
- Product: %s
- Value Proposition: %s
- Target Audience: %s

INSTRUCTIONS:
1. Write a 50-75 word personalized email body (NOT including subject line)
2. Reference specific recent activity from research (LinkedIn posts, company news, hiring)
3. Show you understand their specific situation or challenges
4. Include ONE clear, simple call-to-action (usually asking for a quick call)
5. Sound conversational and human, NOT robotic or salesy
6. DO NOT use overused phrases like:
   - "I hope this finds you well"
   - "I wanted to reach out"
   - "I came across your profile"
   - "I'd love to pick your brain"
7. Start with something specific about THEM (not you)
8. Keep it brief and scannable

Return ONLY valid JSON in this exact format:
{
  "subject": "subject line here (max 8 words, specific and intriguing)",
  "body": "email body here (50-75 words)",
  "summary": "brief 1-2 sentence summary of which research insights you used"
}`

// GenerateDraft writes the outreach email for a lead. When an angle is
// supplied the prompt opens with it so the email is anchored on the strongest
// reason to reach out; without one the model falls back to generic
// personalization from whatever research exists. Generation never fails:
// provider errors and malformed responses degrade to a deterministic
// template so a lead always ends with an email.
func (p *Pipeline) GenerateDraft(ctx context.Context, lead model.Lead, sender model.SenderContext, research *model.Research, angle *model.Angle) *model.Draft {
	log := zap.L().With(zap.String("lead", lead.Email), zap.String("step", "generate"))

	angleBlock := ""
	if angle != nil {
		angleBlock = fmt.Sprintf(`=== THE ANGLE (BUILD THE EMAIL AROUND THIS!) ===
Reason to reach out: %s
Why now: %s
Supporting evidence: %s

`, angle.Primary, angle.WhyNow, angle.Evidence)
	}

	prompt := fmt.Sprintf(generatePrompt,
		lead.FullName(), orUnknown(lead.Title), orUnknown(lead.Company),
		angleBlock, formatGenerateResearch(research),
		sender.CompanyName, sender.ProductDescription, sender.ValueProp, sender.TargetAudience)

	temp := 0.7
	resp, err := p.ai.CreateMessage(ctx, messageRequest(p.cfg.Anthropic.Model, 500, generateSystemPrompt, prompt, &temp))
	if err != nil {
		log.Warn("generate: model call failed, using fallback template", zap.Error(err))
		return fallbackDraft(lead, sender)
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "generate")

	var draft model.Draft
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &draft); err != nil {
		log.Warn("generate: failed to parse model json, using fallback template", zap.Error(err))
		return fallbackDraft(lead, sender)
	}
	if strings.TrimSpace(draft.Body) == "" {
		log.Warn("generate: empty body, using fallback template")
		return fallbackDraft(lead, sender)
	}
	if draft.Subject == "" {
		draft.Subject = "Quick question"
	}
	if draft.Summary == "" {
		draft.Summary = "Generated from available research"
	}
	return &draft
}

// fallbackDraft is the deterministic template used when generation fails.
// It keeps the body in the 50-75 word band with a single clear call ask.
func fallbackDraft(lead model.Lead, sender model.SenderContext) *model.Draft {
	company := lead.Company
	if company == "" {
		company = "your company"
	}
	title := lead.Title
	if title == "" {
		title = "operations"
	}

	subject := "Quick question"
	if lead.Company != "" {
		subject = fmt.Sprintf("Quick question about %s", lead.Company)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nCompanies like %s often juggle growth targets with limited bandwidth on the %s side. We %s, and the teams we work with usually see gains within the first month without adding headcount or extra overhead.\n\nWorth a quick fifteen-minute call to see whether this fits %s? Happy to work around your schedule.\n\nBest,",
		lead.FirstName, company, title, sender.ValueProp, company)

	return &model.Draft{
		Subject: subject,
		Body:    body,
		Summary: "Fallback template used due to generation error",
	}
}

// formatGenerateResearch renders the research bundle for the writing prompt.
func formatGenerateResearch(research *model.Research) string {
	var b strings.Builder

	if research != nil && research.LinkedIn != nil {
		li := research.LinkedIn
		b.WriteString("LINKEDIN PROFILE:\n")
		fmt.Fprintf(&b, "- Headline: %s\n", orNA(li.Headline))
		fmt.Fprintf(&b, "- Current Role: %s\n", orNA(li.CurrentRole))
		fmt.Fprintf(&b, "- Location: %s\n", orNA(li.Location))

		if len(li.Posts) > 0 {
			b.WriteString("\nRECENT LINKEDIN POSTS:\n")
			for i, post := range li.Posts {
				fmt.Fprintf(&b, "Post %d: %s...\n", i+1, truncate(post.Text, 200))
			}
		}
		b.WriteString("\n")
	}

	if research != nil && research.Website != nil {
		b.WriteString("COMPANY WEBSITE:\n")
		fmt.Fprintf(&b, "%s...\n\n", truncate(research.Website.Content, 500))
	}

	if research != nil && research.News != nil && len(research.News.Articles) > 0 {
		b.WriteString("RECENT COMPANY NEWS:\n")
		for i, article := range research.News.Articles {
			fmt.Fprintf(&b, "%d. %s: %s...\n", i+1, article.Title, truncate(article.Description, 100))
		}
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "No research data available. Write a professional cold email based on available lead information.\n"
	}
	return b.String()
}
