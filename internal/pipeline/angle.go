package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/algominds35/email-tool/internal/model"
)

const anglePrompt = `You are an expert sales researcher. Your job is to find the BEST ANGLE/REASON to reach out to this person.

LEAD INFORMATION:
- Name: %s
- Title: %s
- Company: %s

%sRESEARCH DATA:
%s

YOUR TASK:
Find the most compelling angle to open an email. Look for, in order of strength:

1. TRIGGER EVENTS (BEST):
   - Company just raised funding
   - Hiring spree (especially in relevant roles)
   - Product launch or new initiative
   - Expansion to new market
   - Recent promotion/role change

2. RECENT ACTIVITY:
   - LinkedIn posts about challenges
   - Shared articles about industry trends
   - Speaking at conferences
   - Celebrating milestones

3. PAIN POINTS (from context):
   - Job postings reveal gaps
   - Industry challenges they're facing
   - Company growth stage signals

4. TIMING SIGNALS:
   - Why would they care RIGHT NOW?
   - What changed recently?

SCORING:
- Trigger event with specific evidence = 80-100 confidence
- Recent activity with context = 60-80 confidence
- Industry pain point inference = 40-60 confidence
- Generic/no strong angle = 20-40 confidence

Return ONLY valid JSON in this exact format:
{
  "primary_angle": "One sentence: the best reason to reach out right now",
  "angle_type": "trigger_event|recent_activity|pain_point|timing_signal|generic",
  "confidence": 75,
  "supporting_evidence": "Specific quote, data point, or observation from research",
  "why_now": "One sentence: why this angle is timely/relevant RIGHT NOW",
  "backup_angles": ["Alternative angle 1", "Alternative angle 2"]
}`

const angleSystemPrompt = `You are an expert sales researcher who finds compelling, specific reasons to reach out to prospects. You always return valid JSON.`

const maxBackupAngles = 2

// SelectAngle asks the model for the single strongest outreach angle. It
// never fails: any provider error or malformed response degrades to a
// deterministic generic angle built from the lead's title and company.
func (p *Pipeline) SelectAngle(ctx context.Context, lead model.Lead, research *model.Research) *model.Angle {
	log := zap.L().With(zap.String("lead", lead.Email), zap.String("step", "angle"))

	userBlock := ""
	if lead.UserResearch != "" {
		userBlock = fmt.Sprintf(`=== USER-PROVIDED RESEARCH (PRIORITY!) ===
This is specific research the user found about this person. USE THIS FIRST!

%s

===================================

`, lead.UserResearch)
	}

	prompt := fmt.Sprintf(anglePrompt,
		lead.FullName(), orUnknown(lead.Title), orUnknown(lead.Company),
		userBlock, formatAngleResearch(research))

	temp := 0.3
	resp, err := p.ai.CreateMessage(ctx, messageRequest(p.cfg.Anthropic.Model, 400, angleSystemPrompt, prompt, &temp))
	if err != nil {
		log.Warn("angle: model call failed, using fallback", zap.Error(err))
		return fallbackAngle(lead)
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "angle")

	var angle model.Angle
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &angle); err != nil {
		log.Warn("angle: failed to parse model json, using fallback", zap.Error(err))
		return fallbackAngle(lead)
	}
	if strings.TrimSpace(angle.Primary) == "" {
		log.Warn("angle: empty primary angle, using fallback")
		return fallbackAngle(lead)
	}

	angle.Type = model.NormalizeAngleType(angle.Type)
	angle.Confidence = clamp(angle.Confidence, 0, 100)
	if len(angle.Backups) > maxBackupAngles {
		angle.Backups = angle.Backups[:maxBackupAngles]
	}
	return &angle
}

// fallbackAngle synthesizes a low-confidence generic angle from the lead's
// title and company so downstream generation always has something to anchor.
func fallbackAngle(lead model.Lead) *model.Angle {
	title := lead.Title
	if title == "" {
		title = "their industry"
	}
	role := lead.Title
	if role == "" {
		role = "professionals"
	}
	company := lead.Company
	if company == "" {
		company = "their company"
	}
	return &model.Angle{
		Primary:    fmt.Sprintf("Interested in %s's growth in %s", company, title),
		Type:       model.AngleGeneric,
		Confidence: 25,
		Evidence:   fmt.Sprintf("Working with similar %s at growing companies", role),
		WhyNow:     "Based on current market trends",
		Backups: []string{
			fmt.Sprintf("%s appears to be scaling", company),
			fmt.Sprintf("Common challenges for %s in this space", role),
		},
	}
}

// formatAngleResearch renders the research bundle for the angle prompt,
// recent activity and news first since those carry the strongest triggers.
func formatAngleResearch(research *model.Research) string {
	var b strings.Builder

	if research != nil && research.LinkedIn != nil {
		li := research.LinkedIn
		b.WriteString("=== LINKEDIN PROFILE ===\n")
		fmt.Fprintf(&b, "Headline: %s\n", orNA(li.Headline))
		fmt.Fprintf(&b, "Current Role: %s\n", orNA(li.CurrentRole))
		fmt.Fprintf(&b, "Company: %s\n", orNA(li.CurrentCompany))
		fmt.Fprintf(&b, "Location: %s\n\n", orNA(li.Location))

		if len(li.Posts) > 0 {
			b.WriteString("=== RECENT LINKEDIN ACTIVITY (IMPORTANT!) ===\n")
			for i, post := range li.Posts {
				date := ""
				if post.Date != "" {
					date = fmt.Sprintf("(%s)", post.Date)
				}
				fmt.Fprintf(&b, "Post %d %s:\n%s...\n\n", i+1, date, truncate(post.Text, 300))
			}
		}
	}

	if research != nil && research.News != nil && len(research.News.Articles) > 0 {
		b.WriteString("=== RECENT COMPANY NEWS (KEY TRIGGERS!) ===\n")
		for i, article := range research.News.Articles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, article.Title)
			if article.Description != "" {
				fmt.Fprintf(&b, "   %s...\n", truncate(article.Description, 150))
			}
			b.WriteString("\n")
		}
	}

	if research != nil && research.Website != nil && research.Website.Content != "" {
		b.WriteString("=== COMPANY WEBSITE ===\n")
		fmt.Fprintf(&b, "%s...\n\n", truncate(research.Website.Content, 400))
	}

	if b.Len() < 50 {
		return "=== LIMITED RESEARCH DATA ===\n" +
			"No specific LinkedIn posts, company news, or website data available.\n" +
			"Fall back to role-based and industry-based angles.\n"
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
