// Package followup generates post-call follow-up emails. Two dispositions
// are covered: the prospect let the call go to voicemail, or they hung up
// as soon as they heard it was a cold call. Either way the email threads
// as a reply under the original cold email.
package followup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coldcall-cli/pkg/anthropic"
)

// Disposition selects which prompt the generator uses.
type Disposition string

const (
	// DispositionVoicemail follows up a call that went to voicemail.
	DispositionVoicemail Disposition = "voicemail"
	// DispositionHangup follows up a call the prospect cut short.
	DispositionHangup Disposition = "gfy"
)

// Request identifies the contact and the original email thread.
type Request struct {
	Disposition     Disposition
	FirstName       string
	CompanyName     string
	OriginalSubject string
}

// Generator produces follow-up email bodies.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator creates a Generator. Empty model or maxTokens fall back to
// the production values.
func NewGenerator(client anthropic.Client, model string, maxTokens int64) *Generator {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Generator{client: client, model: model, maxTokens: maxTokens}
}

// Generate returns the email body for the given disposition. Em dashes
// are stripped from the output; they read as generated text in an email.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	var prompt string
	switch req.Disposition {
	case DispositionHangup:
		prompt = hangupPrompt(req.FirstName, req.CompanyName, req.OriginalSubject)
	default:
		prompt = voicemailPrompt(req.FirstName, req.CompanyName, req.OriginalSubject)
	}

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		return "", eris.Wrapf(err, "followup: generate %s email", req.Disposition)
	}
	resp.Usage.LogCost(g.model, "followup")

	text := strings.TrimSpace(resp.Text)
	text = strings.ReplaceAll(text, "—", " - ")
	return text, nil
}

func voicemailPrompt(firstName, companyName, originalSubject string) string {
	return fmt.Sprintf(
		"You are Antonio. You're a real person, Head of Sales at a startup. "+
			"You just cold called %s at %s and left a voicemail. "+
			"Now you're firing off a quick follow-up email that will thread as a reply "+
			"under your original cold email (subject: %q).\n\n"+
			"THE SITUATION:\n"+
			"- Touch 1 was the cold email (they already have it, don't repeat ANY of it)\n"+
			"- Touch 2 was the voicemail you just left\n"+
			"- Touch 3 is THIS email - a quick note after hanging up the phone\n\n"+
			"WHAT THIS EMAIL SHOULD FEEL LIKE:\n"+
			"A human who just hung up the phone and is shooting a quick 3-line note. "+
			"Not a content machine that read a brief. You're not summarizing anything. "+
			"You're not referencing \"what I mentioned\" or \"the positioning gap\" or any "+
			"specific angle. They got the email. They got the VM. Now you're just being "+
			"direct: let's grab 20 minutes.\n\n"+
			"WRITE THIS:\n"+
			"- 2-4 sentences. That's it.\n"+
			"- Open with something natural like \"%s,\" or \"Hey %s,\" "+
			"- then mention you just left a VM\n"+
			"- The ask: coffee, lunch, or 20 minutes. You'll do all the prep, they just "+
			"show up. If it's not a fit they can tell you to kick rocks.\n"+
			"- Sign off as \"Antonio\" - no title, no company, no phone number\n\n"+
			"DO NOT:\n"+
			"- Reference the content of the original email (no \"the angle I mentioned\", "+
			"no \"that positioning gap\", no \"narrative tension\", no product names, no statistics)\n"+
			"- Re-pitch anything\n"+
			"- Use em dashes\n"+
			"- Include a subject line\n"+
			"- Include any preamble, labels, or commentary - output ONLY the email body\n\n"+
			"Go.",
		firstName, companyName, originalSubject, firstName, firstName,
	)
}

func hangupPrompt(firstName, companyName, originalSubject string) string {
	return fmt.Sprintf(
		"You are Antonio. You're Head of Sales at a startup. "+
			"You just cold called %s at %s and they hung up on you "+
			"the second they heard \"cold call.\" Now you're sending a follow-up email "+
			"that threads under your original cold email (subject: %q).\n\n"+
			"THE SITUATION:\n"+
			"- They got your cold email (touch 1)\n"+
			"- You called, they hung up immediately (touch 2)\n"+
			"- This email is touch 3\n\n"+
			"WHAT THIS EMAIL SHOULD FEEL LIKE:\n"+
			"Cheeky, self-aware, but not bitter. You're the kind of person who laughs when "+
			"someone hangs up and respects the move. You're not going to re-pitch them - they "+
			"already have the email for that. Instead, acknowledge the hang-up with humor, "+
			"then make it personal to THEIR world (their company, their role, what they're "+
			"probably dealing with day-to-day). Close with a meeting ask.\n\n"+
			"WRITE THIS:\n"+
			"- 3-5 sentences\n"+
			"- Open by acknowledging the hang-up with humor (e.g. \"Fair enough on the hang-up\" "+
			"or \"Respect the quick trigger\" - make it YOUR voice, not a template)\n"+
			"- 1-2 sentences about why 20 minutes with you would be worth it for THEM "+
			"specifically - not your product pitch, but what's in it for them given what "+
			"%s is dealing with right now\n"+
			"- Close with the ask: coffee, lunch, 20 minutes. Low commitment.\n"+
			"- Sign off as \"Antonio\" - no title, no company\n\n"+
			"DO NOT:\n"+
			"- Repeat the pitch from the original email (no quoting stats, no restating "+
			"the angle, no product positioning)\n"+
			"- Use em dashes\n"+
			"- Include a subject line\n"+
			"- Include any preamble, labels, or commentary - output ONLY the email body\n\n"+
			"Go.",
		firstName, companyName, originalSubject, companyName,
	)
}
