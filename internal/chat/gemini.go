// Package chat implements the drone side of the system: a Gemini-backed
// reply engine with a persona prompt, and the Discord message loop that
// feeds it.
package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Replier produces a chat reply for a user message. The drone message
// loop depends on this rather than on the Gemini client directly.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Gemini is a Replier over the Google GenAI API.
type Gemini struct {
	client  *genai.Client
	model   string
	persona string
}

// NewGemini creates a Gemini replier. model defaults to gemini-2.5-flash,
// persona to DefaultPersona.
func NewGemini(ctx context.Context, apiKey, model, persona string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if persona == "" {
		persona = DefaultPersona
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, persona: persona}, nil
}

// Reply generates a persona-conditioned reply to one user message. The
// persona travels as a system instruction so user text cannot displace it.
func (g *Gemini) Reply(ctx context.Context, message string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(message),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.persona, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}
	return text, nil
}
