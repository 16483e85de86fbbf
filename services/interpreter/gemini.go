// File: services/interpreter/gemini.go
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"concierge/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiInterpreter extracts structured data with the Gemini API. Every call
// runs under the configured timeout so a slow model never stalls a booking
// flow.
type GeminiInterpreter struct {
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiInterpreter builds the production interpreter.
func NewGeminiInterpreter(apiKey string, timeout time.Duration) (*GeminiInterpreter, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiInterpreter{model: model, timeout: timeout}, nil
}

func (g *GeminiInterpreter) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInterpreter, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", ErrInterpreter)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// ExtractSlots parses a free-text slot description into concrete slots.
func (g *GeminiInterpreter) ExtractSlots(ctx context.Context, text string, refDate time.Time) ([]models.Slot, error) {
	prompt := fmt.Sprintf(`Read a practitioner's description of their available time slots and return ONLY a JSON array.

Text: %q

Rules:
1. Today is %s (%s).
2. Resolve relative days ("tomorrow", "on Monday") against that date, always into the future.
3. If a range plus a session length is given ("2pm to 6pm, hour-long sessions"), emit one slot per session, honouring any stated break between them.
4. If no location is stated, use %q for every slot.

Response format, nothing else:
[
  {"date": "2025-08-02", "start_time": "14:00", "end_time": "15:00", "location": "Sauna"}
]`, text, refDate.Format(models.DateLayout), refDate.Weekday(), "Sauna")

	out, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var slots []models.Slot
	if err := json.Unmarshal([]byte(stripFences(out)), &slots); err != nil {
		return nil, fmt.Errorf("%w: bad slot JSON: %v", ErrInterpreter, err)
	}

	valid := slots[:0]
	for _, s := range slots {
		if s.Validate() == nil {
			valid = append(valid, s)
		}
	}
	return valid, nil
}

// ExtractProfile parses a master's intake text into structured fields.
func (g *GeminiInterpreter) ExtractProfile(ctx context.Context, text string) (*Profile, error) {
	prompt := fmt.Sprintf(`Read a practitioner's intake text and return ONLY a JSON object with their name, the services they offer, their preferred location, and any concrete time slots they mention.

Intake text: %q

Response format, nothing else:
{"name": "...", "services": ["..."], "location_preference": "...", "slots": []}`, text)

	out, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal([]byte(stripFences(out)), &profile); err != nil {
		return nil, fmt.Errorf("%w: bad profile JSON: %v", ErrInterpreter, err)
	}
	return &profile, nil
}

// StyleDescription rewrites the raw intake text in the retreat's voice.
func (g *GeminiInterpreter) StyleDescription(ctx context.Context, raw string, profile *Profile) (string, error) {
	prompt := fmt.Sprintf(`Rewrite this practitioner's self-description as a short, warm, slightly whimsical persona blurb for a retreat's booking assistant. Two or three sentences, second person about the practitioner, no emoji spam.

Name: %s
Services: %s
Original text: %q`, profile.Name, strings.Join(profile.Services, ", "), raw)

	out, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// stripFences drops a markdown code fence around a JSON payload, which the
// model adds despite instructions often enough to matter.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
