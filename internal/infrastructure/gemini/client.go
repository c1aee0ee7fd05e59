package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxDrafts = 3

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.SetTemperature(0.8)

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}

// GenerateDescriptions drafts short profile descriptions for a study-buddy
// directory. A nil client or any model failure yields the fallback drafts;
// the second return value reports whether the model produced them.
func (c *GeminiClient) GenerateDescriptions(ctx context.Context, name, course string, interests []string) ([]string, bool) {
	if c == nil || c.model == nil {
		return FallbackDescriptions(name, course, interests), false
	}

	prompt := fmt.Sprintf(`
		Write %d short profile descriptions for a university study-buddy directory.
		Student name: %s
		Course: %s
		Interests: %s

		Each description is 1-2 sentences in first person, friendly, and mentions
		what the student would like to study together.
		Output: JSON array of strings. Example: ["I'm...", "Hi..."]
	`, maxDrafts, name, course, strings.Join(interests, ", "))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		fmt.Printf("⚠️  [Descriptions] Gemini API unavailable, using fallback drafts: %v\n", err)
		return FallbackDescriptions(name, course, interests), false
	}

	drafts := parseDrafts(responseText(resp))
	if len(drafts) == 0 {
		return FallbackDescriptions(name, course, interests), false
	}
	return drafts, true
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

// parseDrafts accepts a JSON array, optionally fenced as markdown, or falls
// back to one draft per non-empty line.
func parseDrafts(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		raw = strings.Split(text, "\n")
	}

	drafts := make([]string, 0, maxDrafts)
	for _, d := range raw {
		d = strings.TrimSpace(d)
		d = strings.TrimLeft(d, "-*0123456789. ")
		d = strings.Trim(d, `"`)
		if d == "" || d == "[" || d == "]" {
			continue
		}
		drafts = append(drafts, d)
		if len(drafts) == maxDrafts {
			break
		}
	}
	return drafts
}

// FallbackDescriptions are deterministic drafts used when the model is not
// available.
func FallbackDescriptions(name, course string, interests []string) []string {
	first := strings.Fields(name)
	who := "I"
	if len(first) > 0 {
		who = "I'm " + first[0] + " and I"
	}
	if course == "" {
		course = "my course"
	}

	topics := "new topics"
	switch len(interests) {
	case 0:
	case 1:
		topics = interests[0]
	default:
		topics = strings.Join(interests[:len(interests)-1], ", ") + " and " + interests[len(interests)-1]
	}

	return []string{
		fmt.Sprintf("%s study %s. Looking for a buddy to go through %s together.", who, course, topics),
		fmt.Sprintf("Happy to share notes on %s and compare approaches before exams.", topics),
		fmt.Sprintf("Studying %s and always up for a focused group session. Ping me!", course),
	}
}
