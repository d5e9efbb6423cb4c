package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medibook-server/internal/config"
)

const generateEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// Client calls the Gemini generateContent API for the two advice endpoints.
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Gemini wire types ---

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// BMIAdvice asks the model for a vegetarian-diet health analysis of the
// given BMI and returns the structured JSON it produces.
func (c *Client) BMIAdvice(ctx context.Context, bmi float64) (json.RawMessage, error) {
	prompt := fmt.Sprintf(`Given a BMI of %.2f, provide a detailed health analysis specifically for a vegetarian diet in the following JSON format:
{
    "bmi_category": "Underweight/Normal/Overweight/Obese",
    "health_implications": "A concise explanation of what this BMI means for health, considering a vegetarian lifestyle (150-200 words)",
    "diet_plan": {
        "recommended_foods": ["specific vegetarian food with brief benefit (e.g., 'Lentils - high in protein')", "at least 5 items"],
        "foods_to_avoid": ["specific vegetarian-unfriendly food with reason (e.g., 'Processed veggie burgers - high in sodium')", "at least 3 items"]
    },
    "exercise_plan": ["specific exercise suggestion with duration/frequency (e.g., '30 min brisk walking, 5 days/week')", "exactly 3 items"],
    "lifestyle_changes": ["specific actionable tip (e.g., 'Drink 8 glasses of water daily')", "exactly 3 items"]
}
Guidelines:
- Base the bmi_category strictly on standard ranges: Underweight (<18.5), Normal (18.5-24.9), Overweight (25-29.9), Obese (>=30).
- Tailor all recommendations to a vegetarian diet, avoiding meat-based suggestions.
- Provide practical, concise advice suitable for daily life.
- Return only the JSON object with no additional text or explanations outside the structure.`, bmi)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating BMI advice: %w", err)
	}
	return extractJSON(raw)
}

// RecipeSuggestions asks the model for three vegetarian meals built around
// the given ingredients and returns the structured JSON it produces.
func (c *Client) RecipeSuggestions(ctx context.Context, ingredients []string) (json.RawMessage, error) {
	list := strings.Join(ingredients, ", ")
	prompt := fmt.Sprintf(`Generate 3 creative and diverse meal suggestions that prominently feature the following ingredients: %s.
Include additional common ingredients as needed to make the recipes flavorful and complete and make sure the recipe must be veg.
Provide the response in the following JSON format:
{
    "meals": [
        {
            "meal": "Meal Name",
            "ingredients": ["%s", "additional ingredient 1", "additional ingredient 2"],
            "instructions": "Step-by-step cooking instructions with clear, concise steps separated by periods.",
            "prepTime": "X mins",
            "cookTime": "Y mins",
            "servings": Z,
            "difficulty": "Easy/Medium/Hard",
            "nutrition": {
                "calories": "Approximate calories",
                "protein": "Approximate protein in grams",
                "carbs": "Approximate carbs in grams",
                "fat": "Approximate fat in grams",
                "fiber": "Approximate fiber in grams",
                "sugar": "Approximate sugar in grams"
            }
        }
    ]
}
Ensure each meal:
- Uses all provided ingredients (%s) as key components.
- Has a variety of cooking methods (e.g., baking, frying, blending).
- Includes estimated nutritional information even if approximate.
- Returns exactly 3 meal suggestions with no additional text outside the JSON structure.`,
		list, strings.Join(ingredients, `", "`), list)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating meal suggestions: %w", err)
	}
	return extractJSON(raw)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GOOGLE_API_KEY is not set")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf(generateEndpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", err
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini API returned no candidates")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON pulls the JSON object out of a model reply, tolerating
// markdown code fences and stray whitespace. Models occasionally ignore
// the "JSON only" instruction, so a second, more aggressive cleanup pass
// runs before giving up.
func extractJSON(reply string) (json.RawMessage, error) {
	text := strings.TrimSpace(reply)

	if fenced := stripCodeFence(text); fenced != "" {
		text = fenced
	}

	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}

	cleaned := strings.NewReplacer("```json", "", "```", "", "\n", "", "\r", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	if json.Valid([]byte(cleaned)) {
		return json.RawMessage(cleaned), nil
	}

	return nil, fmt.Errorf("model returned invalid JSON")
}

// stripCodeFence returns the body of the first ```-fenced block, or "" when
// the text has no fence.
func stripCodeFence(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return ""
	}
	rest := text[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
