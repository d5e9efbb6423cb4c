package handlers

import (
	"math"
	"strings"

	"github.com/gin-gonic/gin"

	"medibook-server/internal/ai"
	"medibook-server/internal/utils"
)

// AIHandler proxies health questions to the generative AI client.
type AIHandler struct {
	Client *ai.Client
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(client *ai.Client) *AIHandler {
	return &AIHandler{Client: client}
}

// BMIAdviceRequest represents the request body for BMI analysis.
type BMIAdviceRequest struct {
	HeightCM float64 `json:"height" binding:"required"`
	WeightKG float64 `json:"weight" binding:"required"`
}

// BMIAdvice computes the caller's BMI and returns AI-generated analysis.
func (h *AIHandler) BMIAdvice(c *gin.Context) {
	var req BMIAdviceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.HeightCM <= 0 || req.WeightKG <= 0 {
		utils.BadRequest(c, "height and weight must be positive numbers")
		return
	}

	meters := req.HeightCM / 100
	bmi := math.Round(req.WeightKG/(meters*meters)*100) / 100

	advice, err := h.Client.BMIAdvice(c.Request.Context(), bmi)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate BMI analysis: "+err.Error())
		return
	}

	utils.Success(c, "BMI analysis generated successfully", gin.H{
		"bmi":      bmi,
		"analysis": advice,
	})
}

// RecipeRequest represents the request body for recipe suggestions.
type RecipeRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// RecipeSuggestions returns AI-generated vegetarian recipes built from the
// caller's ingredient list.
func (h *AIHandler) RecipeSuggestions(c *gin.Context) {
	var req RecipeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ingredients := normalizeIngredients(req.Ingredients)
	if len(ingredients) == 0 {
		utils.BadRequest(c, "at least one ingredient is required")
		return
	}

	recipes, err := h.Client.RecipeSuggestions(c.Request.Context(), ingredients)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate recipes: "+err.Error())
		return
	}

	utils.Success(c, "Recipes generated successfully", recipes)
}

// normalizeIngredients trims whitespace and drops empties and duplicates,
// keeping first-seen order.
func normalizeIngredients(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, ing := range raw {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		key := strings.ToLower(ing)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ing)
	}
	return out
}
