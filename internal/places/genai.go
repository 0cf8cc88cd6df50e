package places

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/welcometomycity/citycore/internal/models"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash"

// GenAIGenerator generates places with Google's Gemini API using structured JSON output
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a generator. It returns ErrNotConfigured without an API key.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{client: client, model: model}, nil
}

// Model returns the model name
func (g *GenAIGenerator) Model() string {
	return g.model
}

type generatedList struct {
	Places []models.Place `json:"places"`
}

// Generate asks the model for 10-15 attractions in city
func (g *GenAIGenerator) Generate(ctx context.Context, city models.City) ([]models.Place, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   placesSchema(),
		Temperature:      genai.Ptr[float32](0.4),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(city)), config)
	if err != nil {
		return nil, Classify(fmt.Errorf("GenAI generate failed: %w", err))
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var list generatedList
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return list.Places, nil
}

func prompt(city models.City) string {
	station := "the nearest metro station name"
	if !city.HasMetro {
		station = "'N/A' (the city has no metro)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "List 12 to 15 well-known tourist and sightseeing places in %s, %s, India.\n\n", city.Name, city.State)
	b.WriteString("Mix these categories: historical monuments and heritage sites (historical), ")
	b.WriteString("museums, theatres and galleries (cultural), temples, mosques, churches and gurudwaras (religious), ")
	b.WriteString("food markets and food streets (food-markets), parks, gardens, lakes and beaches (nature).\n\n")
	b.WriteString("For each place give:\n")
	b.WriteString("- a kebab-case id and the official name\n")
	b.WriteString("- accurate real-world latitude and longitude\n")
	b.WriteString("- a 2-3 sentence description for visitors\n")
	b.WriteString("- the best time to visit and the entry fee\n")
	fmt.Fprintf(&b, "- for nearby_station, %s\n", station)
	b.WriteString("- a 3-5 word image_query describing the place\n\n")
	b.WriteString("Prefer places that are genuinely worth visiting and spread across different parts of the city.")
	return b.String()
}

func placesSchema() *genai.Schema {
	categories := make([]string, 0, len(models.AllCategories()))
	for _, c := range models.AllCategories() {
		categories = append(categories, string(c))
	}

	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}

	place := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":             str("URL-friendly unique identifier (kebab-case)"),
			"name":           str("Official name of the place"),
			"category":       {Type: genai.TypeString, Enum: categories, Description: "Category of the place"},
			"lat":            {Type: genai.TypeNumber, Description: "Latitude"},
			"lng":            {Type: genai.TypeNumber, Description: "Longitude"},
			"description":    str("2-3 sentence description for tourists"),
			"best_time":      str("Best time to visit, with hours if applicable"),
			"entry_fee":      str("Entry fee, with Indian and foreign prices if different"),
			"nearby_station": str("Nearest metro station name, or N/A"),
			"image_query":    str("Short 3-5 word description for a placeholder image"),
		},
		Required: []string{
			"id", "name", "category", "lat", "lng", "description",
			"best_time", "entry_fee", "nearby_station", "image_query",
		},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"places": {
				Type:     genai.TypeArray,
				Items:    place,
				MinItems: genai.Ptr[int64](MinGenerated),
				MaxItems: genai.Ptr[int64](MaxGenerated),
			},
		},
		Required: []string{"places"},
	}
}
