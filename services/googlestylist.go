package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"stylistapi/models"
)

// LLMModelName identifies a Gemini model in the fallback list.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	Flash20
	Pro25
	FlashLite25
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

// DefaultModelFallback is ordered cheapest first, each entry is tried once per
// request and the first success wins.
var DefaultModelFallback = []LLMModelName{Flash25, Flash20, Pro25}

// ParseModelFallback reads a whitespace-separated list of model ids, for the
// GEMINI_MODEL_FALLBACK override. Unknown ids are skipped.
func ParseModelFallback(raw string) []LLMModelName {
	var out []LLMModelName
	for _, token := range strings.Fields(raw) {
		switch token {
		case "gemini-2.5-pro":
			out = append(out, Pro25)
		case "gemini-2.5-flash":
			out = append(out, Flash25)
		case "gemini-2.5-flash-lite":
			out = append(out, FlashLite25)
		case "gemini-2.0-flash":
			out = append(out, Flash20)
		default:
			fmt.Printf("Unknown model id in fallback list, skipping: %s\n", token)
		}
	}
	return out
}

// OverloadedMessage is the graceful-degradation chat reply once every fallback
// model has failed.
const OverloadedMessage = "I'm currently overwhelmed with fashion requests (High Traffic). Please try again in a moment."

// FallbackReply is the fixed reply shape returned when all models fail.
func FallbackReply() *models.ModelReply {
	return &models.ModelReply{
		Text:    OverloadedMessage,
		Sources: []models.Source{},
	}
}

var (
	// ErrAssetProcessingFailed means the provider rejected the uploaded video.
	ErrAssetProcessingFailed = errors.New("video processing failed by gemini")
	// ErrAssetProcessingTimeout means the asset never left the processing state
	// before the polling deadline.
	ErrAssetProcessingTimeout = errors.New("video processing timed out")
)

// StylistServiceProvider is the AI orchestration surface used by controllers.
type StylistServiceProvider interface {
	AnalyzeVideo(ctx context.Context, videoPath string, lat, lon *float64) (*models.Inventory, error)
	GeneratePersona(ctx context.Context, inventory *models.Inventory, lat, lon *float64) *models.ModelReply
	Chat(ctx context.Context, userMessage string, history []models.ChatTurn, inventory []models.ClothingItem, lat, lon *float64) (*models.ModelReply, error)
}

const inventorySystemPrompt = `You are an expert fashion stylist. Analyze the video frame by frame and identify every distinct garment. Return ONLY a JSON object with an "inventory" list where each item has: id, type, subtype, primary_color, patterns, season, formality (1-10), search_tags, emoji and timestamp_seconds (the moment the item is best visible). Also return a short "welcome_message" greeting the user about their new wardrobe and a "suggestion_starter" question they could ask next. Make sure the response is valid JSON and nothing else.`

var inventoryResponseSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"inventory": {
			Type: "array",
			Items: &genai.Schema{
				Type: "object",
				Properties: map[string]*genai.Schema{
					"id":                {Type: "string"},
					"type":              {Type: "string"},
					"subtype":           {Type: "string"},
					"primary_color":     {Type: "string"},
					"patterns":          {Type: "array", Items: &genai.Schema{Type: "string"}},
					"season":            {Type: "string"},
					"formality":         {Type: "integer"},
					"search_tags":       {Type: "array", Items: &genai.Schema{Type: "string"}},
					"emoji":             {Type: "string"},
					"timestamp_seconds": {Type: "number"},
				},
				Required: []string{"id", "type", "primary_color", "formality"},
			},
		},
		"suggestion_starter": {Type: "string"},
		"welcome_message":    {Type: "string"},
	},
	Required: []string{"inventory"},
}

// GoogleStylistService drives the Gemini upload/poll/generate pipelines. It
// holds no per-request state, concurrent requests are independent.
type GoogleStylistService struct {
	Credentials  *CredentialPool
	Weather      WeatherServiceProvider
	Fallback     []LLMModelName
	PollInterval time.Duration
	PollDeadline time.Duration

	// seams for tests, default to the real genai calls
	connect     func(ctx context.Context) (*genai.Client, error)
	uploadVideo func(ctx context.Context, client *genai.Client, filePath string) (*genai.File, error)
	getFile     func(ctx context.Context, client *genai.Client, name string) (*genai.File, error)
	generate    func(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func NewGoogleStylistService(pool *CredentialPool, weather WeatherServiceProvider) *GoogleStylistService {
	service := &GoogleStylistService{
		Credentials:  pool,
		Weather:      weather,
		Fallback:     DefaultModelFallback,
		PollInterval: 2 * time.Second,
		PollDeadline: 5 * time.Minute,
		uploadVideo:  tryUploadVideo,
		getFile: func(ctx context.Context, client *genai.Client, name string) (*genai.File, error) {
			return client.Files.Get(ctx, name, nil)
		},
		generate: func(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return client.Models.GenerateContent(ctx, model, contents, config)
		},
	}
	service.connect = service.newClient
	return service
}

func (s *GoogleStylistService) fallbackModels() []LLMModelName {
	if len(s.Fallback) == 0 {
		return DefaultModelFallback
	}
	return s.Fallback
}

// newClient draws a fresh random credential from the pool per external call.
func (s *GoogleStylistService) newClient(ctx context.Context) (*genai.Client, error) {
	key, err := s.Credentials.Select()
	if err != nil {
		return nil, err
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
}

func tryUploadVideo(ctx context.Context, client *genai.Client, filePath string) (*genai.File, error) {
	maxUploadTimes := 3
	var genFile *genai.File
	var err error
	for i := range maxUploadTimes {
		genFile, err = client.Files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{})
		if err == nil {
			fmt.Println("[Analyze] Video uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("[Analyze] Error uploading video %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload video after %d attempts: %s: %v", maxUploadTimes, filePath, err)
}

// waitForAsset polls the asset state every PollInterval until it leaves
// PROCESSING, capped by PollDeadline so a stuck asset cannot hang the request.
func (s *GoogleStylistService) waitForAsset(ctx context.Context, client *genai.Client, file *genai.File) (*genai.File, error) {
	deadline := time.Now().Add(s.PollDeadline)
	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: asset %s still processing after %v", ErrAssetProcessingTimeout, file.Name, s.PollDeadline)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.PollInterval):
		}
		fmt.Println("[Analyze] Processing video...")
		refreshed, err := s.getFile(ctx, client, file.Name)
		if err != nil {
			return nil, fmt.Errorf("asset status poll failed for %s: %w", file.Name, err)
		}
		file = refreshed
	}
	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("%w: asset %s", ErrAssetProcessingFailed, file.Name)
	}
	return file, nil
}

// AnalyzeVideo uploads the wardrobe video, waits until the asset is active and
// runs a single JSON-constrained generation. There is no model fallback here,
// an upstream generation error propagates to the caller.
func (s *GoogleStylistService) AnalyzeVideo(ctx context.Context, videoPath string, lat, lon *float64) (*models.Inventory, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	genFile, err := s.uploadVideo(ctx, client, videoPath)
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}

	genFile, err = s.waitForAsset(ctx, client, genFile)
	if err != nil {
		sentry.CaptureException(err)
		return nil, err
	}

	fmt.Println("[Analyze] Video active. Generating inventory for", genFile.Name)
	parts := []*genai.Part{
		{FileData: &genai.FileData{FileURI: genFile.URI, MIMEType: genFile.MIMEType}},
		{Text: "Catalog every distinct clothing item visible in this wardrobe video."},
	}
	modelName := s.fallbackModels()[0]
	result, err := s.generate(ctx, client, modelName.String(), []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   inventoryResponseSchema,
		CandidateCount:   1,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: inventorySystemPrompt}},
		},
	})
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("inventory generation failed: %w", err)
	}

	// MIME type is constrained to JSON, no markdown stripping needed here
	var inventory models.Inventory
	if err := json.Unmarshal([]byte(result.Text()), &inventory); err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("inventory response is not valid JSON: %w", err)
	}

	if len(inventory.Items) > 0 {
		if persona := s.GeneratePersona(ctx, &inventory, lat, lon); persona != nil && persona.Text != "" {
			inventory.WelcomeMessage = persona.Text
		}
	}
	return &inventory, nil
}

// GeneratePersona asks for a narrative wardrobe summary with web-search
// grounding, walking the fallback model list. A nil result means every model
// failed, the caller keeps its unenriched welcome message.
func (s *GoogleStylistService) GeneratePersona(ctx context.Context, inventory *models.Inventory, lat, lon *float64) *models.ModelReply {
	inventoryJSON, err := json.Marshal(inventory.Items)
	if err != nil {
		return nil
	}

	prompt := fmt.Sprintf(`You are an expert fashion stylist. Here is the user's wardrobe inventory as JSON:
%s

Write a warm narrative style summary of this wardrobe covering three analyses: vibe coherence, color palette and trend spotting. Use current fashion trends from the web where relevant. Return ONLY a JSON object: {"text": string, "related_item_ids": array of the item ids you reference}.`, string(inventoryJSON))
	if weather := s.weatherSentence(ctx, lat, lon); weather != "" {
		prompt += "\nCurrent weather at the user's location: " + weather + "."
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	for _, modelName := range s.fallbackModels() {
		client, err := s.connect(ctx)
		if err != nil {
			sentry.CaptureException(err)
			if errors.Is(err, ErrNoCredentials) {
				return nil
			}
			continue
		}
		result, err := s.generate(ctx, client, modelName.String(), contents, &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		})
		if err != nil {
			fmt.Printf("[Persona] Model %s failed: %v\n", modelName, err)
			sentry.CaptureException(err)
			continue
		}
		if reply := ParseModelReply(result.Text()); reply.Text != "" {
			return reply
		}
	}
	return nil
}

// Chat answers one grounded chat turn. The only error it returns is an empty
// credential pool, every per-model failure is swallowed and the next fallback
// model is tried; once the list is exhausted the fixed overloaded reply is
// returned instead of an error.
func (s *GoogleStylistService) Chat(ctx context.Context, userMessage string, history []models.ChatTurn, inventory []models.ClothingItem, lat, lon *float64) (*models.ModelReply, error) {
	inventoryJSON, err := json.Marshal(inventory)
	if err != nil {
		inventoryJSON = []byte("[]")
	}

	systemPrompt := fmt.Sprintf(`You are a personal fashion stylist. Ground every recommendation in the user's wardrobe inventory provided below as JSON. Suggest complete outfits from these garments and use current fashion trends from the web where helpful.
Respond ONLY with a JSON object: {"text": string, "related_item_ids": array of the ids of inventory items your advice refers to}.
Never mention raw item identifiers inside the "text" field, describe the garments naturally instead.

User's wardrobe inventory:
%s`, string(inventoryJSON))
	if weather := s.weatherSentence(ctx, lat, lon); weather != "" {
		systemPrompt += fmt.Sprintf("\nCurrent weather at the user's location: %s. Adapt your recommendations to this weather.", weather)
	}

	var contents []*genai.Content
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if turn.Role == models.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	for _, modelName := range s.fallbackModels() {
		client, err := s.connect(ctx)
		if err != nil {
			if errors.Is(err, ErrNoCredentials) {
				return nil, err
			}
			sentry.CaptureException(err)
			continue
		}
		result, err := s.generate(ctx, client, modelName.String(), contents, &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt}},
			},
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		})
		if err != nil {
			fmt.Printf("[Chat] Model %s failed: %v\n", modelName, err)
			sentry.CaptureException(err)
			continue
		}
		reply := ParseModelReply(result.Text())
		reply.RelatedItemIDs = FilterKnownItemIDs(reply.RelatedItemIDs, inventory)
		reply.Sources = extractSources(result)
		return reply, nil
	}
	return FallbackReply(), nil
}

func (s *GoogleStylistService) weatherSentence(ctx context.Context, lat, lon *float64) string {
	if lat == nil || lon == nil || s.Weather == nil {
		return ""
	}
	snapshot := s.Weather.Fetch(ctx, *lat, *lon)
	if snapshot == nil {
		return ""
	}
	return snapshot.String()
}

// FilterKnownItemIDs drops ids the model invented that are not present in the
// supplied inventory. With an empty inventory there is nothing to validate
// against and the ids pass through unchanged.
func FilterKnownItemIDs(ids []string, inventory []models.ClothingItem) []string {
	if len(ids) == 0 || len(inventory) == 0 {
		return ids
	}
	known := make(map[string]bool, len(inventory))
	for _, item := range inventory {
		known[item.ID] = true
	}
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

func extractSources(result *genai.GenerateContentResponse) []models.Source {
	sources := []models.Source{}
	for _, cand := range result.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			sources = append(sources, models.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return sources
}
