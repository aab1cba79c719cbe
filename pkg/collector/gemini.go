package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/marek-kar/telltale/pkg/logger"
	"github.com/marek-kar/telltale/pkg/model"
)

var ErrEmptyResponse = errors.New("empty model response")

// ContentGenerator is the slice of the genai client the extractor needs;
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiExtractor struct {
	models      ContentGenerator
	model       string
	temperature float32
	prompt      string
	log         logger.Logger
}

func NewGeminiExtractor(ctx context.Context, apiKey string, vocabulary []model.IndicatorID, opts Options, log logger.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return NewExtractor(client.Models, vocabulary, opts, log), nil
}

func NewExtractor(models ContentGenerator, vocabulary []model.IndicatorID, opts Options, log logger.Logger) *GeminiExtractor {
	return &GeminiExtractor{
		models:      models,
		model:       opts.Model,
		temperature: opts.Temperature,
		prompt:      BuildPrompt(vocabulary),
		log:         log,
	}
}

func (g *GeminiExtractor) Extract(ctx context.Context, img Image) (model.RawObservation, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(g.prompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return model.RawObservation{}, fmt.Errorf("generate content: %w", err)
	}
	g.log.Debugf(ctx, "gemini %s answered in %s", g.model, time.Since(start).Round(time.Millisecond))

	return ParseObservation(resp.Text())
}

// ParseObservation decodes the model's JSON reply, tolerating a markdown
// code fence around it.
func ParseObservation(text string) (model.RawObservation, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return model.RawObservation{}, ErrEmptyResponse
	}
	var raw model.RawObservation
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.RawObservation{}, fmt.Errorf("decode observation: %w", err)
	}
	return raw, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func BuildPrompt(vocabulary []model.IndicatorID) string {
	ids := make([]string, 0, len(vocabulary))
	for _, id := range vocabulary {
		if id != model.IndicatorOther {
			ids = append(ids, string(id))
		}
	}

	var b strings.Builder
	b.WriteString("You are reading a photograph of a vehicle instrument cluster. Report only what is visible; do not diagnose.\n\n")
	b.WriteString("1. image_usable: false if the photo is blurred, cropped or is not a dashboard.\n")
	b.WriteString("2. rpm: your best estimate of the tachometer needle in r/min (0 when resting on zero). Omit if unreadable.\n")
	b.WriteString("3. indicators: every warning lamp that is lit, regardless of colour. Use these ids where they apply: ")
	b.WriteString(strings.Join(ids, ", "))
	b.WriteString(". For any other lit lamp use a short UPPER_SNAKE_CASE name. Use [] when none are lit.\n\n")
	b.WriteString(`Reply with JSON only: {"image_usable": true, "rpm": 0, "indicators": ["ENGINE_FAULT"]}`)
	return b.String()
}
