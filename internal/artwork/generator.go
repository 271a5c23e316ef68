package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	"github.com/jmylchreest/skytint/internal/logging"
)

const (
	// DefaultAspectRatio suits a seat-back screen.
	DefaultAspectRatio = "16:9"

	// defaultNegativePrompt keeps text and borders out of generated art.
	// Only the Vertex AI backend accepts negative prompts.
	defaultNegativePrompt = "text, letters, words, watermark, logo, border, frame, blurry, low quality"
)

// Image is a generated image.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request describes one generation.
type Request struct {
	Prompt      string
	AspectRatio string
}

// Generator produces images from prompts.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Image, error)
}

// GenAIOptions configures a GenAIGenerator.
type GenAIOptions struct {
	APIKey   string
	Model    string
	Vertex   bool
	Project  string
	Location string

	// BaseURL overrides the API endpoint.
	BaseURL string

	Logger hclog.Logger
}

// GenAIGenerator generates images with Gemini or Imagen models.
type GenAIGenerator struct {
	client *genai.Client
	model  string
	vertex bool
	log    hclog.Logger
}

// NewGenAIGenerator creates a client for the configured backend.
func NewGenAIGenerator(ctx context.Context, opts GenAIOptions) (*GenAIGenerator, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := &genai.ClientConfig{}
	if opts.Vertex {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = opts.Project
		clientConfig.Location = opts.Location
	} else {
		if opts.APIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for the Gemini API backend\nGet one at: https://aistudio.google.com/api-keys")
		}
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = opts.APIKey
	}
	if opts.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = opts.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}

	log := logging.OrDiscard(opts.Logger)
	backendName := "Gemini API"
	if opts.Vertex {
		backendName = "Vertex AI"
	}
	log.Debug("gen ai client ready", "backend", backendName, "model", opts.Model)

	return &GenAIGenerator{
		client: client,
		model:  opts.Model,
		vertex: opts.Vertex,
		log:    log,
	}, nil
}

// isGeminiModel reports whether model generates images through
// GenerateContent rather than the Imagen GenerateImages API.
func isGeminiModel(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// Generate routes to the API matching the configured model.
func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (*Image, error) {
	if req.AspectRatio == "" {
		req.AspectRatio = DefaultAspectRatio
	}
	if isGeminiModel(g.model) {
		return g.generateWithGemini(ctx, req)
	}
	return g.generateWithImagen(ctx, req)
}

func (g *GenAIGenerator) generateWithImagen(ctx context.Context, req Request) (*Image, error) {
	genConfig := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    req.AspectRatio,
		OutputMIMEType: "image/png",
	}
	if g.vertex {
		genConfig.NegativePrompt = defaultNegativePrompt
	}

	g.log.Debug("calling GenerateImages", "model", g.model, "aspect_ratio", req.AspectRatio, "prompt", req.Prompt)

	response, err := g.client.Models.GenerateImages(ctx, g.model, req.Prompt, genConfig)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(response.GeneratedImages) == 0 {
		return nil, fmt.Errorf("no images generated in response")
	}

	generated := response.GeneratedImages[0]
	if generated.RAIFilteredReason != "" {
		return nil, fmt.Errorf("image was filtered by safety system: %s", generated.RAIFilteredReason)
	}
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("generated image has no image data")
	}

	mime := generated.Image.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: generated.Image.ImageBytes, MIMEType: mime}, nil
}

func (g *GenAIGenerator) generateWithGemini(ctx context.Context, req Request) (*Image, error) {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"Image"},
	}
	promptText := fmt.Sprintf("Generate an image with aspect ratio %s: %s", req.AspectRatio, req.Prompt)

	g.log.Debug("calling GenerateContent", "model", g.model, "prompt", promptText)

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(promptText), genConfig)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no image data in response")
	}

	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			g.log.Debug("received image data", "bytes", len(part.InlineData.Data), "mime", mime)
			return &Image{Data: part.InlineData.Data, MIMEType: mime}, nil
		}
	}
	return nil, fmt.Errorf("no inline image data found in response")
}

// IsRetryable reports whether err is a transient API failure worth retrying.
func IsRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}
