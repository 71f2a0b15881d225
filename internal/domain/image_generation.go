package domain

import (
	"context"
	"encoding/json"
	"time"
)

// GenerationRequest represents the parameters for image generation.
// The zero value is not usable; build one with NewGenerationRequest.
type GenerationRequest struct {
	prompt      string
	negative    *string
	steps       Steps
	model       Model
	size        Size
	orientation Orientation
}

// NewGenerationRequest creates a request for prompt with the default parameters
func NewGenerationRequest(prompt string) GenerationRequest {
	return GenerationRequest{
		prompt:      prompt,
		steps:       StepsFifty,
		model:       ModelBeautyRealism,
		size:        SizeSmall,
		orientation: OrientationLandscape,
	}
}

// WithNegativePrompt returns a copy of r with the negative prompt set
func (r GenerationRequest) WithNegativePrompt(prompt string) GenerationRequest {
	r.negative = &prompt
	return r
}

// WithSteps returns a copy of r with the step amount set
func (r GenerationRequest) WithSteps(steps Steps) GenerationRequest {
	r.steps = steps
	return r
}

// WithModel returns a copy of r with the model set
func (r GenerationRequest) WithModel(model Model) GenerationRequest {
	r.model = model
	return r
}

// WithSize returns a copy of r with the size set
func (r GenerationRequest) WithSize(size Size) GenerationRequest {
	r.size = size
	return r
}

// WithOrientation returns a copy of r with the orientation set
func (r GenerationRequest) WithOrientation(orientation Orientation) GenerationRequest {
	r.orientation = orientation
	return r
}

func (r GenerationRequest) Prompt() string { return r.prompt }

// NegativePrompt returns the negative prompt and whether one was set
func (r GenerationRequest) NegativePrompt() (string, bool) {
	if r.negative == nil {
		return "", false
	}
	return *r.negative, true
}

func (r GenerationRequest) Steps() Steps             { return r.steps }
func (r GenerationRequest) Model() Model             { return r.model }
func (r GenerationRequest) Size() Size               { return r.size }
func (r GenerationRequest) Orientation() Orientation { return r.orientation }

type generationRequestJSON struct {
	Prompt      string      `json:"prompt"`
	Negative    *string     `json:"negative,omitempty"`
	Steps       Steps       `json:"steps"`
	Model       Model       `json:"model"`
	Size        Size        `json:"size"`
	Orientation Orientation `json:"orientation"`
}

func (r GenerationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(generationRequestJSON{
		Prompt:      r.prompt,
		Negative:    r.negative,
		Steps:       r.steps,
		Model:       r.model,
		Size:        r.size,
		Orientation: r.orientation,
	})
}

// JobToken identifies a submitted request on the remote service
type JobToken string

// GeneratedImage is the finished image returned by the status endpoint
type GeneratedImage struct {
	ID          uint64 `json:"id"`
	Steps       Steps  `json:"steps"`
	Size        Size   `json:"size"`
	Model       Model  `json:"model"`
	CreditsUsed uint64 `json:"credits_used"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Raw         string `json:"raw"`
}

// ImageGenerator defines the operations offered by the image API
type ImageGenerator interface {
	// RequestImage submits a request and returns the token to poll with
	RequestImage(ctx context.Context, req GenerationRequest) (JobToken, error)

	// CheckStatus checks once whether the image for token is finished
	CheckStatus(ctx context.Context, token JobToken) (*GeneratedImage, error)

	// CheckAndWait polls until the image is finished or maxWait has passed.
	// A negative maxWait polls without a limit.
	CheckAndWait(ctx context.Context, token JobToken, maxWait time.Duration) (*GeneratedImage, error)
}
