package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerationRequestDefaults(t *testing.T) {
	req := NewGenerationRequest("a lighthouse at dusk")

	assert.Equal(t, "a lighthouse at dusk", req.Prompt())
	assert.Equal(t, StepsFifty, req.Steps())
	assert.Equal(t, ModelBeautyRealism, req.Model())
	assert.Equal(t, SizeSmall, req.Size())
	assert.Equal(t, OrientationLandscape, req.Orientation())

	_, ok := req.NegativePrompt()
	assert.False(t, ok)
}

func TestGenerationRequestUpdatesReturnCopies(t *testing.T) {
	base := NewGenerationRequest("cat")
	updated := base.
		WithNegativePrompt("blurry").
		WithSteps(StepsTwoHundred).
		WithModel(ModelDreamReality).
		WithSize(SizeLarge).
		WithOrientation(OrientationPortrait)

	assert.Equal(t, StepsFifty, base.Steps())
	assert.Equal(t, ModelBeautyRealism, base.Model())
	_, ok := base.NegativePrompt()
	assert.False(t, ok)

	neg, ok := updated.NegativePrompt()
	assert.True(t, ok)
	assert.Equal(t, "blurry", neg)
	assert.Equal(t, StepsTwoHundred, updated.Steps())
	assert.Equal(t, ModelDreamReality, updated.Model())
	assert.Equal(t, SizeLarge, updated.Size())
	assert.Equal(t, OrientationPortrait, updated.Orientation())
}

func TestGenerationRequestJSON(t *testing.T) {
	b, err := json.Marshal(NewGenerationRequest("cat"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt":"cat","steps":50,"model":"beauty_realism","size":"small","orientation":"landscape"}`, string(b))

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "negative")

	b, err = json.Marshal(NewGenerationRequest("cat").WithNegativePrompt(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt":"cat","negative":"","steps":50,"model":"beauty_realism","size":"small","orientation":"landscape"}`, string(b))

	b, err = json.Marshal(NewGenerationRequest("cat").WithNegativePrompt("dogs"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "dogs", m["negative"])
}
