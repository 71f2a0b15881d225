package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Steps is the number of diffusion steps used to generate an image
type Steps int

const (
	StepsFifty           Steps = 50
	StepsOneHundred      Steps = 100
	StepsOneHundredFifty Steps = 150
	StepsTwoHundred      Steps = 200
)

// AllSteps returns every step amount accepted by the API
func AllSteps() []Steps {
	return []Steps{StepsFifty, StepsOneHundred, StepsOneHundredFifty, StepsTwoHundred}
}

// ParseSteps converts a raw step amount into Steps
func ParseSteps(v int) (Steps, error) {
	switch s := Steps(v); s {
	case StepsFifty, StepsOneHundred, StepsOneHundredFifty, StepsTwoHundred:
		return s, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidStepAmount, v)
}

func (s Steps) String() string {
	return strconv.Itoa(int(s))
}

func (s Steps) MarshalJSON() ([]byte, error) {
	if _, err := ParseSteps(int(s)); err != nil {
		return nil, err
	}
	return json.Marshal(int(s))
}

func (s *Steps) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseSteps(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Model is one of the image models offered by the API
type Model string

const (
	ModelBeautyRealism    Model = "beauty_realism"
	ModelAestheticRealism Model = "aesthetic_realism"
	ModelAnimeRealism     Model = "anime_realism"
	ModelAnalogRealism    Model = "analog_realism"
	ModelDreamReality     Model = "dream_reality"
	ModelStableDiffusion  Model = "stable_diffusion"
	ModelToonAnimated     Model = "toon_animated"
	ModelFantasyAnimated  Model = "fantasy_animated"
)

// AllModels returns every model accepted by the API
func AllModels() []Model {
	return []Model{
		ModelBeautyRealism,
		ModelAestheticRealism,
		ModelAnimeRealism,
		ModelAnalogRealism,
		ModelDreamReality,
		ModelStableDiffusion,
		ModelToonAnimated,
		ModelFantasyAnimated,
	}
}

// ParseModel converts a raw model name into Model
func ParseModel(v string) (Model, error) {
	for _, m := range AllModels() {
		if string(m) == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidModel, v)
}

func (m Model) String() string {
	return string(m)
}

func (m Model) MarshalJSON() ([]byte, error) {
	if _, err := ParseModel(string(m)); err != nil {
		return nil, err
	}
	return json.Marshal(string(m))
}

func (m *Model) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseModel(v)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Size is the output size of the image
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// AllSizes returns every size accepted by the API
func AllSizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge}
}

// ParseSize converts a raw size name into Size
func ParseSize(v string) (Size, error) {
	switch s := Size(v); s {
	case SizeSmall, SizeMedium, SizeLarge:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSize, v)
}

func (s Size) String() string {
	return string(s)
}

func (s Size) MarshalJSON() ([]byte, error) {
	if _, err := ParseSize(string(s)); err != nil {
		return nil, err
	}
	return json.Marshal(string(s))
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseSize(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Orientation is the aspect of the image
type Orientation string

const (
	OrientationSquare    Orientation = "square"
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// AllOrientations returns every orientation accepted by the API
func AllOrientations() []Orientation {
	return []Orientation{OrientationSquare, OrientationLandscape, OrientationPortrait}
}

// ParseOrientation converts a raw orientation name into Orientation
func ParseOrientation(v string) (Orientation, error) {
	switch o := Orientation(v); o {
	case OrientationSquare, OrientationLandscape, OrientationPortrait:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrientation, v)
}

func (o Orientation) String() string {
	return string(o)
}

func (o Orientation) MarshalJSON() ([]byte, error) {
	if _, err := ParseOrientation(string(o)); err != nil {
		return nil, err
	}
	return json.Marshal(string(o))
}

func (o *Orientation) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseOrientation(v)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
