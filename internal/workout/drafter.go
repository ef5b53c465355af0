package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ExerciseDrafter drafts new catalog exercises using the OpenAI API.
type ExerciseDrafter struct {
	client openai.Client
	model  openai.ChatModel
}

// NewExerciseDrafter creates a new exercise drafter.
func NewExerciseDrafter(openaiAPIKey string, opts ...option.RequestOption) *ExerciseDrafter {
	opts = append([]option.RequestOption{option.WithAPIKey(openaiAPIKey)}, opts...)
	return &ExerciseDrafter{
		client: openai.NewClient(opts...),
		model:  openai.ChatModelGPT4o2024_08_06,
	}
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// exerciseJSONSchema describes an Exercise restricted to the closed enumerations of the planner.
func exerciseJSONSchema() map[string]any {
	muscles := enumStrings(muscleGroups)
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"primaryMuscleGroup": map[string]any{
				"type": "string",
				"enum": muscles,
			},
			"secondaryMuscleGroups": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": muscles},
			},
			"exerciseType": map[string]any{
				"type": "string",
				"enum": enumStrings([]ExerciseType{ExerciseTypeCompound, ExerciseTypeIsolation}),
			},
			"equipment": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": enumStrings(equipmentTags)},
			},
			"difficultyLevel": map[string]any{
				"type": "string",
				"enum": enumStrings([]DifficultyLevel{
					DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced,
				}),
			},
			"instructions": map[string]any{"type": "string"},
		},
		"required": []string{
			"name", "primaryMuscleGroup", "secondaryMuscleGroups", "exerciseType", "equipment",
			"difficultyLevel", "instructions",
		},
		"additionalProperties": false,
	}
}

// Draft asks the model for a new exercise with the given name.
func (d *ExerciseDrafter) Draft(ctx context.Context, name string) (Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Exercise{}, errors.New("exercise name cannot be empty")
	}

	prompt := fmt.Sprintf(`Describe the resistance training exercise %q for a workout planner.
Pick the single muscle group it trains most as primaryMuscleGroup and list other significantly involved
muscle groups as secondaryMuscleGroups, never repeating the primary one.
Classify it as compound when several joints move, otherwise isolation.
List every piece of equipment it needs. Rate how hard it is to learn as difficultyLevel.
Write instructions as two or three plain sentences focused on proper form.`, name)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "exercise",
		Description: openai.String("A resistance training exercise in the planner catalog"),
		Schema:      exerciseJSONSchema(),
		Strict:      openai.Bool(true),
	}

	chat, err := d.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct // one variant.
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{ //nolint:exhaustruct // type has a default.
					JSONSchema: schemaParam,
				},
			},
			Model: d.model,
		})
	if err != nil {
		return Exercise{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Exercise{}, errors.New("chat completion returned no choices")
	}

	return parseDraft(chat.Choices[0].Message.Content, name)
}

// parseDraft decodes a model response into a catalog exercise with a generated id.
func parseDraft(content string, name string) (Exercise, error) {
	var exercise Exercise
	if err := json.Unmarshal([]byte(content), &exercise); err != nil {
		return Exercise{}, fmt.Errorf("parse exercise response: %w", err)
	}
	if exercise.Name == "" {
		exercise.Name = name
	}
	if exercise.SecondaryMuscleGroups == nil {
		exercise.SecondaryMuscleGroups = []MuscleGroup{}
	}
	exercise.ID = draftID(exercise)
	if err := exercise.validate(); err != nil {
		return Exercise{}, fmt.Errorf("validate drafted exercise: %w", err)
	}
	return exercise, nil
}

// draftID derives a stable id from the primary muscle group and the name.
func draftID(e Exercise) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(e.Name))
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return fmt.Sprintf("%s-custom-%s", e.PrimaryMuscleGroup, slug)
}
