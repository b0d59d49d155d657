package generation

import (
	"fmt"
	"strings"
)

// Level is the difficulty the generated questions should target.
type Level string

// Supported difficulty levels.
const (
	LevelEasy   Level = "EASY"
	LevelMedium Level = "MEDIUM"
	LevelHard   Level = "HARD"
	LevelMixed  Level = "MIXED"
)

// DefaultLevel is used when a request names no level.
const DefaultLevel = LevelMedium

// DefaultLanguage is used when a request names no language.
const DefaultLanguage = "English"

// ParseLevel parses name case-insensitively. An empty name yields DefaultLevel.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return DefaultLevel, nil
	}

	l := Level(name)
	switch l {
	case LevelEasy, LevelMedium, LevelHard, LevelMixed:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// Instruction describes to the model what kind of questions the level asks for.
func (l Level) Instruction() string {
	switch l {
	case LevelEasy:
		return "Create basic questions that test fundamental understanding and recall"
	case LevelHard:
		return "Create advanced questions that test analysis, synthesis, and evaluation"
	case LevelMixed:
		return "Create a mix of easy, medium, and hard questions"
	default:
		return "Create intermediate questions that test comprehension and application"
	}
}
