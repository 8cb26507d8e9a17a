package receipt

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question maps a printed question to the Airtable field holding the answer.
type Question struct {
	Label string `yaml:"label"`
	Field string `yaml:"field"`
}

type questionsFile struct {
	Questions []Question `yaml:"questions"`
}

// DefaultQuestions matches the current Sprig application form.
func DefaultQuestions() []Question {
	return []Question{
		{Label: "How did you hear about Sprig?", Field: "How did you hear about Sprig?"},
		{Label: "Is this the first video game you’ve made?", Field: "Is this the first video game you've made?"},
		{Label: "What are we doing well?", Field: "What are we doing well?"},
		{Label: "How can we improve?", Field: "How can we improve?"},
		{Label: "Are you in a club?", Field: "In a club?"},
	}
}

// LoadQuestions reads a YAML question list:
//
//	questions:
//	  - label: How can we improve?
//	    field: How can we improve?
//
// A question without a field reads the field named like its label.
func LoadQuestions(path string) ([]Question, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file questionsFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(file.Questions) == 0 {
		return nil, errors.New("no questions in " + path)
	}

	for i := range file.Questions {
		q := &file.Questions[i]
		if q.Label == "" {
			return nil, fmt.Errorf("question %d in %s has no label", i+1, path)
		}
		if q.Field == "" {
			q.Field = q.Label
		}
	}

	return file.Questions, nil
}
