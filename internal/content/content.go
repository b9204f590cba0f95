// Package content ships the quiz battery and writes it to the database.
package content

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
)

//go:embed quiz.yaml
var quizYAML []byte

// namespace roots the name-based ids, so the same document always maps to
// the same rows.
var namespace = uuid.MustParse("6f1f6c1e-3f58-4e8b-9a38-2f7b0c7d2a11")

type quizDoc struct {
	Slug        string       `yaml:"slug"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Version     int          `yaml:"version"`
	Sections    []sectionDoc `yaml:"sections"`
}

type sectionDoc struct {
	Key         string        `yaml:"key"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Dimension   string        `yaml:"dimension"`
	Questions   []questionDoc `yaml:"questions"`
}

type questionDoc struct {
	Statement string `yaml:"statement"`
	Reversed  bool   `yaml:"reversed"`
}

// DefaultQuiz parses the embedded battery.
func DefaultQuiz() (*types.Quiz, error) {
	return Parse(quizYAML)
}

func Parse(raw []byte) (*types.Quiz, error) {
	var doc quizDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse quiz: %w", err)
	}
	if doc.Slug == "" {
		return nil, fmt.Errorf("quiz slug is required")
	}
	if doc.Version < 1 {
		doc.Version = 1
	}

	q := &types.Quiz{
		ID:          uuid.NewSHA1(namespace, []byte("quiz/"+doc.Slug)),
		Slug:        doc.Slug,
		Title:       doc.Title,
		Description: doc.Description,
		Version:     doc.Version,
	}
	order := 0
	seen := map[string]bool{}
	for i, sd := range doc.Sections {
		if _, err := personality.ParseDimension(sd.Dimension); err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		if sd.Key == "" || seen[sd.Key] {
			return nil, fmt.Errorf("section %d: key must be unique and non-empty", i)
		}
		seen[sd.Key] = true
		sectionName := doc.Slug + "/" + sd.Key
		s := &types.Section{
			ID:           uuid.NewSHA1(namespace, []byte(sectionName)),
			QuizID:       q.ID,
			Title:        sd.Title,
			Description:  sd.Description,
			Dimension:    sd.Dimension,
			DisplayOrder: i,
		}
		for j, qd := range sd.Questions {
			if qd.Statement == "" {
				return nil, fmt.Errorf("section %s question %d: empty statement", sd.Key, j)
			}
			s.Questions = append(s.Questions, &types.Question{
				ID:           uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s/%d", sectionName, j))),
				QuizID:       q.ID,
				SectionID:    s.ID,
				Statement:    qd.Statement,
				DisplayOrder: order,
				IsReversed:   qd.Reversed,
			})
			order++
		}
		q.Sections = append(q.Sections, s)
	}
	return q, nil
}
