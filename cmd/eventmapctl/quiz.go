package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/playperu/eventmap/internal/eventmap"
)

// questionFile is the YAML layout accepted by seed-quiz:
//
//	questions:
//	  - text: In which year was the Lima fountain built?
//	    options: ["1578", "1651", "1821"]
//	    correctAnswer: "1651"
//	    category: history
type questionFile struct {
	Questions []struct {
		Text          string   `yaml:"text"`
		Options       []string `yaml:"options"`
		CorrectAnswer string   `yaml:"correctAnswer"`
		Category      string   `yaml:"category"`
	} `yaml:"questions"`
}

func parseQuestions(r io.Reader) ([]eventmap.QuizQuestion, error) {
	var f questionFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing questions: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("no questions in file")
	}
	qs := make([]eventmap.QuizQuestion, 0, len(f.Questions))
	for _, q := range f.Questions {
		qs = append(qs, eventmap.QuizQuestion{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Category:      q.Category,
		})
	}
	return qs, nil
}

func newSeedQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-quiz",
		Short: "Load quiz questions from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			qs, err := parseQuestions(f)
			if err != nil {
				return err
			}

			st, closeDB, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			for i, q := range qs {
				if _, err := st.CreateQuestion(cmd.Context(), q); err != nil {
					return fmt.Errorf("question %d (%q): %w", i+1, q.Text, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d questions\n", len(qs))
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML file with questions")
	cmd.MarkFlagRequired("file")
	return cmd
}
