package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"examifyr-gateway/internal/app"
	"examifyr-gateway/internal/client"
	"examifyr-gateway/internal/config"
	"examifyr-gateway/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewGenerateCmd asks the gateway for a new quiz.
func NewGenerateCmd(apiURL *string) *cobra.Command {
	var (
		topic        string
		difficulty   string
		numQuestions int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz through the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := domain.Difficulty(difficulty)
			if !d.Valid() {
				return fmt.Errorf("difficulty must be easy, medium or hard, got %q", difficulty)
			}
			quiz, err := client.New(*apiURL).GenerateQuiz(cmd.Context(), domain.GenerateQuizRequest{
				Topic:        topic,
				Difficulty:   d,
				NumQuestions: domain.ClampNumQuestions(numQuestions),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), quiz)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "quiz topic")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyMedium), "easy, medium or hard")
	cmd.Flags().IntVar(&numQuestions, "num-questions", 5, "number of questions (clamped to 1-20)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

// NewGetCmd fetches one or more quizzes by id.
func NewGetCmd(apiURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <quiz-id>...",
		Short: "Fetch quizzes by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(*apiURL)
			quizzes := make([]*domain.Quiz, len(args))
			missing := make([]bool, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			for i, id := range args {
				g.Go(func() error {
					quiz, err := c.GetQuizByID(ctx, id)
					if client.IsNotFound(err) {
						missing[i] = true
						return nil
					}
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					quizzes[i] = &quiz
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for i, quiz := range quizzes {
				if missing[i] {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[i], domain.NotFoundHint)
					continue
				}
				if err := printJSON(cmd.OutOrStdout(), quiz); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewScoreCmd scores an answer file against a quiz file offline.
func NewScoreCmd() *cobra.Command {
	var quizPath, answersPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answer map against a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			var quiz domain.Quiz
			if err := readJSONFile(quizPath, &quiz); err != nil {
				return err
			}
			if err := quiz.Validate(); err != nil {
				return err
			}
			var answers domain.AnswerMap
			if err := readJSONFile(answersPath, &answers); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), app.CalculateScore(quiz, answers))
		},
	}
	cmd.Flags().StringVar(&quizPath, "quiz", "", "quiz JSON file")
	cmd.Flags().StringVar(&answersPath, "answers", "", "answer map JSON file")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

type upstreamHealth struct {
	Status string `json:"status"`
}

type upstreamVersion struct {
	Version string `json:"version"`
}

// NewStatusCmd reports the upstream service health and version.
func NewStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show upstream service health and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			c := client.New(cfg.Upstream.BaseURL)

			var health upstreamHealth
			var version upstreamVersion
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return c.RequestJSON(ctx, "", "/health", nil, &health)
			})
			g.Go(func() error {
				return c.RequestJSON(ctx, "", "/version", nil, &version)
			})
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\nversion: %s\n", health.Status, version.Version)
			return nil
		},
	}
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
