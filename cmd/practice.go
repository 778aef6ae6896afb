package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/logger"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a complete interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		practice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("resume-file", "r", "", "path to a plain-text resume (required)")
	practiceCmd.Flags().IntP("max-questions", "q", 0, "number of questions to ask")

	practiceCmd.MarkFlagRequired("resume-file")
}

func practice(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	resumeFile := cmd.Flag("resume-file").Value.String()
	resume, err := os.ReadFile(resumeFile)
	if err != nil {
		logger.Fatal("reading resume file", zap.String("path", resumeFile), zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building model provider", zap.Error(err))
	}

	// Practice interviews never need to outlive the process: force the
	// in-memory store regardless of the configured driver.
	practiceConfig := *config
	practiceConfig.Store = &StoreConfig{Driver: "memory"}

	runner, sessions, err := buildRunner(&practiceConfig, generator, logger)
	if err != nil {
		logger.Fatal("building session runner", zap.Error(err))
	}
	defer sessions.Close()

	maxQuestions, _ := cmd.Flags().GetInt("max-questions")
	if maxQuestions <= 0 && config.Interview != nil {
		maxQuestions = config.Interview.MaxQuestions
	}

	begin, err := runner.Begin(ctx, string(resume), maxQuestions)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	message := begin.Message
	for {
		fmt.Printf("\nInterviewer: %s\n\n", message)

		prompt := promptui.Prompt{
			Label: "Your answer",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("answer must not be empty")
				}
				return nil
			},
		}
		answer, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		result, err := runner.Continue(ctx, begin.SessionID, answer)
		if err != nil {
			logger.Fatal("continuing the interview", zap.Error(err))
		}

		if result.Status == interview.StatusCompleted {
			fmt.Printf("\n%s\n", result.Message)
			return
		}

		message = result.Message
	}
}
