package cmd

import (
	"encoding/json"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ai-interviewer/internal/interview"
	"github.com/spigell/ai-interviewer/internal/logger"
	"github.com/spigell/ai-interviewer/internal/util"
)

const reportPreviewLength = 120

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize archived interviews",
	Run: func(cmd *cobra.Command, _ []string) {
		report(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("archive-file", "a", "", "archive file to read (required)")

	reportCmd.MarkFlagRequired("archive-file")
}

type interviewSummary struct {
	SessionID   string `json:"session_id"`
	Questions   int    `json:"questions"`
	CompletedAt string `json:"completed_at"`
	Duration    string `json:"duration"`
	Feedback    string `json:"feedback"`
}

func report(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	path := cmd.Flag("archive-file").Value.String()

	entries, err := interview.LoadArchiveEntries(path)
	if err != nil {
		logger.Fatal("loading archive", zap.String("path", path), zap.Error(err))
	}

	summaries := make([]interviewSummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, interviewSummary{
			SessionID:   entry.SessionID,
			Questions:   entry.Questions,
			CompletedAt: entry.CompletedAt.Format(time.RFC3339),
			Duration:    entry.CompletedAt.Sub(entry.StartedAt).Round(time.Second).String(),
			Feedback:    util.TruncateForLog(entry.FinalReport, reportPreviewLength),
		})
	}

	pretty, _ := json.MarshalIndent(summaries, "", "  ")
	logger.Info(string(pretty), zap.Int("interviews", len(summaries)))
}
