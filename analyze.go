package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"english_analyzer/analyzer"
)

var (
	analyzeMode     string
	analyzeRetries  uint
	analyzeMock     bool
	analyzeMarkdown bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Analyze a word or sentence once and print the result",
	Long: `Run one analysis and print the validated result.

Each attempt is a single upstream call. With --retries the whole request
is reissued on rate limiting, unavailability or network failures; other
failures are reported immediately.

Examples:
  english-analyzer analyze serendipity
  english-analyzer analyze --mode sentence "The quick brown fox jumps over the lazy dog."
  english-analyzer analyze -o json --retries 3 ephemeral
  english-analyzer analyze --markdown --mock hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, err := analyzer.ParseMode(analyzeMode)
		if err != nil {
			return err
		}
		req, err := analyzer.NewRequest(strings.Join(args, " "), mode)
		if err != nil {
			return err
		}

		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		agent, err := analyzer.NewAgent(buildGenerator(analyzeMock), m.Generation, logger)
		if err != nil {
			return err
		}

		var res analyzer.Result
		err = retry.Do(
			func() error {
				var err error
				res, err = agent.Analyze(ctx, req)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(analyzeRetries+1),
			retry.Delay(time.Second),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(retryable),
			retry.OnRetry(func(n uint, err error) {
				logger.Warn("retrying analysis", "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			if ae, ok := analyzer.AsError(err); ok {
				return fmt.Errorf("%s (%w)", ae.UserMessage(), err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if analyzeMarkdown {
			_, err := fmt.Fprint(out, res.Render.Markdown())
			return err
		}
		return writeOutput(out, outputFormat, res.Analysis())
	},
}

func retryable(err error) bool {
	var ae *analyzer.Error
	if errors.As(err, &ae) {
		return ae.Kind.Retryable()
	}
	return false
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", "word", "analysis mode: word or sentence")
	analyzeCmd.Flags().UintVar(&analyzeRetries, "retries", 0, "reissue the request up to N times on transient failures")
	analyzeCmd.Flags().BoolVar(&analyzeMock, "mock", false, "use the offline mock generator")
	analyzeCmd.Flags().BoolVar(&analyzeMarkdown, "markdown", false, "print the rendered markdown instead of structured output")

	rootCmd.AddCommand(analyzeCmd)
}
