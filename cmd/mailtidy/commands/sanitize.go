package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailtidy/mailtidy/internal/logger"
	"github.com/mailtidy/mailtidy/pkg/render"
	"github.com/mailtidy/mailtidy/pkg/sanitize"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Sanitize a single HTML body",
	Long: `Sanitize runs the HTML cleaner on one document and prints the
result. Useful for inspecting what the render pipeline does to a body.

Examples:
  mailtidy sanitize -i body.html
  cat body.html | mailtidy sanitize -i - --markdown --stats`,
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)

	flags := sanitizeCmd.Flags()

	flags.StringP("input", "i", "", "HTML file, or - for stdin (required)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("markdown", false, "convert the sanitized HTML to Markdown")
	flags.Bool("stats", false, "log sanitization stats to stderr")
	flags.String("sanitize-config", "", "sanitizer config file (JSON or YAML)")

	_ = sanitizeCmd.MarkFlagRequired("input")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	input, err := readInput(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	cfg := sanitize.DefaultConfig()
	if path, _ := cmd.Flags().GetString("sanitize-config"); path != "" {
		cfg, err = sanitize.ConfigFromFile(path)
		if err != nil {
			logError("%v", err)
			return err
		}
	}

	result := sanitize.New(cfg).SanitizeWithStats(input)

	for _, w := range result.Warnings {
		logger.Warn("sanitize warning", "warning", w.String())
	}
	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		fmt.Fprint(os.Stderr, result.Stats.String())
	}

	content := result.Content
	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		content = render.Markdown(content)
	}

	dest := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		dest = f
	}

	_, err = fmt.Fprintln(dest, content)
	return err
}

// readInput reads the HTML document from the --input file or stdin.
func readInput(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("input")

	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}
