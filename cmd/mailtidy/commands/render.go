package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailtidy/mailtidy/internal/logger"
	"github.com/mailtidy/mailtidy/internal/output"
	"github.com/mailtidy/mailtidy/pkg/mail"
	"github.com/mailtidy/mailtidy/pkg/render"
	"github.com/mailtidy/mailtidy/pkg/sanitize"
)

// wrappedResult wraps the rendered document with metadata for structured
// output formats.
type wrappedResult struct {
	Metadata resultMetadata `json:"_metadata" yaml:"_metadata"`
	Content  string         `json:"content" yaml:"content"`
}

type resultMetadata struct {
	Count        int    `json:"messages" yaml:"messages"`
	Threads      int    `json:"threads" yaml:"threads"`
	Participants int    `json:"participants" yaml:"participants"`
	RenderedAt   string `json:"rendered_at" yaml:"rendered_at"`
	DurationMs   int64  `json:"duration_ms" yaml:"duration_ms"`
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a fetched message list as threaded structured text",
	Long: `Render reads a message list (JSON or YAML), sanitizes each HTML
body, and emits one structured text document grouped by thread.

The input is a list of JMAP-shaped message records: id, threadId,
subject, address fields, keywords, body part references and fetched
body values.

Examples:
  mailtidy render -i messages.json
  mailtidy render -i messages.yaml -o threads.txt
  cat messages.json | mailtidy render -i - --max-body-size 8KB`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()

	flags.StringP("input", "i", "", "message list file, or - for stdin (required)")
	flags.String("input-format", "json", "input format when reading stdin: json, yaml")

	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "text", "output format: text, json, yaml")

	flags.String("max-body-size", "0", "per-message body cap (e.g. 8KB, 0=unlimited)")
	flags.Bool("strip-quotes", false, "strip quoted replies and signatures from bodies")
	flags.IntP("concurrency", "c", 1, "bodies to sanitize in parallel")
	flags.String("sanitize-config", "", "sanitizer config file (JSON or YAML)")

	_ = renderCmd.MarkFlagRequired("input")
}

func runRender(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	messages, err := loadInput(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	renderer, err := buildRenderer(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	start := time.Now()
	document := renderer.Render(messages)
	elapsed := time.Since(start)

	logger.Debug("rendered message list",
		"messages", len(messages),
		"duration", elapsed,
	)

	return writeResult(cmd, document, messages, elapsed)
}

// loadInput reads the message list from the --input file or stdin.
func loadInput(cmd *cobra.Command) ([]*mail.Message, error) {
	path, _ := cmd.Flags().GetString("input")
	if path != "-" {
		return mail.LoadMessages(path)
	}

	formatName, _ := cmd.Flags().GetString("input-format")
	var format mail.Format
	switch formatName {
	case "json":
		format = mail.FormatJSON
	case "yaml", "yml":
		format = mail.FormatYAML
	default:
		return nil, fmt.Errorf("unsupported input format: %s", formatName)
	}

	return mail.DecodeMessages(os.Stdin, format)
}

// buildRenderer assembles a Renderer from the command flags.
func buildRenderer(cmd *cobra.Command) (*render.Renderer, error) {
	var opts []render.Option

	if path, _ := cmd.Flags().GetString("sanitize-config"); path != "" {
		cfg, err := sanitize.ConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithSanitizer(sanitize.New(cfg)))
	}

	if sizeStr, _ := cmd.Flags().GetString("max-body-size"); sizeStr != "" && sizeStr != "0" {
		size, err := humanize.ParseBytes(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid max-body-size %q: %w", sizeStr, err)
		}
		opts = append(opts, render.WithMaxBodyChars(int(size)))
	}

	if strip, _ := cmd.Flags().GetBool("strip-quotes"); strip {
		opts = append(opts, render.WithStripQuotedReplies(true))
	}

	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 1 {
		opts = append(opts, render.WithConcurrency(concurrency))
	}

	return render.NewRenderer(opts...), nil
}

// writeResult serializes the document in the requested output format.
func writeResult(cmd *cobra.Command, document string, messages []*mail.Message, elapsed time.Duration) error {
	dest := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		dest = f
		logInfo("Writing output to %s", path)
	}

	formatName, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(dest, output.Format(formatName))
	if err != nil {
		return err
	}
	defer writer.Close()

	if output.Format(formatName) == output.FormatText {
		return writer.Write(document)
	}

	threads := make(map[string]bool)
	for _, m := range messages {
		threads[m.ThreadKey()] = true
	}

	return writer.Write(wrappedResult{
		Metadata: resultMetadata{
			Count:        len(messages),
			Threads:      len(threads),
			Participants: countParticipants(messages),
			RenderedAt:   time.Now().UTC().Format(time.RFC3339),
			DurationMs:   elapsed.Milliseconds(),
		},
		Content: document,
	})
}

// countParticipants counts the distinct addresses across the whole list,
// case-insensitive on the email.
func countParticipants(messages []*mail.Message) int {
	seen := make(map[string]bool)
	for _, m := range messages {
		for _, addr := range m.Participants() {
			seen[strings.ToLower(addr.Email)] = true
		}
	}
	return len(seen)
}
