package render

import (
	"sync"

	"github.com/mailtidy/mailtidy/pkg/mail"
	"github.com/mailtidy/mailtidy/pkg/sanitize"
)

// Renderer transforms message lists into structured text. It holds no state
// between calls; concurrent callers may share one Renderer.
type Renderer struct {
	sanitizer          *sanitize.Sanitizer
	maxBodyChars       int
	stripQuotedReplies bool
	concurrency        int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitizer sets the sanitizer used for HTML bodies.
func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithMaxBodyChars caps each rendered body at n characters, truncating at a
// line boundary. Zero disables the cap.
func WithMaxBodyChars(n int) Option {
	return func(r *Renderer) {
		r.maxBodyChars = n
	}
}

// WithStripQuotedReplies removes quoted replies and signatures from
// extracted bodies.
func WithStripQuotedReplies(strip bool) Option {
	return func(r *Renderer) {
		r.stripQuotedReplies = strip
	}
}

// WithConcurrency sets how many bodies are extracted in parallel. Values
// below 2 keep extraction sequential. Output ordering is unaffected.
func WithConcurrency(n int) Option {
	return func(r *Renderer) {
		r.concurrency = n
	}
}

// NewRenderer creates a Renderer. Without options it sanitizes with the
// default configuration, renders bodies uncapped and works sequentially.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		sanitizer: sanitize.New(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the full structured-text document for a message list:
// bodies are extracted per message, then messages are grouped by thread,
// ordered and serialized.
func (r *Renderer) Render(messages []*mail.Message) string {
	return r.format(messages, r.extractAll(messages))
}

// extractAll resolves every message body, in input order. With concurrency
// enabled, messages are processed by a bounded worker pool into an
// index-addressed slice so parallelism is never observable as reordering.
func (r *Renderer) extractAll(messages []*mail.Message) []string {
	bodies := make([]string, len(messages))

	if r.concurrency < 2 || len(messages) < 2 {
		for i, msg := range messages {
			bodies[i] = r.ExtractBody(msg)
		}
		return bodies
	}

	workers := r.concurrency
	if workers > len(messages) {
		workers = len(messages)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				bodies[i] = r.ExtractBody(messages[i])
			}
		}()
	}
	for i := range messages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return bodies
}
