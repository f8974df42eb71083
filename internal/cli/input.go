// Package cli handles cmd line input and key suggestions for DBG and testing dictionaries
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/bastiangx/propserve/pkg/completion"
	"github.com/charmbracelet/log"
)

// InputHandler reads key prefixes from stdin and prints the suggestions
// the provider returns for them against a single dictionary source.
type InputHandler struct {
	provider     *completion.Provider
	source       string
	suggestLimit int
	requestCount int
	out          io.Writer
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(provider *completion.Provider, source string, limit int) *InputHandler {
	return &InputHandler{
		provider:     provider,
		source:       source,
		suggestLimit: limit,
		out:          os.Stdout,
	}
}

// Start begins the interface loop.
// Loop terminates on EOF or if an error occurs while reading.
func (h *InputHandler) Start(ctx context.Context) error {
	return h.run(ctx, os.Stdin)
}

func (h *InputHandler) run(ctx context.Context, in io.Reader) error {
	log.Print("PropServe CLI [BETA]")
	log.Printf("dictionary: %s", h.source)
	log.Print("type a key prefix and press Enter to see the suggestions (Ctrl+C to exit):")

	reader := bufio.NewReader(in)
	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		h.handleInput(ctx, strings.TrimRight(line, "\r\n"))
	}
}

// document builds a two line document with the directive on top and the
// prefix as the line being edited.
func (h *InputHandler) document(prefix string) (string, completion.Position) {
	text := completion.DirectivePrefix + h.source + "\n" + prefix
	return text, completion.Position{Line: 1, Character: utf16Len(prefix)}
}

// handleInput asks the provider for one prefix and prints the results.
func (h *InputHandler) handleInput(ctx context.Context, prefix string) []completion.Item {
	h.requestCount++
	if !completion.InKeyContext(prefix) {
		log.Infof("Not a key position: '%s'", prefix)
		return nil
	}

	start := time.Now()
	log.Debug("Processing request for", "prefix", prefix, "n", h.requestCount)

	text, pos := h.document(prefix)
	items := h.provider.Complete(ctx, text, pos)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(items) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return items
	}

	shown := items
	if h.suggestLimit > 0 && len(shown) > h.suggestLimit {
		shown = shown[:h.suggestLimit]
	}
	fmt.Fprintf(h.out, "Found %d keys for prefix '%s':\n", len(items), prefix)
	for i, it := range shown {
		clKey := fmt.Sprintf("\033[38;5;75m%s\033[0m", it.Label)
		fmt.Fprintf(h.out, "%2d. %-50s %s\n", i+1, clKey, it.Detail)
	}
	if len(shown) < len(items) {
		fmt.Fprintf(h.out, "... %d more\n", len(items)-len(shown))
	}
	return items
}

// utf16Len counts s the way editors count cursor columns.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
