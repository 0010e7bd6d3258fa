package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// TextDecoder reads plain-text documents. Form feeds separate pages; a file
// without one is a single page.
type TextDecoder struct{}

// Decode implements Decoder.
func (TextDecoder) Decode(ctx context.Context, path string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedFormat, path)
	}

	parts := strings.Split(string(data), "\f")
	pages := make([]Page, 0, len(parts))
	for i, text := range parts {
		pages = append(pages, Page{Number: i + 1, Text: text})
	}
	return pages, nil
}
