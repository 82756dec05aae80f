// Package normalizer converts raw chat text into canonical English text for
// scoring: numeric-code obfuscation is decoded, an optional translator is
// applied, and diacritics and non-ASCII decoration are stripped.
package normalizer

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TranslateFunc converts text to English. It is an external oracle; failures
// are propagated to the caller.
type TranslateFunc func(ctx context.Context, text string) (string, error)

type Service struct {
	translate TranslateFunc
}

var _ interfaces.Normalizer = &Service{}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithTranslator sets the translation oracle. Without one, text passes
// through untranslated.
func WithTranslator(fn TranslateFunc) Option {
	return func(s *Service) {
		s.translate = fn
	}
}

// New creates a normalizer service
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize returns the canonical form of the text. The result is a fixed
// point: already-normalized text normalizes to itself.
func (s *Service) Normalize(ctx context.Context, text string) (string, error) {
	text = decodeNumericCodes(text)

	if s.translate != nil {
		translated, err := s.translate(ctx, text)
		if err != nil {
			return "", goerr.Wrap(err, "translation failed")
		}
		text = translated
	}

	text = stripDecoration(text)

	// Stripping can unmask a numeric-code message the first decode pass
	// rejected, and a decoded message can itself be numeric codes. Repeat
	// until the text stops changing so the result is a fixed point.
	for {
		decoded := decodeNumericCodes(text)
		if decoded == text {
			return text, nil
		}
		text = stripDecoration(decoded)
	}
}

// decodeNumericCodes interprets a message consisting entirely of two or more
// space-separated integers as a sequence of character codes.
func decodeNumericCodes(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return text
	}

	var b strings.Builder
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 32 || n > unicode.MaxRune {
			return text
		}
		b.WriteRune(rune(n))
	}
	return b.String()
}

// stripDecoration removes combining marks and any remaining non-ASCII runes
func stripDecoration(text string) string {
	decomposed := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(decomposed, text)
	if err != nil {
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
