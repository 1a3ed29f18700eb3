// Package slug кодирует идентификатор заметки в читаемый URL и обратно.
package slug

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback используется, когда от заголовка ничего не остается.
const Fallback = "untitled"

const hexIDLength = 32

// ErrInvalidSlug возвращается, если хвост слага не является UUID.
var ErrInvalidSlug = errors.New("invalid slug")

// Create строит слаг вида "<заголовок>-<id без дефисов>".
func Create(title string, id uuid.UUID) string {
	return Slugify(title) + "-" + strings.ReplaceAll(id.String(), "-", "")
}

// Slugify приводит заголовок к нижнему регистру ASCII, убирая диакритику.
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return Fallback
	}
	return out
}

// ExtractID восстанавливает UUID из последних 32 символов слага.
func ExtractID(s string) (uuid.UUID, error) {
	if len(s) < hexIDLength {
		return uuid.Nil, fmt.Errorf("%w: too short", ErrInvalidSlug)
	}

	hex := s[len(s)-hexIDLength:]
	canonical := hex[0:8] + "-" + hex[8:12] + "-" + hex[12:16] + "-" + hex[16:20] + "-" + hex[20:32]

	id, err := uuid.Parse(canonical)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidSlug, err)
	}
	return id, nil
}
