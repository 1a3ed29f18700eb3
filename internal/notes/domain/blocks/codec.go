package blocks

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

type prefix struct {
	marker  string
	typ     Type
	checked bool
}

// prefixes упорядочены по убыванию длины маркера: "### " проверяется раньше "# ".
var prefixes = []prefix{
	{"### ", H3, false},
	{"[x] ", Todo, true},
	{"## ", H2, false},
	{"[] ", Todo, false},
	{"1. ", Numbered, false},
	{"---", Divider, false},
	{"# ", H1, false},
	{"- ", Bullet, false},
	{"> ", Quote, false},
}

func markerFor(b Block) string {
	if b.Type == Todo && b.Checked {
		return "[x] "
	}
	for _, p := range prefixes {
		if p.typ == b.Type && !p.checked {
			return p.marker
		}
	}
	return ""
}

// EncodeLines сериализует блоки в строковый формат "маркер + содержимое" по строке на блок.
// Содержимое с переводом строки при обратном разборе распадается на несколько блоков.
func EncodeLines(list []Block) string {
	lines := make([]string, len(list))
	for i, b := range list {
		lines[i] = markerFor(b) + b.Content
	}
	return strings.Join(lines, "\n")
}

// DecodeLines разбирает строковый формат. Строка без известного маркера становится text,
// пустая строка - один пустой text-блок.
func DecodeLines(s string) []Block {
	lines := strings.Split(s, "\n")
	out := make([]Block, 0, len(lines))
	for _, line := range lines {
		out = append(out, decodeLine(line))
	}
	return out
}

func decodeLine(line string) Block {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.marker); ok {
			b := New(p.typ, rest)
			b.Checked = p.checked
			return b
		}
	}
	return New(Text, line)
}

// Encode сериализует блоки в JSON-массив. Пустой список дает пустую строку.
func Encode(list []Block) (string, error) {
	if len(list) == 0 {
		return "", nil
	}
	normalized, err := Normalize(list)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode разбирает description в любом из двух форматов: сначала JSON-массив,
// затем строковый формат с маркерами.
// Пустая строка - это пустой список, записанный Encode.
func Decode(s string) []Block {
	if s == "" {
		return []Block{}
	}
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		var list []Block
		if err := json.Unmarshal([]byte(s), &list); err == nil && validJSONBlocks(list) {
			for i := range list {
				if list[i].ID == "" {
					list[i].ID = uuid.NewString()
				}
			}
			return list
		}
	}
	return DecodeLines(s)
}

func validJSONBlocks(list []Block) bool {
	for _, b := range list {
		if !b.Type.Valid() {
			return false
		}
	}
	return true
}

// SearchText возвращает текст описания для полнотекстового поиска.
// Для JSON-массива блоков это содержимое блоков через перевод строки,
// любое другое описание возвращается как есть.
func SearchText(description string) string {
	if !strings.HasPrefix(strings.TrimSpace(description), "[") {
		return description
	}
	var list []Block
	if err := json.Unmarshal([]byte(description), &list); err != nil || !validJSONBlocks(list) {
		return description
	}
	contents := make([]string, 0, len(list))
	for _, b := range list {
		if b.Content != "" {
			contents = append(contents, b.Content)
		}
	}
	return strings.Join(contents, "\n")
}
