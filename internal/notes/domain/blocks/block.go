// Package blocks описывает блочную модель содержимого заметки и ее сериализацию в description.
package blocks

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Type - тип блока.
type Type string

const (
	Text     Type = "text"
	H1       Type = "h1"
	H2       Type = "h2"
	H3       Type = "h3"
	Bullet   Type = "bullet"
	Numbered Type = "numbered"
	Todo     Type = "todo"
	Quote    Type = "quote"
	Divider  Type = "divider"
)

var (
	ErrUnknownType = errors.New("unknown block type")
	ErrOutOfRange  = errors.New("block index out of range")
)

// Valid сообщает, что тип известен.
func (t Type) Valid() bool {
	switch t {
	case Text, H1, H2, H3, Bullet, Numbered, Todo, Quote, Divider:
		return true
	default:
		return false
	}
}

// continues - типы, которые продолжаются при разбиении блока клавишей Enter.
func (t Type) continues() bool {
	return t == Bullet || t == Numbered || t == Todo
}

// Block - единица содержимого заметки.
type Block struct {
	ID      string `json:"id"`
	Type    Type   `json:"type"`
	Content string `json:"content"`
	Checked bool   `json:"checked,omitempty"`
}

// New создает блок с новым идентификатором.
func New(t Type, content string) Block {
	return Block{ID: uuid.NewString(), Type: t, Content: content}
}

// Normalize проверяет типы, выдает идентификаторы пустым блокам и сбрасывает
// Checked у всех блоков, кроме todo.
func Normalize(in []Block) ([]Block, error) {
	out := make([]Block, len(in))
	for i, b := range in {
		if b.Type == "" {
			b.Type = Text
		}
		if !b.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, b.Type)
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.Type != Todo {
			b.Checked = false
		}
		out[i] = b
	}
	return out, nil
}
