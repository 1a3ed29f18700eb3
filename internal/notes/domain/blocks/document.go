package blocks

import "fmt"

// HistoryLimit - максимальная глубина истории отмены.
const HistoryLimit = 50

// Document - редактируемый список блоков с фокусом и историей отмены/повтора.
// Document не потокобезопасен.
type Document struct {
	blocks []Block
	focus  int
	undo   []snapshot
	redo   []snapshot
}

type snapshot struct {
	blocks []Block
	focus  int
}

// NewDocument создает документ; пустой документ получает один пустой текстовый блок.
func NewDocument(list []Block) *Document {
	d := &Document{blocks: clone(list)}
	if len(d.blocks) == 0 {
		d.blocks = []Block{New(Text, "")}
	}
	return d
}

// Blocks возвращает копию блоков.
func (d *Document) Blocks() []Block {
	return clone(d.blocks)
}

// Len возвращает число блоков.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Focus возвращает индекс блока в фокусе.
func (d *Document) Focus() int {
	return d.focus
}

// Next переводит фокус на следующий блок (стрелка вниз).
func (d *Document) Next() int {
	if d.focus < len(d.blocks)-1 {
		d.focus++
	}
	return d.focus
}

// Prev переводит фокус на предыдущий блок (стрелка вверх).
func (d *Document) Prev() int {
	if d.focus > 0 {
		d.focus--
	}
	return d.focus
}

// Insert вставляет блок после индекса after (-1 - в начало) и переводит на него фокус.
func (d *Document) Insert(after int, b Block) error {
	if after < -1 || after >= len(d.blocks) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, after)
	}
	if b.Type == "" {
		b.Type = Text
	}
	if !b.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, b.Type)
	}
	if b.ID == "" {
		b.ID = New(b.Type, "").ID
	}

	d.record()
	pos := after + 1
	d.blocks = append(d.blocks[:pos], append([]Block{b}, d.blocks[pos:]...)...)
	d.focus = pos
	return nil
}

// SetContent заменяет содержимое блока.
func (d *Document) SetContent(i int, content string) error {
	if err := d.check(i); err != nil {
		return err
	}
	if d.blocks[i].Content == content {
		return nil
	}
	d.record()
	d.blocks[i].Content = content
	return nil
}

// SetType меняет тип блока. Checked сохраняется только у todo.
func (d *Document) SetType(i int, t Type) error {
	if err := d.check(i); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	d.record()
	d.blocks[i].Type = t
	if t != Todo {
		d.blocks[i].Checked = false
	}
	return nil
}

// Toggle переключает отметку todo-блока.
func (d *Document) Toggle(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if d.blocks[i].Type != Todo {
		return nil
	}
	d.record()
	d.blocks[i].Checked = !d.blocks[i].Checked
	return nil
}

// Split разбивает блок по позиции offset (в символах), как клавиша Enter.
// Хвост уходит в новый блок: списки сохраняют тип, остальные становятся text.
func (d *Document) Split(i, offset int) error {
	if err := d.check(i); err != nil {
		return err
	}

	runes := []rune(d.blocks[i].Content)
	offset = max(0, min(offset, len(runes)))

	next := Text
	if d.blocks[i].Type.continues() {
		next = d.blocks[i].Type
	}

	d.record()
	tail := New(next, string(runes[offset:]))
	d.blocks[i].Content = string(runes[:offset])
	d.blocks = append(d.blocks[:i+1], append([]Block{tail}, d.blocks[i+1:]...)...)
	d.focus = i + 1
	return nil
}

// MergeWithPrevious склеивает блок с предыдущим, как Backspace в начале строки.
// Возвращает позицию курсора в предыдущем блоке. Для первого блока ничего не делает.
func (d *Document) MergeWithPrevious(i int) (int, error) {
	if err := d.check(i); err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, nil
	}

	d.record()
	prev := &d.blocks[i-1]
	caret := len([]rune(prev.Content))
	if prev.Type == Divider {
		prev.Type = d.blocks[i].Type
		prev.Checked = d.blocks[i].Checked
		caret = 0
		prev.Content = d.blocks[i].Content
	} else {
		prev.Content += d.blocks[i].Content
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	d.focus = i - 1
	return caret, nil
}

// Remove удаляет блок. Последний блок не удаляется, а очищается.
func (d *Document) Remove(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.record()
	if len(d.blocks) == 1 {
		d.blocks[0] = New(Text, "")
		d.focus = 0
		return nil
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	d.focus = min(d.focus, len(d.blocks)-1)
	return nil
}

// Undo откатывает последнее изменение. Возвращает false, если откатывать нечего.
func (d *Document) Undo() bool {
	if len(d.undo) == 0 {
		return false
	}
	last := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	d.redo = append(d.redo, d.snapshot())
	d.restore(last)
	return true
}

// Redo повторяет откатанное изменение.
func (d *Document) Redo() bool {
	if len(d.redo) == 0 {
		return false
	}
	last := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	d.undo = append(d.undo, d.snapshot())
	d.restore(last)
	return true
}

// CanUndo и CanRedo сообщают о наличии истории.
func (d *Document) CanUndo() bool { return len(d.undo) > 0 }
func (d *Document) CanRedo() bool { return len(d.redo) > 0 }

func (d *Document) check(i int) error {
	if i < 0 || i >= len(d.blocks) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return nil
}

// record сохраняет состояние перед изменением и сбрасывает redo.
func (d *Document) record() {
	d.undo = append(d.undo, d.snapshot())
	if len(d.undo) > HistoryLimit {
		d.undo = d.undo[len(d.undo)-HistoryLimit:]
	}
	d.redo = nil
}

func (d *Document) snapshot() snapshot {
	return snapshot{blocks: clone(d.blocks), focus: d.focus}
}

func (d *Document) restore(s snapshot) {
	d.blocks = s.blocks
	d.focus = s.focus
}

func clone(list []Block) []Block {
	out := make([]Block, len(list))
	copy(out, list)
	return out
}
