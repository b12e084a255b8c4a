package blocks

import (
	"encoding/json"
	"fmt"
)

// Editor holds the draft block list of one portfolio item. Every mutation
// reports the new list through onChange; nothing is persisted until the
// surrounding item form is saved.
type Editor struct {
	blocks   []Block
	onChange func([]Block)

	dragFrom int
	dragOver int
}

func NewEditor(initial []Block, onChange func([]Block)) *Editor {
	return &Editor{
		blocks:   cloneList(initial),
		onChange: onChange,
		dragFrom: -1,
		dragOver: -1,
	}
}

// Blocks returns a copy of the current list.
func (e *Editor) Blocks() []Block {
	return cloneList(e.blocks)
}

func (e *Editor) Len() int {
	return len(e.blocks)
}

func (e *Editor) update(next []Block) {
	e.blocks = next
	if e.onChange != nil {
		e.onChange(cloneList(next))
	}
}

// Add appends a block of type t with its default payload and
// order = current length.
func (e *Editor) Add(t Type) error {
	content := DefaultContent(t)
	if content == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	next := cloneList(e.blocks)
	next = append(next, Block{Type: t, Order: len(e.blocks), Content: content})
	e.update(next)
	return nil
}

// Remove drops the block at index. Remaining orders are left as they are.
func (e *Editor) Remove(index int) {
	if index < 0 || index >= len(e.blocks) {
		return
	}
	next := make([]Block, 0, len(e.blocks)-1)
	next = append(next, e.blocks[:index]...)
	next = append(next, e.blocks[index+1:]...)
	e.update(next)
}

// Update merges patch into the payload of the block at index, like
// {...content, field: value}. Keys that do not belong to the block's type
// are dropped.
func (e *Editor) Update(index int, patch map[string]interface{}) error {
	if index < 0 || index >= len(e.blocks) {
		return fmt.Errorf("block index %d out of range", index)
	}
	current := e.blocks[index]
	merged, err := mergeContent(current.Type, current.Content, patch)
	if err != nil {
		return err
	}
	next := cloneList(e.blocks)
	next[index].Content = merged
	e.update(next)
	return nil
}

// SetContent replaces the payload of the block at index.
func (e *Editor) SetContent(index int, content Content) error {
	if index < 0 || index >= len(e.blocks) {
		return fmt.Errorf("block index %d out of range", index)
	}
	parsed, err := ParseContent(e.blocks[index].Type, content)
	if err != nil {
		return err
	}
	next := cloneList(e.blocks)
	next[index].Content = parsed
	e.update(next)
	return nil
}

func (e *Editor) MoveUp(index int) {
	e.swap(index, index-1)
}

func (e *Editor) MoveDown(index int) {
	e.swap(index, index+1)
}

func (e *Editor) swap(index, target int) {
	if index < 0 || index >= len(e.blocks) || target < 0 || target >= len(e.blocks) {
		return
	}
	next := cloneList(e.blocks)
	next[index], next[target] = next[target], next[index]
	Renumber(next)
	e.update(next)
}

// Move splices the block at from into position to and renumbers the list.
func (e *Editor) Move(from, to int) {
	if from == to || from < 0 || from >= len(e.blocks) || to < 0 || to >= len(e.blocks) {
		return
	}
	next := MoveItem(e.blocks, from, to)
	Renumber(next)
	e.update(next)
}

func (e *Editor) DragStart(index int) {
	e.dragFrom = index
	e.dragOver = -1
}

// DragOver tracks the hovered slot. It never changes the list.
func (e *Editor) DragOver(index int) {
	if e.dragFrom >= 0 && e.dragFrom != index {
		e.dragOver = index
	}
}

// DragState returns the dragged and hovered indexes, -1 when unset.
func (e *Editor) DragState() (from, over int) {
	return e.dragFrom, e.dragOver
}

// DragEnd applies the pending drag, if any, and clears the drag state.
func (e *Editor) DragEnd() {
	from, over := e.dragFrom, e.dragOver
	e.dragFrom, e.dragOver = -1, -1
	if from >= 0 && over >= 0 && from != over {
		e.Move(from, over)
	}
}

// AppendImages adds urls to the end of a GALLERY or SLIDER block.
func (e *Editor) AppendImages(index int, urls []string) error {
	images, err := e.images(index)
	if err != nil {
		return err
	}
	next := make([]Image, 0, len(images)+len(urls))
	next = append(next, images...)
	for _, u := range urls {
		next = append(next, Image{URL: u})
	}
	return e.setImages(index, next)
}

func (e *Editor) MoveImage(index, from, to int) error {
	images, err := e.images(index)
	if err != nil {
		return err
	}
	if from == to || from < 0 || from >= len(images) || to < 0 || to >= len(images) {
		return nil
	}
	return e.setImages(index, MoveItem(images, from, to))
}

func (e *Editor) RemoveImage(index, image int) error {
	images, err := e.images(index)
	if err != nil {
		return err
	}
	if image < 0 || image >= len(images) {
		return nil
	}
	next := make([]Image, 0, len(images)-1)
	next = append(next, images[:image]...)
	next = append(next, images[image+1:]...)
	return e.setImages(index, next)
}

func (e *Editor) images(index int) ([]Image, error) {
	if index < 0 || index >= len(e.blocks) {
		return nil, fmt.Errorf("block index %d out of range", index)
	}
	content, ok := e.blocks[index].Content.(ImagesContent)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds no images", ErrContentMismatch, e.blocks[index].Type)
	}
	return content.Images, nil
}

func (e *Editor) setImages(index int, images []Image) error {
	next := cloneList(e.blocks)
	next[index].Content = ImagesContent{Images: images}
	e.update(next)
	return nil
}

// MoveItem returns a copy of list with the element at from spliced into
// position to.
func MoveItem[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if from == to || from < 0 || from >= len(out) || to < 0 || to >= len(out) {
		return out
	}
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

func mergeContent(t Type, current Content, patch map[string]interface{}) (Content, error) {
	base := map[string]interface{}{}
	if current != nil {
		encoded, err := json.Marshal(current)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(encoded, &base); err != nil {
			return nil, err
		}
	}
	for k, v := range patch {
		base[k] = v
	}
	return ParseContent(t, base)
}
