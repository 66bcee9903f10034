// Package decoder reads menu files back into a plain description of their
// menus, items and chains.
package decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/waozixyz/menugen/internal/layout"
)

var (
	ErrTruncated = errors.New("menu file truncated")
	ErrBadOffset = errors.New("bad offset in menu file")
)

// File is a decoded menu file.
type File struct {
	Extended  bool   `yaml:"extended"`
	Dialogues string `yaml:"dialogues"` // none, legacy or tagged
	Menus     []Menu `yaml:"menus"`
}

// Menu is a decoded menu record.
type Menu struct {
	Tag             string `yaml:"tag,omitempty"` // Only known in the extended format
	Offset          int    `yaml:"offset"`
	Title           string `yaml:"title"`
	TitleIndirected bool   `yaml:"title_indirected,omitempty"`
	TitleSize       int    `yaml:"title_size,omitempty"`
	TitleFG         int    `yaml:"title_fg"`
	TitleBG         int    `yaml:"title_bg"`
	WorkFG          int    `yaml:"work_fg"`
	WorkBG          int    `yaml:"work_bg"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	Gap             int    `yaml:"gap"`
	Items           []Item `yaml:"items"`
}

// Item is a decoded item record.
type Item struct {
	Offset     int    `yaml:"offset"`
	Text       string `yaml:"text"`
	Indirected bool   `yaml:"indirected,omitempty"`
	TextSize   int    `yaml:"text_size,omitempty"`
	Validation string `yaml:"validation,omitempty"`

	MenuFlags uint32 `yaml:"menu_flags"`
	IconFlags uint32 `yaml:"icon_flags"`

	Ticked     bool `yaml:"ticked,omitempty"`
	Dotted     bool `yaml:"dotted,omitempty"`
	Shaded     bool `yaml:"shaded,omitempty"`
	Writable   bool `yaml:"writable,omitempty"`
	Warning    bool `yaml:"warning,omitempty"`
	WhenShaded bool `yaml:"when_shaded,omitempty"`
	Last       bool `yaml:"last,omitempty"`

	FG int `yaml:"fg"`
	BG int `yaml:"bg"`

	Submenu      *int   `yaml:"submenu,omitempty"`       // Index of the menu this item opens
	Dialogue     string `yaml:"dialogue,omitempty"`      // Tagged format
	DialogueSlot *int   `yaml:"dialogue_slot,omitempty"` // Position on the legacy chain
}

type itemRef struct{ menu, item int }

// decoder reads words with a sticky error; reads after a failure return zero.
type decoder struct {
	data []byte
	err  error

	file  *File
	items map[int]itemRef // Link field offset -> item
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) word(offset int) int32 {
	if d.err != nil {
		return 0
	}
	if offset < 0 {
		d.fail(fmt.Errorf("%w: %d", ErrBadOffset, offset))
		return 0
	}
	if offset+layout.WordSize > len(d.data) {
		d.fail(fmt.Errorf("%w: word at %d, file is %d bytes", ErrTruncated, offset, len(d.data)))
		return 0
	}
	return int32(binary.LittleEndian.Uint32(d.data[offset:]))
}

func (d *decoder) byteAt(offset int) int {
	if d.err != nil {
		return 0
	}
	if offset < 0 || offset >= len(d.data) {
		d.fail(fmt.Errorf("%w: byte at %d, file is %d bytes", ErrTruncated, offset, len(d.data)))
		return 0
	}
	return int(d.data[offset])
}

// text reads a string of at most size bytes, stopping at the first NUL.
func (d *decoder) text(offset, size int) string {
	if d.err != nil {
		return ""
	}
	if offset < 0 || size < 0 || offset+size > len(d.data) {
		d.fail(fmt.Errorf("%w: %d bytes of text at %d, file is %d bytes", ErrTruncated, size, offset, len(d.data)))
		return ""
	}
	b := d.data[offset : offset+size]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Decode parses a menu file image.
func Decode(data []byte) (*File, error) {
	d := &decoder{data: data, file: &File{Dialogues: "none"}, items: make(map[int]itemRef)}

	dialogues := d.word(0)
	indirection := d.word(4)
	validation := d.word(8)
	if d.err != nil {
		return nil, d.err
	}

	first := layout.FileHeadSize + layout.MenuStartSize
	var tags []string
	if d.word(layout.FileHeadSize) == 0 {
		d.file.Extended = true
		first, tags = d.readDirectory(int(d.word(layout.FileHeadSize + 8)))
	}
	d.readMenus(first, tags)

	indirected := d.readIndirections(indirection)
	validations := d.readValidations(validation)
	d.resolveText(indirected, validations)

	d.readSubmenus()
	if dialogues != layout.NullOffset {
		if d.word(int(dialogues)) == 0 {
			d.file.Dialogues = "tagged"
			d.readTaggedDialogues(int(dialogues) + layout.WordSize)
		} else {
			d.file.Dialogues = "legacy"
			d.readLegacyDialogues(dialogues)
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return d.file, nil
}

// readDirectory returns the first menu pointer and the menu tags in file order.
func (d *decoder) readDirectory(offset int) (int, []string) {
	var tags []string
	first := -1
	for d.err == nil {
		ptr := d.word(offset)
		if ptr == layout.NullOffset {
			break
		}
		tag := d.text(offset+layout.WordSize, min(32, len(d.data)-offset-layout.WordSize))
		if first < 0 {
			first = int(ptr)
		}
		tags = append(tags, tag)
		offset += (len(tag) + 8) &^ 3
	}
	if first < 0 {
		d.fail(fmt.Errorf("%w: empty menu directory", ErrBadOffset))
	}
	return first, tags
}

func (d *decoder) readMenus(ptr int, tags []string) {
	seen := make(map[int]bool)
	for d.err == nil && ptr != int(layout.NullOffset) {
		if seen[ptr] || ptr < layout.MenuStartSize {
			d.fail(fmt.Errorf("%w: menu pointer %d", ErrBadOffset, ptr))
			return
		}
		seen[ptr] = true

		m := Menu{
			Offset:  ptr - layout.MenuStartSize,
			TitleFG: d.byteAt(ptr + 12),
			TitleBG: d.byteAt(ptr + 13),
			WorkFG:  d.byteAt(ptr + 14),
			WorkBG:  d.byteAt(ptr + 15),
			Width:   int(d.word(ptr + 16)),
			Height:  int(d.word(ptr + 20)),
			Gap:     int(d.word(ptr + 24)),
		}
		if i := len(d.file.Menus); i < len(tags) {
			m.Tag = tags[i]
		}

		mi := len(d.file.Menus)
		offset := ptr + layout.MenuBlockSize
		for d.err == nil {
			it := d.readItem(offset)
			d.items[offset+4] = itemRef{menu: mi, item: len(m.Items)}
			m.Items = append(m.Items, it)
			offset += layout.ItemRecordSize
			if it.Last {
				break
			}
		}

		if len(m.Items) > 0 && m.Items[0].MenuFlags&layout.MenuTitleIndirected != 0 {
			m.TitleIndirected = true
			m.TitleSize = int(d.word(ptr + 8))
		} else {
			m.Title = d.text(ptr, layout.TextFieldSize)
		}

		d.file.Menus = append(d.file.Menus, m)
		ptr = int(d.word(ptr - layout.MenuStartSize))
	}
}

func (d *decoder) readItem(offset int) Item {
	it := Item{
		Offset:    offset,
		MenuFlags: uint32(d.word(offset)),
		IconFlags: uint32(d.word(offset + 8)),
	}
	it.Ticked = it.MenuFlags&layout.MenuTicked != 0
	it.Dotted = it.MenuFlags&layout.MenuSeparate != 0
	it.Writable = it.MenuFlags&layout.MenuWritable != 0
	it.Warning = it.MenuFlags&layout.MenuGiveWarning != 0
	it.WhenShaded = it.MenuFlags&layout.MenuSubMenuWhenShaded != 0
	it.Last = it.MenuFlags&layout.MenuLast != 0
	it.Shaded = it.IconFlags&layout.IconShaded != 0
	it.FG = int((it.IconFlags & layout.IconFGMask) >> layout.IconFGShift)
	it.BG = int((it.IconFlags & layout.IconBGMask) >> layout.IconBGShift)

	if it.IconFlags&layout.IconIndirected != 0 {
		it.Indirected = true
		it.TextSize = int(d.word(offset + 20))
	} else {
		it.Text = d.text(offset+12, layout.TextFieldSize)
	}
	return it
}

// readIndirections maps each patch location to its text.
func (d *decoder) readIndirections(offset int32) map[int32]string {
	out := make(map[int32]string)
	if offset == layout.NullOffset {
		return out
	}
	off := int(offset)
	for d.err == nil {
		loc := d.word(off)
		if loc == layout.NullOffset {
			break
		}
		size := int(d.word(int(loc) + 8))
		if size <= 0 {
			d.fail(fmt.Errorf("%w: indirection at %d has size %d", ErrBadOffset, off, size))
			break
		}
		out[loc] = d.text(off+layout.WordSize, size)
		off += (size + 7) &^ 3
	}
	return out
}

func (d *decoder) readValidations(offset int32) map[int32]string {
	out := make(map[int32]string)
	if offset == layout.NullOffset {
		return out
	}
	off := int(offset)
	for d.err == nil {
		loc := d.word(off)
		if loc == layout.NullOffset {
			break
		}
		length := int(d.word(off + 4))
		if length <= 2*layout.WordSize || length%4 != 0 {
			d.fail(fmt.Errorf("%w: validation block at %d has length %d", ErrBadOffset, off, length))
			break
		}
		out[loc] = d.text(off+2*layout.WordSize, length-2*layout.WordSize)
		off += length
	}
	return out
}

func (d *decoder) resolveText(indirected, validations map[int32]string) {
	for mi := range d.file.Menus {
		m := &d.file.Menus[mi]
		if m.TitleIndirected {
			m.Title = indirected[int32(m.Offset+layout.MenuStartSize)]
		}
		for ii := range m.Items {
			it := &m.Items[ii]
			if it.Indirected {
				it.Text = indirected[int32(it.Offset+12)]
				it.Validation = validations[int32(it.Offset+16)]
			}
		}
	}
}

// walk follows a chain of item link fields, calling fn with each item in order.
func (d *decoder) walk(head int32, fn func(it *Item, n int)) {
	limit := len(d.items)
	for n := 0; d.err == nil && head != layout.NullOffset; n++ {
		ref, ok := d.items[int(head)]
		if !ok || n >= limit {
			d.fail(fmt.Errorf("%w: chain link %d", ErrBadOffset, head))
			return
		}
		fn(&d.file.Menus[ref.menu].Items[ref.item], n)
		head = d.word(int(head))
	}
}

func (d *decoder) readSubmenus() {
	for mi := range d.file.Menus {
		head := d.word(d.file.Menus[mi].Offset + 4)
		target := mi
		d.walk(head, func(it *Item, _ int) { it.Submenu = &target })
	}
}

func (d *decoder) readLegacyDialogues(head int32) {
	d.walk(head, func(it *Item, n int) {
		slot := n
		it.DialogueSlot = &slot
	})
}

func (d *decoder) readTaggedDialogues(offset int) {
	for d.err == nil {
		chain := d.word(offset)
		if chain == layout.NullOffset {
			return
		}
		tag := d.text(offset+layout.WordSize, min(32, len(d.data)-offset-layout.WordSize))
		d.walk(chain, func(it *Item, _ int) { it.Dialogue = tag })
		offset += (len(tag) + 8) &^ 3
	}
}
