// commands.go
package parser

import "github.com/waozixyz/menugen/internal/menu"

// blockType identifies what a `{` opened. The values are what goes on the nesting stack.
type blockType int

const (
	blockNone blockType = iota
	blockMenu
	blockItem
	blockSubmenu // submenu or d_box
	blockWritable
	blockSprite
)

func (t blockType) String() string {
	switch t {
	case blockMenu:
		return "menu"
	case blockItem:
		return "item"
	case blockSubmenu:
		return "submenu or d_box"
	case blockWritable:
		return "writable"
	case blockSprite:
		return "sprite"
	default:
		return "none"
	}
}

// context is the set of currently open block types.
type context struct {
	menu, item, submenu, writable, sprite bool
}

func (c *context) set(t blockType, open bool) {
	switch t {
	case blockMenu:
		c.menu = open
	case blockItem:
		c.item = open
	case blockSubmenu:
		c.submenu = open
	case blockWritable:
		c.writable = open
	case blockSprite:
		c.sprite = open
	}
}

type handler func(b *menu.Builder, args []string) error

type command struct {
	name    string
	sig     string
	ctx     context
	opens   blockType
	handler handler // nil for commands that are accepted but have no effect
}

// ctxOf builds a context from the menu,item,submenu,writable,sprite columns.
func ctxOf(m, i, s, w, sp bool) context {
	return context{menu: m, item: i, submenu: s, writable: w, sprite: sp}
}

const (
	on  = true
	off = false
)

// commands is the grammar. Order matters: when a name and context appear twice,
// the earlier entry wins.
var commands = []command{
	{"always", "", ctxOf(on, on, on, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetItemWhenShaded() }},
	{"colours", "IIII", ctxOf(on, off, off, off, off), blockNone, menuColours},
	{"colours", "II", ctxOf(on, on, off, off, off), blockNone, itemColours},
	{"d_box", "I", ctxOf(on, on, off, off, off), blockSubmenu, func(b *menu.Builder, a []string) error { return b.SetItemSubmenu(a[0], true) }},
	{"dotted", "", ctxOf(on, on, off, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetItemDotted() }},
	{"half", "", ctxOf(on, on, off, off, on), blockNone, nil},
	{"indirected", "I", ctxOf(on, off, off, off, off), blockNone, withInt((*menu.Builder).SetTitleIndirection)},
	{"indirected", "I", ctxOf(on, on, off, off, off), blockNone, withInt((*menu.Builder).SetItemIndirection)},
	{"item", "S", ctxOf(on, off, off, off, off), blockItem, func(b *menu.Builder, a []string) error { return b.CreateItem(a[0]) }},
	{"item_gap", "I", ctxOf(on, off, off, off, off), blockNone, withInt((*menu.Builder).SetMenuItemGap)},
	{"item_height", "I", ctxOf(on, off, off, off, off), blockNone, withInt((*menu.Builder).SetMenuItemHeight)},
	{"menu", "IS", ctxOf(off, off, off, off, off), blockMenu, func(b *menu.Builder, a []string) error { return b.CreateMenu(a[0], a[1]) }},
	{"reverse", "", ctxOf(on, off, off, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetMenuReversed() }},
	{"shaded", "", ctxOf(on, on, off, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetItemShaded() }},
	{"sprite", "", ctxOf(on, on, off, off, off), blockSprite, nil},
	{"submenu", "I", ctxOf(on, on, off, off, off), blockSubmenu, func(b *menu.Builder, a []string) error { return b.SetItemSubmenu(a[0], false) }},
	{"ticked", "", ctxOf(on, on, off, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetItemTicked() }},
	{"validation", "S", ctxOf(on, on, off, on, off), blockNone, func(b *menu.Builder, a []string) error { return b.SetItemValidation(a[0]) }},
	{"warning", "", ctxOf(on, on, on, off, off), blockNone, func(b *menu.Builder, _ []string) error { return b.SetItemWarning() }},
	{"writable", "", ctxOf(on, on, off, off, off), blockWritable, func(b *menu.Builder, _ []string) error { return b.SetItemWritable() }},
}

func withInt(fn func(*menu.Builder, int) error) handler {
	return func(b *menu.Builder, args []string) error {
		v, err := atoi(args[0])
		if err != nil {
			return err
		}
		return fn(b, v)
	}
}

func menuColours(b *menu.Builder, args []string) error {
	v, err := atois(args)
	if err != nil {
		return err
	}
	return b.SetMenuColours(v[0], v[1], v[2], v[3])
}

func itemColours(b *menu.Builder, args []string) error {
	v, err := atois(args)
	if err != nil {
		return err
	}
	return b.SetItemColours(v[0], v[1])
}

type commandKey struct {
	name string
	ctx  context
}

// Standalone statements may use any entry; block statements only entries that open a block.
var standaloneIndex, blockIndex = buildIndexes(commands)

func buildIndexes(table []command) (standalone, block map[commandKey]*command) {
	standalone = make(map[commandKey]*command, len(table))
	block = make(map[commandKey]*command, len(table))
	for i := range table {
		cmd := &table[i]
		key := commandKey{cmd.name, cmd.ctx}
		if _, ok := standalone[key]; !ok {
			standalone[key] = cmd
		}
		if cmd.opens != blockNone {
			if _, ok := block[key]; !ok {
				block[key] = cmd
			}
		}
	}
	return standalone, block
}

// lookup finds the command for name in the given context.
func lookup(name string, ctx context, opensBlock bool) *command {
	if opensBlock {
		return blockIndex[commandKey{name, ctx}]
	}
	return standaloneIndex[commandKey{name, ctx}]
}
