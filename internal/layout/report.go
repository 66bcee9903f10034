// report.go
package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const reportWidth = 80

type reportStyles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	rule    lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		label:   r.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
		rule:    r.NewStyle().Foreground(lipgloss.Color("#374151")),
	}
}

// reporter accumulates the structure report; the first write error sticks.
type reporter struct {
	w   io.Writer
	s   reportStyles
	err error
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) section(title string) {
	r.printf("%s\n%s\n%s\n",
		r.s.rule.Render(strings.Repeat("=", reportWidth)),
		r.s.heading.Render(title),
		r.s.rule.Render(strings.Repeat("-", reportWidth)))
}

func (r *reporter) divider(indent string) {
	r.printf("%s\n", r.s.rule.Render(indent+strings.Repeat("-", reportWidth-len(indent))))
}

func (r *reporter) field(indent, label string, format string, args ...any) {
	r.printf("%s%s%s\n", indent, r.s.label.Render(fmt.Sprintf("%-*s", 22-len(indent), label+":")), fmt.Sprintf(format, args...))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// Report writes a human readable description of every block in the layout.
func (l *Layout) Report(w io.Writer) error {
	r := &reporter{w: w, s: newReportStyles(w)}

	r.section("Menu Blocks")
	for i := range l.Menus {
		m := &l.Menus[i]
		if i > 0 {
			r.divider("")
		}
		r.field("", "Menu tag", "%s", m.Tag)
		r.field("", "Title", "%s", m.Title)
		r.field("", "Indirected", "%s", yesNo(m.TitleSize > 0))
		if m.TitleSize > 0 {
			r.field("", "Indirected length", "%d bytes", m.TitleSize)
		}
		r.field("", "Item width", "%d OS units", m.Width)
		r.field("", "Item height", "%d OS units", m.Height)
		r.field("", "Item gap", "%d OS units", m.Gap)
		r.field("", "Title colours", "%d on %d", m.TitleFG, m.TitleBG)
		r.field("", "Work area colours", "%d on %d", m.WorkFG, m.WorkBG)
		r.field("", "File block offset", "%d bytes", m.Offset)
		r.field("", "Items", "%d", len(m.Items))
		for j := range m.Items {
			it := &m.Items[j]
			r.divider("  ")
			r.field("  ", "Item text", "%s", it.Text)
			r.field("  ", "Indirected", "%s", yesNo(it.TextSize > 0))
			if it.TextSize > 0 {
				r.field("  ", "Indirected length", "%d bytes", it.TextSize)
			}
			if it.Submenu != "" {
				kind := "Submenu"
				if it.Dialogue {
					kind = "Dialogue box"
				}
				r.field("  ", kind, "%s", it.Submenu)
			}
			r.field("  ", "Ticked", "%s", yesNo(it.MenuFlags&MenuTicked != 0))
			r.field("  ", "Dotted", "%s", yesNo(it.MenuFlags&MenuSeparate != 0))
			r.field("  ", "Shaded", "%s", yesNo(it.IconFlags&IconShaded != 0))
			r.field("  ", "Writable", "%s", yesNo(it.MenuFlags&MenuWritable != 0))
			r.field("  ", "Submenu message", "%s", yesNo(it.MenuFlags&MenuGiveWarning != 0))
			r.field("  ", "Always open", "%s", yesNo(it.MenuFlags&MenuSubMenuWhenShaded != 0))
			r.field("  ", "Icon flags", "0x%08X", it.IconFlags)
			r.field("  ", "File block offset", "%d bytes", it.Offset)
		}
	}

	r.section("Submenu References")
	for i := range l.Menus {
		m := &l.Menus[i]
		if m.Submenus != NullOffset {
			r.field("", "Menu tag", "%s (chain at %d)", m.Tag, m.Submenus)
		}
	}

	if l.Options.Dialogues == DialoguesTagged {
		r.section("Dialogue Box Chains")
		for _, t := range l.DialogueTags {
			r.field("", "Box tag", "%s", t.Tag)
			r.field("", "First target offset", "%d bytes", t.Chain)
			r.field("", "Block length in file", "%d bytes", t.Length)
			r.field("", "File block offset", "%d bytes", t.Offset)
		}
	} else {
		r.section("Dialogue Box References")
		for _, d := range l.DialogueOrder() {
			r.field("", "Box tag", "%s (handle at %d)", d.Tag, d.Offset)
		}
	}

	r.section("Indirected Data Blocks")
	for _, b := range l.Indirections {
		label := "Item text"
		if b.Target.Field == FieldTitle {
			label = "Menu title"
		}
		r.field("", label, "%s", b.Text)
		r.field("", "Maximum length", "%d bytes", b.Size)
		r.field("", "Target offset", "%d bytes", b.Location)
		r.field("", "Block length in file", "%d bytes", b.Length)
		r.field("", "File block offset", "%d bytes", b.Offset)
	}

	r.section("Validation Strings")
	for _, b := range l.Validations {
		r.field("", "Validation string", "%s", b.Text)
		r.field("", "Target offset", "%d bytes", b.Location)
		r.field("", "Block length in file", "%d bytes", b.Length)
		r.field("", "File block offset", "%d bytes", b.Offset)
	}
	r.printf("%s\n", r.s.rule.Render(strings.Repeat("=", reportWidth)))

	return r.err
}
