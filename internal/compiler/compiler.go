// Package compiler runs the menu compiler passes from source file to menu file.
package compiler

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/waozixyz/menugen/internal/layout"
	"github.com/waozixyz/menugen/internal/parser"
)

// Options describes one compile.
type Options struct {
	Source string
	Output string

	Layout    layout.Options
	StackSize int

	Logger *slog.Logger
	Report io.Writer // Receives the structure report when set
}

// Result describes a successful compile.
type Result struct {
	Layout *layout.Layout
	Size   int64
}

// Compile parses the source, lays out the menu file and writes it. Nothing is
// written to Output unless every pass succeeds.
func Compile(opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	logger.Info("compiling", "source", opts.Source, "output", opts.Output, "dialogues", opts.Layout.Dialogues, "embed_menus", opts.Layout.EmbedMenus)

	// --- Pass 1: Parse Source ---
	logger.Info("Pass 1: Parsing source...")
	model, err := parser.ParseFile(opts.Source, parser.Options{StackSize: opts.StackSize, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("parsing '%s': %w", opts.Source, err)
	}
	logger.Info("parsed", "menus", model.Len())

	// --- Pass 2: Collate ---
	logger.Info("Pass 2: Calculating offsets and chains...")
	l, err := layout.Collate(model, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("collating '%s': %w", opts.Source, err)
	}
	logger.Debug("collated", "size", l.Size, "indirections", len(l.Indirections), "validations", len(l.Validations))

	if opts.Report != nil {
		if err := l.Report(opts.Report); err != nil {
			return nil, fmt.Errorf("writing structure report: %w", err)
		}
	}

	// --- Pass 3: Write Menu File ---
	logger.Info("Pass 3: Writing menu file...", "path", opts.Output)
	if err := l.WriteFile(opts.Output); err != nil {
		return nil, err
	}
	logger.Info("success", "bytes", l.Size)

	return &Result{Layout: l, Size: int64(l.Size)}, nil
}

// WriteSummary prints the dialogue and menu orders a client needs when loading the file.
func (r *Result) WriteSummary(w io.Writer) error {
	l := r.Layout
	switch {
	case l.Options.Dialogues == layout.DialoguesTagged && len(l.DialogueTags) > 0:
		if _, err := fmt.Fprintln(w, "Dialogue box tags embedded into file."); err != nil {
			return err
		}
	case len(l.DialogueOrder()) > 0:
		if _, err := fmt.Fprintln(w, "Dialogue boxes required in order:"); err != nil {
			return err
		}
		for _, e := range l.DialogueOrder() {
			if _, err := fmt.Fprintf(w, "%4d : %s\n", e.Offset, e.Tag); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, "Menus created in order:"); err != nil {
		return err
	}
	for _, e := range l.MenuOrder() {
		if _, err := fmt.Fprintf(w, "%4d : %s (%s)\n", e.Offset, e.Tag, e.Title); err != nil {
			return err
		}
	}
	return nil
}
