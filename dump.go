// dump.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/waozixyz/menugen/internal/decoder"
)

func newDumpCommand(stdout io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump <menu file>",
		Short: "Decode a menu file and print its menus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read menu file '%s': %w", args[0], err)
			}
			f, err := decoder.Decode(data)
			if err != nil {
				return fmt.Errorf("decoding '%s': %w", args[0], err)
			}

			switch format {
			case "yaml":
				enc := yaml.NewEncoder(stdout)
				enc.SetIndent(2)
				if err := enc.Encode(f); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				return dumpText(stdout, f)
			default:
				return fmt.Errorf("unknown format '%s' (want text or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}

func dumpText(w io.Writer, f *decoder.File) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	format := "standard"
	if f.Extended {
		format = "extended"
	}
	printf("Format: %s, dialogues: %s\n", format, f.Dialogues)
	for i, m := range f.Menus {
		kind := "Fixed"
		if m.TitleIndirected {
			kind = "Indirected"
		}
		printf("Menu %d: %s title %s", i, kind, m.Title)
		if m.Tag != "" {
			printf(" [%s]", m.Tag)
		}
		printf(" (width %d, height %d, gap %d)\n", m.Width, m.Height, m.Gap)

		for _, it := range m.Items {
			printf("  Item: %q", it.Text)
			if it.Validation != "" {
				printf(" validation %q", it.Validation)
			}
			if it.Submenu != nil {
				printf(" -> menu %d", *it.Submenu)
			}
			if it.Dialogue != "" {
				printf(" -> dialogue %s", it.Dialogue)
			}
			if it.DialogueSlot != nil {
				printf(" -> dialogue slot %d", *it.DialogueSlot)
			}
			printf(" menu flags 0x%X, icon flags 0x%08X\n", it.MenuFlags, it.IconFlags)
		}
	}
	return err
}
