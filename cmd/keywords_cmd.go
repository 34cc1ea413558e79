package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nextlevelbuilder/autoreply/internal/commands"
	"github.com/nextlevelbuilder/autoreply/internal/keywords"
	"github.com/nextlevelbuilder/autoreply/internal/store"
)

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keywords",
		Aliases: []string{"kw"},
		Short:   "Manage keyword replies in the configured store",
		Long: `Offline administration of the keyword map.

With the file backend a running "autoreply serve" picks up changes within a
second. Other backends are read at startup.`,
	}
	cmd.AddCommand(keywordsAddCmd())
	cmd.AddCommand(keywordsListCmd())
	cmd.AddCommand(keywordsDeleteCmd())
	cmd.AddCommand(keywordsExportCmd())
	cmd.AddCommand(keywordsImportCmd())
	return cmd
}

// withIndex opens the configured store, loads the index and runs fn.
func withIndex(fn func(ctx context.Context, ix *keywords.Index) error) error {
	cfg := mustLoadConfig()
	setupLogging(cfg.Log)

	ctx := context.Background()
	ks := mustOpenKeywordStore(ctx, cfg)
	defer ks.Close()

	return withStore(ctx, ks, fn)
}

// withStore loads ks strictly: an unreadable record aborts before fn can
// overwrite it, and mutations inside fn report save failures.
func withStore(ctx context.Context, ks store.KeywordStore, fn func(ctx context.Context, ix *keywords.Index) error) error {
	ix, err := keywords.Open(ctx, ks, keywords.WithSaveErrors())
	if err != nil {
		return fmt.Errorf("%w (record left untouched)", err)
	}
	return fn(ctx, ix)
}

func addKeyword(ctx context.Context, ix *keywords.Index, w io.Writer, keyword, reply string) error {
	entry, err := ix.Add(ctx, keyword, reply)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added [%s] -> %s\n", entry.Keyword, entry.Reply)
	return nil
}

func deleteKeyword(ctx context.Context, ix *keywords.Index, w io.Writer, keyword string) error {
	key, err := ix.Remove(ctx, keyword)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	fmt.Fprintf(w, "Deleted [%s]\n", key)
	return nil
}

func importKeywords(ctx context.Context, ix *keywords.Index, w io.Writer, entries []store.KeywordEntry, replace bool) error {
	n, err := ix.Import(ctx, entries, replace)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %d keyword replies (%d total).\n", n, ix.Len())
	return nil
}

func keywordsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <keyword> <reply...>",
		Short: "Add or overwrite a keyword reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(func(ctx context.Context, ix *keywords.Index) error {
				return addKeyword(ctx, ix, os.Stdout, args[0], strings.Join(args[1:], " "))
			})
		},
	}
}

func keywordsListCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List keyword replies in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(func(_ context.Context, ix *keywords.Index) error {
				entries := ix.List()
				if jsonOutput {
					data, err := store.MarshalKeywords(entries)
					if err != nil {
						return err
					}
					os.Stdout.Write(data)
					return nil
				}
				if len(entries) == 0 {
					fmt.Println("No keyword replies.")
					return nil
				}
				fmt.Println(commands.FormatEntries(entries))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the record as JSON")
	return cmd
}

func keywordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <keyword...>",
		Short: "Delete a keyword reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(func(ctx context.Context, ix *keywords.Index) error {
				return deleteKeyword(ctx, ix, os.Stdout, strings.Join(args, " "))
			})
		},
	}
}

func keywordsExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export keyword replies as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(func(_ context.Context, ix *keywords.Index) error {
				data, err := encodeEntries(ix.List(), formatFor(format, output))
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = os.Stdout.Write(data)
					return err
				}
				return os.WriteFile(output, data, 0o600)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func keywordsImportCmd() *cobra.Command {
	var (
		format  string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import keyword replies from JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := decodeEntries(data, formatFor(format, args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return withIndex(func(ctx context.Context, ix *keywords.Index) error {
				return importKeywords(ctx, ix, os.Stdout, entries, replace)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&replace, "replace", false, "drop existing keywords first")
	return cmd
}

// formatFor returns the explicit format, or guesses it from path.
func formatFor(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// encodeEntries renders entries as the ordered JSON record or as a YAML
// sequence of {keyword, reply} items.
func encodeEntries(entries []store.KeywordEntry, format string) ([]byte, error) {
	switch format {
	case "json":
		return store.MarshalKeywords(entries)
	case "yaml":
		if entries == nil {
			entries = []store.KeywordEntry{}
		}
		return yaml.Marshal(entries)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func decodeEntries(data []byte, format string) ([]store.KeywordEntry, error) {
	switch format {
	case "json":
		return store.UnmarshalKeywords(data)
	case "yaml":
		var entries []store.KeywordEntry
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
