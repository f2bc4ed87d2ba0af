package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/dictionary"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the stored dictionary",
	Long:  "Writes the stored entries in registration order. The format follows the file extension unless --format is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the catalog formats acroctl reads and writes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range dictionary.ListSupportedFormats() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %-20s %s\n", info.Name, info.Description, strings.Join(info.Extensions, " "))
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json, csv or msgpack")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, path, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, version, err := db.LoadEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s is empty, exporting the base catalog\n", warnStyle.Render("!"), path)
		if entries, err = dictionary.Base(); err != nil {
			return err
		}
	}

	out := args[0]
	if exportFormat == "" {
		err = dictionary.SaveFile(out, entries)
	} else {
		var format dictionary.FileFormat
		if format, err = dictionary.ParseFormat(exportFormat); err != nil {
			return err
		}
		if info, ok := dictionary.GetFormatInfo(format); ok &&
			!slices.Contains(info.Extensions, strings.ToLower(filepath.Ext(out))) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s writing %s to %s; acroserve will not recognize it by name\n",
				warnStyle.Render("!"), info.Name, out)
		}
		err = utils.WriteFileAtomic(out, func(f *os.File) error {
			return dictionary.WriteEntries(f, format, entries)
		})
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s exported %d entries (v%d) to %s\n", okStyle.Render("✓"), len(entries), version, out)
	return nil
}
