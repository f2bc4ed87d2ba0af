package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a catalog file into the store",
	Long: "Replaces the stored dictionary with the entries of a json, csv or msgpack catalog. " +
		"With --merge the entries are appended instead. Nothing is written unless every record is valid.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Append to the stored entries instead of replacing them")
}

func runImport(cmd *cobra.Command, args []string) error {
	incoming, err := dictionary.LoadFile(args[0])
	if err != nil {
		return err
	}

	db, path, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	current, version, err := db.LoadEntries()
	if err != nil {
		return err
	}
	if len(current) == 0 {
		log.Debug("Store is empty, starting from the base catalog")
		if current, err = dictionary.Base(); err != nil {
			return err
		}
	}

	mgr, err := manager.New(current, manager.WithStartVersion(version), manager.WithLogger(log.New(io.Discard)))
	if err != nil {
		return fmt.Errorf("stored dictionary: %w", err)
	}
	if importMerge {
		err = mgr.Merge(incoming)
	} else {
		err = mgr.Import(incoming)
	}
	if err != nil {
		return reportProblems(cmd.ErrOrStderr(), err)
	}

	snap := mgr.Current()
	if err := db.SaveEntries(snap.Version, mgr.Export()); err != nil {
		return err
	}
	verb := "imported"
	if importMerge {
		verb = "merged"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d entries from %s into %s (now %d entries, v%d)\n",
		okStyle.Render("✓"), verb, len(incoming), args[0], path, snap.Len(), snap.Version)
	return nil
}
