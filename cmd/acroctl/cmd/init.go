package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
)

var (
	initForce bool
	initFrom  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the store",
	Long:  "Writes the embedded base catalog (or --from a catalog file) into an empty store.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite a store that already holds entries")
	initCmd.Flags().StringVar(&initFrom, "from", "", "Seed from this catalog file instead of the base catalog")
}

func runInit(cmd *cobra.Command, args []string) error {
	db, path, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		return err
	}
	if info.Entries > 0 && !initForce {
		return fmt.Errorf("%s already holds %d entries (use --force to overwrite)", path, info.Entries)
	}

	var entries []dictionary.Entry
	if initFrom != "" {
		entries, err = dictionary.LoadFile(initFrom)
	} else {
		entries, err = dictionary.Base()
	}
	if err != nil {
		return err
	}

	mgr, err := manager.New(entries, manager.WithStartVersion(info.Version+1), manager.WithLogger(log.New(io.Discard)))
	if err != nil {
		return reportProblems(cmd.ErrOrStderr(), err)
	}
	snap := mgr.Current()
	if err := db.SaveEntries(snap.Version, mgr.Export()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s seeded %s with %d entries (v%d)\n", okStyle.Render("✓"), path, snap.Len(), snap.Version)
	return nil
}
