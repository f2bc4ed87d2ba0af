package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the store holds",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, path, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.Info()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle.Render("acroserve store"))
	fmt.Fprintf(w, "  Path:     %s\n", path)
	if info.Entries == 0 {
		fmt.Fprintf(w, "  Entries:  %s\n", warnStyle.Render("none (run acroctl init)"))
		return nil
	}
	fmt.Fprintf(w, "  Entries:  %d\n", info.Entries)
	fmt.Fprintf(w, "  Version:  %d\n", info.Version)
	fmt.Fprintf(w, "  Saved:    %s\n", info.SavedAt.Local().Format("2006-01-02 15:04:05"))

	entries, _, err := db.LoadEntries()
	if err != nil {
		return err
	}
	dict, err := dictionary.New(entries)
	if err != nil {
		fmt.Fprintf(w, "  Valid:    %s\n", errStyle.Render(err.Error()))
		return nil
	}
	for _, c := range dictionary.Categories() {
		if n := len(dict.InCategory(c)); n > 0 {
			fmt.Fprintf(w, "    %-26s %d\n", c, n)
		}
	}
	return nil
}
