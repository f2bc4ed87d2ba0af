package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate catalog files without touching the store",
	Long:  "Checks every record of the given catalogs, together, and lists all problems found.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var all []dictionary.Entry
	for _, path := range args {
		entries, err := dictionary.LoadFile(path)
		if err != nil {
			if reportProblems(cmd.ErrOrStderr(), err) == errInvalid {
				return fmt.Errorf("%s: %w", path, errInvalid)
			}
			return err
		}
		all = append(all, entries...)
	}

	if err := dictionary.Validate(all); err != nil {
		return reportProblems(cmd.ErrOrStderr(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries are valid\n", okStyle.Render("✓"), len(all))
	return nil
}
