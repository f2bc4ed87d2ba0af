package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

var errInvalid = errors.New("catalog is invalid")

// reportProblems prints every validation problem in err and returns an
// error suited for the command result. Non-validation errors pass through.
func reportProblems(w io.Writer, err error) error {
	verrs, ok := dictionary.AsValidationErrors(err)
	if !ok {
		return err
	}
	fmt.Fprintf(w, "%s %d problems in %d records\n", errStyle.Render("✗"), len(verrs), len(verrs.Records()))
	for _, ve := range verrs {
		fmt.Fprintf(w, "  %s\n", ve.Error())
	}
	return errInvalid
}
