package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/webcite"
	"github.com/fwojciec/webcite/pipeline"
)

// Run executes the key command. The key is derived the same way a capture
// derives it before any page content is read: from the DOI when the input
// carries one, otherwise from the link.
func (c *KeyCmd) Run(deps *Dependencies) error {
	input := strings.TrimPrefix(strings.TrimSpace(c.Input), "doi:")
	fields := webcite.NewFields()
	if strings.HasPrefix(input, "10.") {
		fields.Set(webcite.FieldDOI, input)
	} else if u, err := pipeline.ParseLink(input); err == nil {
		u.Fragment = ""
		u.RawFragment = ""
		if doi, _, ok := webcite.ExtractDOI(u.String()); ok {
			fields.Set(webcite.FieldDOI, doi)
		} else {
			fields.Set(webcite.FieldURL, u.String())
		}
	}

	key, err := webcite.GenerateKey(fields)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webcite.ErrorMessage(err))
		return err
	}
	fmt.Fprintln(deps.Stdout, key)
	return nil
}
