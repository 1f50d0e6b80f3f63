package command

import (
	"flag"
	"fmt"
	"io"

	"github.com/joeycumines/aagent/internal/catalog"
	"github.com/joeycumines/aagent/internal/goal"
)

// CatalogCommand lists the goals, trees and actions a directive can name.
type CatalogCommand struct {
	*BaseCommand
	trees string
}

// NewCatalogCommand returns the catalog command.
func NewCatalogCommand() *CatalogCommand {
	return &CatalogCommand{
		BaseCommand: NewBaseCommand(
			"catalog",
			"List available actions, goals and trees",
			"catalog [-trees file]",
		),
	}
}

// SetupFlags registers -trees.
func (c *CatalogCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.trees, "trees", "", "Also list the trees defined in this YAML file")
}

// Execute prints the directive names, grouped by kind.
func (c *CatalogCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return errUnexpectedArgs
	}
	defs, err := loadTrees(c.trees)
	if err != nil {
		return err
	}
	cat := catalog.New(nil, catalog.DefaultProfile(), catalog.WithTrees(defs))

	_, _ = fmt.Fprintln(stdout, "Actions:")
	for _, verb := range goal.Verbs() {
		_, _ = fmt.Fprintf(stdout, "  action:%s\n", verb)
	}
	_, _ = fmt.Fprintln(stdout, "Goals:")
	for _, name := range cat.Goals() {
		_, _ = fmt.Fprintf(stdout, "  goal:%s\n", name)
	}
	_, _ = fmt.Fprintln(stdout, "Trees:")
	for _, name := range cat.Trees() {
		_, _ = fmt.Fprintf(stdout, "  bt:%s\n", name)
	}
	return nil
}
