package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/export"
)

type importCmd struct {
	*root
	fs *flag.FlagSet
}

func parseImportCmd(args []string, r *root) (*importCmd, error) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	c := &importCmd{root: r.subcommand("import"), fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *importCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *importCmd) Run() error {
	if c.fs.NArg() != 1 {
		return &UsageError{of: c}
	}
	path := c.fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	store := annotation.NewStore()
	n, err := export.Apply(store, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("imported %d annotations across %d images\n", n, len(store.ImageIDs()))
	c.notifyImport(path)
	return nil
}
