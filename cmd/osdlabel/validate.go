package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/guyo13/osdlabel-sub000/internal/config"
	"github.com/guyo13/osdlabel-sub000/internal/export"
)

type validateCmd struct {
	*root
	fs      *flag.FlagSet
	profile bool
}

func parseValidateCmd(args []string, r *root) (*validateCmd, error) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	c := &validateCmd{root: r.subcommand("validate"), fs: fs}
	fs.BoolVar(&c.profile, "profile", false, "validate a profile file instead of an export document")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *validateCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *validateCmd) Run() error {
	if c.fs.NArg() != 1 {
		return &UsageError{of: c}
	}
	path := c.fs.Arg(0)

	if c.profile {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		p, err := config.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s: profile OK (%d contexts)\n", path, len(p.Contexts))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	anns, err := export.Deserialize(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Printf("%s: OK (%d annotations)\n", path, len(anns))
	return nil
}
