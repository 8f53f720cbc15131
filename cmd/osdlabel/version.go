package main

import (
	"flag"
	"fmt"
)

type versionCmd struct {
	*root
	fs   *flag.FlagSet
	full bool
}

func parseVersionCmd(args []string, r *root) (*versionCmd, error) {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	c := &versionCmd{root: r, fs: fs}
	fs.BoolVar(&c.full, "full", false, "also print the build commit and date when known")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *versionCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *versionCmd) Run() error {
	if c.fs.NArg() != 0 {
		return &UsageError{of: c}
	}
	fmt.Printf("%s version %s\n", c.program, version)
	if c.full {
		if commit != "" {
			fmt.Printf("commit %s\n", commit)
		}
		if date != "" {
			fmt.Printf("built %s\n", date)
		}
	}
	return nil
}
