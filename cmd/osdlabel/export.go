package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/export"
)

type exportCmd struct {
	*root
	fs        *flag.FlagSet
	output    string
	stdout    bool
	clipboard bool
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := &exportCmd{root: r.subcommand("export"), fs: fs}
	fs.StringVar(&c.output, "file", "", "write the canonical document to this path")
	fs.BoolVar(&c.stdout, "stdout", false, "write the canonical document to stdout")
	fs.BoolVar(&c.clipboard, "clipboard", false, "copy the canonical document to the clipboard")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *exportCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *exportCmd) Run() error {
	if c.fs.NArg() != 1 {
		return &UsageError{of: c}
	}
	path := c.fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	store := annotation.NewStore()
	if _, err := export.Apply(store, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out, err := export.Serialize(store, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	out = append(out, '\n')

	wrote := false
	if c.output != "" {
		if err := os.WriteFile(c.output, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.output, err)
		}
		c.notifyExport(c.output)
		wrote = true
	}
	if c.clipboard {
		if err := export.CopyToClipboard(out); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		c.notifyCopy("annotation export")
		wrote = true
	}
	if c.stdout || !wrote {
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	}
	return nil
}
