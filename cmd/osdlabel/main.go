package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/guyo13/osdlabel-sub000/internal/config"
	"github.com/guyo13/osdlabel-sub000/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	profile      *config.Profile
	exportAlerts bool
	importAlerts bool
	copyAlerts   bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:      program,
		notifier:     r.notifier,
		profile:      r.profile,
		exportAlerts: r.exportAlerts,
		importAlerts: r.importAlerts,
		copyAlerts:   r.copyAlerts,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	profile, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load profile: %v\n", err)
		profile = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("osdlabel", flag.ExitOnError),
		program:  "osdlabel",
		notifier: notify.New(prefs),
		profile:  profile,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", profile.Notify.Export, "show a desktop notification after writing an export file")
	r.fs.BoolVar(&r.importAlerts, "notify-import", profile.Notify.Import, "show a desktop notification after applying an export document")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", profile.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventImport, r.importAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "view":
		cmd, err = parseViewCmd(subArgs, r)
	case "validate":
		cmd, err = parseValidateCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "import":
		cmd, err = parseImportCmd(subArgs, r)
	case "version":
		cmd, err = parseVersionCmd(subArgs, r)
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	if runErr := cmd.Run(); runErr != nil {
		return runErr
	}
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifyExport(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(path)
}

func (r *root) notifyImport(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Import(detail)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}
