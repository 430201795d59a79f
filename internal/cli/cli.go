// Package cli implements the yamlpath command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoelho/yamlpath/internal/config"
	"github.com/jacoelho/yamlpath/internal/console"
	"github.com/jacoelho/yamlpath/internal/document"
	"github.com/jacoelho/yamlpath/internal/exit"
	"github.com/jacoelho/yamlpath/internal/eyaml"
	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
)

// App wires the commands to their input and output streams.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Transformer replaces the eyaml command when set.
	Transformer eyaml.Transformer

	cfg config.Config
	log *slog.Logger
}

// New returns an App bound to the process streams.
func New() *App {
	return &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr, Getenv: os.Getenv}
}

// Run executes args (without the program name) and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.Command()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exit.CodeOK
	}

	r := exit.FromError(err)
	if a.log != nil {
		a.log.Error(err.Error())
	} else {
		r.Output = a.Stderr
		r.Print()
	}
	return r.ExitCode
}

// Command builds the root command.
func (a *App) Command() *cobra.Command {
	a.cfg = config.Config{}
	a.log = nil

	root := &cobra.Command{
		Use:           "yamlpath",
		Short:         "Query and change YAML documents with YAML Path expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ApplyEnv(cmd.Flags(), a.Getenv); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.log = console.New(a.Stderr, a.cfg.Console())
			return nil
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.getCommand(),
		a.queryCommand(),
		a.setCommand(),
		a.deleteCommand(),
		a.aliasCommand(),
		a.mergeKeyCommand(),
		a.tagCommand(),
		a.encryptedCommand(),
	)
	return root
}

func (a *App) load() (*yamlnode.Document, error) {
	doc, _, err := document.LoadFile(a.cfg.File, a.Stdin)
	if err != nil {
		return nil, err
	}
	console.Verbose(a.log, "loaded document", "file", a.cfg.File)
	return doc, nil
}

func (a *App) processor(doc *yamlnode.Document) *processor.Processor {
	return processor.New(doc, processor.WithLogger(a.log))
}

// eyamlProcessor returns nil unless EYAML handling is enabled.
func (a *App) eyamlProcessor(doc *yamlnode.Document) *eyaml.Processor {
	if !a.cfg.EYAML.Enabled {
		return nil
	}
	t := a.Transformer
	if t == nil {
		t = a.cfg.Transformer(eyaml.WithLogger(a.log))
	}
	return eyaml.NewProcessor(doc, t, processor.WithLogger(a.log))
}

// commit writes doc back to the input file, or to stdout when the input was
// stdin or a dry run was requested. before is the rendering prior to the
// change and feeds --diff.
func (a *App) commit(doc *yamlnode.Document, before []byte, w config.Write) error {
	after, err := document.Render(doc)
	if err != nil {
		return err
	}

	if w.Diff {
		_, err := io.WriteString(a.Stdout, document.Diff(string(before), string(after)))
		return err
	}

	if w.DryRun || a.cfg.File == document.Stdin {
		_, err := a.Stdout.Write(after)
		return err
	}

	if err := document.Save(a.cfg.File, doc); err != nil {
		return err
	}
	console.Verbose(a.log, "saved document", "file", a.cfg.File)
	return nil
}

// mutate loads the document, applies change and commits the result.
func (a *App) mutate(w config.Write, change func(doc *yamlnode.Document) error) error {
	doc, err := a.load()
	if err != nil {
		return err
	}
	before, err := document.Render(doc)
	if err != nil {
		return err
	}
	if err := change(doc); err != nil {
		return err
	}
	if doc.IsNull() {
		a.log.Warn("the document is empty; nothing to write", "file", a.cfg.File)
		return nil
	}
	return a.commit(doc, before, w)
}
