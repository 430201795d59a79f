package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/jacoelho/yamlpath/internal/eyaml"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
)

// Get configures the get command. Reads are strict: a YAML Path matching no
// nodes is an error unless a default value is supplied.
type Get struct {
	Default   string
	MustExist bool
}

func (g *Get) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&g.Default, "default", "D", "", "Value printed when the YAML Path matches no nodes")
}

// Validate resolves MustExist from the parsed flags.
func (g *Get) Validate(fs *pflag.FlagSet) error {
	g.MustExist = !fs.Changed("default")
	return nil
}

// Set configures the set command.
type Set struct {
	Value      string
	Null       bool
	Format     yamlnode.Format
	Tag        string
	MustExist  bool
	DryRun     bool
	Diff       bool
	Output     eyaml.OutputStyle
	RenameOnly bool
}

func (s *Set) BindFlags(fs *pflag.FlagSet) {
	s.Format = yamlnode.FormatDefault
	fs.StringVarP(&s.Value, "value", "a", "", "Value to set")
	fs.BoolVarP(&s.Null, "null", "N", false, "Set the value to null")
	fs.VarP(&formatValue{format: &s.Format}, "format", "F", "Value format: bare, boolean, date, default, dquote, float, folded, int, literal, squote or timestamp")
	fs.StringVarP(&s.Tag, "tag", "T", "", "Tag to apply to the new value")
	fs.BoolVarP(&s.MustExist, "mustexist", "m", false, "Require that the YAML Path matches at least one node")
	fs.BoolVar(&s.DryRun, "dry-run", false, "Print the result instead of writing the file")
	fs.BoolVar(&s.Diff, "diff", false, "Print a diff of the changes instead of writing them")
	fs.Var(&styleValue{style: &s.Output}, "eyaml-output", "EYAML output style: string or block")
	fs.BoolVar(&s.RenameOnly, "rename", false, "Rename the matched keys to the value instead of replacing their values")
}

func (s *Set) Validate(fs *pflag.FlagSet) error {
	if s.Null && fs.Changed("value") {
		return fmt.Errorf("%w: --null cannot be combined with --value", ErrConflictingMode)
	}
	if !s.Null && !fs.Changed("value") {
		return fmt.Errorf("%w: one of --value or --null is required", ErrConflictingMode)
	}
	if s.RenameOnly && (s.Null || fs.Changed("format") || s.Tag != "") {
		return fmt.Errorf("%w: --rename only takes a --value", ErrConflictingMode)
	}
	return nil
}

// Write configures commands that change the document.
type Write struct {
	DryRun bool
	Diff   bool
}

func (w *Write) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&w.DryRun, "dry-run", false, "Print the result instead of writing the file")
	fs.BoolVar(&w.Diff, "diff", false, "Print a diff of the changes instead of writing them")
}

// Alias configures the alias command.
type Alias struct {
	Write
	AnchorPath string
	Anchor     string
}

func (a *Alias) BindFlags(fs *pflag.FlagSet) {
	a.Write.BindFlags(fs)
	fs.StringVarP(&a.AnchorPath, "anchor-path", "A", "", "YAML Path of the single node to alias")
	fs.StringVarP(&a.Anchor, "anchor", "n", "", "Anchor name to use or create")
}

func (a *Alias) Validate() error {
	if a.AnchorPath == "" {
		return fmt.Errorf("%w: --anchor-path", ErrNoPath)
	}
	return nil
}

// MergeKey configures the merge-key command.
type MergeKey struct {
	Write
	SourcePath string
	Anchor     string
}

func (m *MergeKey) BindFlags(fs *pflag.FlagSet) {
	m.Write.BindFlags(fs)
	fs.StringVarP(&m.SourcePath, "source-path", "S", "", "YAML Path of the mapping to merge")
	fs.StringVarP(&m.Anchor, "anchor", "n", "", "Anchor name to use or create")
}

func (m *MergeKey) Validate() error {
	if m.SourcePath == "" {
		return fmt.Errorf("%w: --source-path", ErrNoPath)
	}
	return nil
}

// Tag configures the tag command.
type Tag struct {
	Write
	Tag string
}

func (t *Tag) BindFlags(fs *pflag.FlagSet) {
	t.Write.BindFlags(fs)
	fs.StringVarP(&t.Tag, "tag", "T", "", "Tag to apply; empty removes it")
}
