package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jacoelho/yamlpath/internal/config"
	"github.com/jacoelho/yamlpath/internal/console"
	"github.com/jacoelho/yamlpath/internal/jsonquery"
	"github.com/jacoelho/yamlpath/internal/processor"
	"github.com/jacoelho/yamlpath/internal/yamlnode"
)

func (a *App) getCommand() *cobra.Command {
	var opts config.Get
	cmd := &cobra.Command{
		Use:   "get <yaml-path>",
		Short: "Print the nodes matching a YAML Path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(cmd.Flags()); err != nil {
				return err
			}
			path, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}
			doc, err := a.load()
			if err != nil {
				return err
			}

			get := processor.GetOptions{MustExist: opts.MustExist}
			if cmd.Flags().Changed("default") {
				get.Default, err = yamlnode.NewNode(nil, opts.Default, yamlnode.FormatDefault, "")
				if err != nil {
					return err
				}
			}

			if ep := a.eyamlProcessor(doc); ep != nil {
				for v, err := range ep.GetDecrypted(cmd.Context(), path, get) {
					if err != nil {
						return err
					}
					if err := writeLine(a.Stdout, v); err != nil {
						return err
					}
				}
				return nil
			}

			for c, err := range a.processor(doc).Get(path, get) {
				if err != nil {
					return err
				}
				if err := writeLine(a.Stdout, c.Node.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) queryCommand() *cobra.Command {
	var mustExist bool
	cmd := &cobra.Command{
		Use:   "query <jsonpath>",
		Short: "Print the values matching an RFC 9535 JSONPath query",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := a.load()
			if err != nil {
				return err
			}
			nodes, err := jsonquery.Select(doc, args[0], mustExist)
			if err != nil {
				return err
			}
			for _, n := range nodes {
				if err := writeLine(a.Stdout, n.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&mustExist, "mustexist", "m", false, "Require that the query matches at least one node")
	return cmd
}

func (a *App) setCommand() *cobra.Command {
	var opts config.Set
	cmd := &cobra.Command{
		Use:   "set <yaml-path>",
		Short: "Change the value of every node matching a YAML Path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(cmd.Flags()); err != nil {
				return err
			}
			path, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}

			value := opts.Value
			if opts.Null {
				value = "null"
			}

			return a.mutate(config.Write{DryRun: opts.DryRun, Diff: opts.Diff}, func(doc *yamlnode.Document) error {
				if opts.RenameOnly {
					return a.processor(doc).Rename(path, value)
				}
				if ep := a.eyamlProcessor(doc); ep != nil {
					return ep.SetEncrypted(cmd.Context(), path, value, opts.Output, opts.MustExist)
				}
				return a.processor(doc).Set(path, value, processor.SetOptions{
					MustExist: opts.MustExist,
					Format:    opts.Format,
					Tag:       opts.Tag,
				})
			})
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) deleteCommand() *cobra.Command {
	var opts config.Write
	cmd := &cobra.Command{
		Use:   "delete <yaml-path>",
		Short: "Remove every node matching a YAML Path",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}
			return a.mutate(opts, func(doc *yamlnode.Document) error {
				removed, err := a.processor(doc).Delete(path)
				if err != nil {
					return err
				}
				console.Verbose(a.log, "deleted nodes", "count", len(removed))
				return nil
			})
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) aliasCommand() *cobra.Command {
	var opts config.Alias
	cmd := &cobra.Command{
		Use:   "alias <yaml-path>",
		Short: "Replace the matched nodes with aliases of an anchored node",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			target, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}
			anchor, err := a.cfg.ParsePath(opts.AnchorPath)
			if err != nil {
				return err
			}
			return a.mutate(opts.Write, func(doc *yamlnode.Document) error {
				return a.processor(doc).Alias(target, anchor, opts.Anchor)
			})
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) mergeKeyCommand() *cobra.Command {
	var opts config.MergeKey
	cmd := &cobra.Command{
		Use:   "merge-key <yaml-path>",
		Short: "Add a YAML merge key referencing an anchored mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			target, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}
			source, err := a.cfg.ParsePath(opts.SourcePath)
			if err != nil {
				return err
			}
			return a.mutate(opts.Write, func(doc *yamlnode.Document) error {
				return a.processor(doc).MergeKey(target, source, opts.Anchor)
			})
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) tagCommand() *cobra.Command {
	var opts config.Tag
	cmd := &cobra.Command{
		Use:   "tag <yaml-path>",
		Short: "Apply a YAML tag to every node matching a YAML Path",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := a.cfg.ParsePath(args[0])
			if err != nil {
				return err
			}
			return a.mutate(opts.Write, func(doc *yamlnode.Document) error {
				return a.processor(doc).Tag(path, opts.Tag)
			})
		},
	}
	opts.BindFlags(cmd.Flags())
	return cmd
}

func (a *App) encryptedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypted",
		Short: "Print the YAML Path of every EYAML encrypted value",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doc, err := a.load()
			if err != nil {
				return err
			}
			a.cfg.EYAML.Enabled = true
			for path, err := range a.eyamlProcessor(doc).EncryptedPaths() {
				if err != nil {
					return err
				}
				if err := writeLine(a.Stdout, path.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
