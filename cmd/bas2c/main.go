// Command bas2c translates an X-BASIC source file into C source linking
// against the X-BASIC runtime library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xbasicc/driver"
)

const commentTabsUnset = -2

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug       bool
		undefErr    bool
		noBInit     bool
		verbose     bool
		bcCompat    bool
		cp932Out    bool
		commentTabs int
		output      string
		defsPaths   []string
	)

	cmd := &cobra.Command{
		Use:           "bas2c <input.bas> [output.c]",
		Short:         "Translate X-BASIC source into C",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := driver.LoadConfig(".bas2c.toml")
			if err != nil {
				return fmt.Errorf("loading .bas2c.toml: %w", err)
			}

			input := args[0]
			if output == "" && len(args) == 2 {
				output = args[1]
			}
			if output == "" {
				output = driver.DefaultOutputName(input)
			}

			opts := driver.Options{
				InputName:  input,
				OutputName: output,
				Debug:      debug,
				UndefErr:   undefErr || cfg.UndefErr,
				NoBInit:    noBInit || cfg.NoBInit,
				Verbose:    verbose,
				BCCompat:   bcCompat || cfg.BCCompat,
				CP932Out:   cp932Out,
				DefsPaths:  resolveDefsPaths(cfg, defsPaths),
			}

			switch commentTabs {
			case -1:
				opts.CommentTabs = -1
			case commentTabsUnset:
				opts.CommentTabs = cfg.CommentTabs
			default:
				opts.CommentTabs = commentTabs
			}

			d, err := driver.New(debug)
			if err != nil {
				return err
			}
			defer d.Log.Sync()

			status, err := d.Run(opts)
			if err != nil {
				return err
			}
			if status != 0 {
				return fmt.Errorf("translation failed")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&debug, "debug", "D", false, "debug: debug-level logging and a dump of the loaded signature groups (pass-2 errors do not stop translation)")
	flags.BoolVarP(&undefErr, "undef-err", "u", false, "treat an undefined function call as an error in pass 2")
	flags.BoolVarP(&noBInit, "no-binit", "n", false, "omit b_init()/b_exit(); map END to exit")
	flags.BoolVarP(&verbose, "verbose", "v", false, "echo each BASIC line during pass 2")
	flags.BoolVarP(&bcCompat, "bc-compat", "b", false, "BC.X-compatible code generation")
	flags.BoolVarP(&cp932Out, "cp932", "s", false, "write output as CP932")
	flags.IntVarP(&commentTabs, "comment", "c", -1, "insert each BASIC line as a C comment, indented by N tabs")
	flags.Lookup("comment").NoOptDefVal = fmt.Sprint(commentTabsUnset)
	flags.StringVarP(&output, "output", "o", "", "output file; - means stdout")
	flags.StringArrayVar(&defsPaths, "defs", nil, "external-function signature file to load (repeatable)")

	return cmd
}

// resolveDefsPaths combines the project config's signature files with any
// --defs flags, CLI-given paths appended after the config's own so a
// project's base bas2c.def always loads first.
func resolveDefsPaths(cfg driver.Config, cliDefs []string) []string {
	if len(cliDefs) == 0 && len(cfg.ExtraDefs) == 0 && cfg.DefsFile == "bas2c.def" {
		return nil
	}
	var paths []string
	if cfg.DefsFile != "" {
		paths = append(paths, cfg.DefsFile)
	}
	paths = append(paths, cfg.ExtraDefs...)
	paths = append(paths, cliDefs...)
	return paths
}
