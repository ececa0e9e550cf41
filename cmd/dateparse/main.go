// Command dateparse interprets date/time strings from the command line and
// prints the recognized components as JSON.
//
//	dateparse "Thu Sep 25 10:36:28 2003"
//	dateparse --dayfirst 10-09-2003
//	dateparse --fuzzy --tokens "meeting on 2024-01-15 at noon"
//	dateparse iso 2012-W05-5
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bissli/opendate/parser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	dayfirst  bool
	yearfirst bool
	fuzzy     bool
	tokens    bool
	pretty    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "dateparse [flags] <input>...",
		Short:        "Interpret a date/time string without a format",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	cmd.Flags().BoolVar(&opts.dayfirst, "dayfirst", false, "read the first value of an ambiguous date as the day")
	cmd.Flags().BoolVar(&opts.yearfirst, "yearfirst", false, "read the first value of an ambiguous date as the year")
	cmd.Flags().BoolVar(&opts.fuzzy, "fuzzy", false, "skip text that is not part of a date or time")
	cmd.Flags().BoolVar(&opts.tokens, "tokens", false, "also print the skipped fragments (requires --fuzzy)")

	cmd.AddCommand(newISOCmd(opts))

	cmd.SetErrPrefix("dateparse:")
	return cmd
}

func runParse(cmd *cobra.Command, opts *options, input string) error {
	cfg := parser.Config{
		Dayfirst:  opts.dayfirst,
		Yearfirst: opts.yearfirst,
		Fuzzy:     opts.fuzzy,
	}

	if opts.tokens {
		res, skipped, err := cfg.ParseWithTokens(input)
		if err != nil {
			return err
		}
		// A named field sidesteps Result's own MarshalJSON, which would
		// otherwise swallow the skipped list through method promotion.
		return emit(cmd, opts, struct {
			Result  parser.Result `json:"result"`
			Skipped []string      `json:"skipped,omitempty"`
		}{res, skipped})
	}

	res, err := cfg.Parse(input)
	if err != nil {
		return err
	}
	return emit(cmd, opts, res)
}

func newISOCmd(opts *options) *cobra.Command {
	var (
		sep      string
		dateOnly bool
		timeOnly bool
	)

	cmd := &cobra.Command{
		Use:          "iso [flags] <input>",
		Short:        "Interpret a strict ISO 8601 string",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dateOnly && timeOnly {
				return fmt.Errorf("--date-only and --time-only are mutually exclusive")
			}
			p, err := parser.NewISOParser(sep)
			if err != nil {
				return err
			}
			var res parser.Result
			switch {
			case dateOnly:
				res, err = p.ParseDate(args[0])
			case timeOnly:
				res, err = p.ParseTime(args[0])
			default:
				res, err = p.Parse(args[0])
			}
			if err != nil {
				return err
			}
			return emit(cmd, opts, res)
		},
	}

	cmd.Flags().StringVar(&sep, "sep", "", "required date/time separator character (default: any)")
	cmd.Flags().BoolVar(&dateOnly, "date-only", false, "accept a bare date and nothing else")
	cmd.Flags().BoolVar(&timeOnly, "time-only", false, "accept a bare time and nothing else")

	return cmd
}

func emit(cmd *cobra.Command, opts *options, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
