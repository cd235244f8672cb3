// Command rrulecheck validates and canonicalizes DTSTART/RRULE/EXRULE schedules.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cyp0633/schedrule/schedule"
	"github.com/emersion/go-ical"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rrulecheck:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
	strict     bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rrulecheck",
		Short:         "Validate and canonicalize recurrence schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML engine configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "also require rrule-go to accept every canonical rule")

	root.AddCommand(newNormalizeCommand(opts))
	root.AddCommand(newValidateCommand(opts))
	root.AddCommand(newICalCommand(opts))

	return root
}

// newEngine builds the engine from --config and --log-level, logging to the command's stderr.
func newEngine(cmd *cobra.Command, opts *options) (*schedule.Engine, error) {
	cfg := schedule.DefaultEngineConfig
	if opts.configPath != "" {
		loaded, err := schedule.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(opts.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	cfg.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
	return schedule.NewEngineWithConfig(cfg), nil
}

// readSchedules returns args, or one schedule per non-empty stdin line when there are none.
func readSchedules(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var texts []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

var errInvalid = errors.New("one or more schedules are invalid")

func newNormalizeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [schedule...]",
		Short: "Print the canonical form of each schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd, opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			texts, err := readSchedules(cmd, args)
			if err != nil {
				return err
			}

			failed := false
			for _, text := range texts {
				canonical, err := check(engine, text, opts.strict)
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", text, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), canonical)
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schedule...]",
		Short: "Check schedules without printing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd, opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			texts, err := readSchedules(cmd, args)
			if err != nil {
				return err
			}

			results := engine.ParseAll(texts)
			failed := 0
			for i, result := range results {
				err := result.Error()
				if err == nil && opts.strict {
					err = engine.CheckCompatibility(result.MustGet())
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", texts[i], err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d valid, %d invalid\n", len(results)-failed, failed)
			if failed > 0 {
				return errInvalid
			}
			return nil
		},
	}
}

func newICalCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ical <file.ics>",
		Short: "Print the canonical schedule of every recurring component in a calendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd, opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			cal, err := ical.NewDecoder(f).Decode()
			if err != nil {
				return fmt.Errorf("failed to decode calendar: %w", err)
			}

			failed := false
			for _, comp := range cal.Children {
				if comp.Props.Get(ical.PropRecurrenceRule) == nil && comp.Props.Get(schedule.PropExceptionRule) == nil {
					continue
				}
				uid, _ := comp.Props.Text(ical.PropUID)
				set, err := engine.ParseComponent(comp)
				if err == nil && opts.strict {
					err = engine.CheckCompatibility(set)
				}
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", comp.Name, uid, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", comp.Name, uid, set.Format())
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
}

func check(engine *schedule.Engine, text string, strict bool) (string, error) {
	if !strict {
		return engine.Normalize(text)
	}
	set, err := engine.Parse(text)
	if err != nil {
		return "", err
	}
	if err := engine.CheckCompatibility(set); err != nil {
		return "", err
	}
	return engine.Normalize(text)
}
