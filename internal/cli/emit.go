package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ustudio/datadog-logger/internal/app"
	logx "github.com/ustudio/datadog-logger/pkg/logx"
)

var (
	emitLevel  string
	emitLogger string
	emitStack  bool

	pipeLevel  string
	pipeLogger string
)

const stopTimeout = 5 * time.Second

func parseLevelFlag(name, raw string) (logx.Level, error) {
	lvl, ok := logx.LookupLevel(raw)
	if !ok {
		return lvl, fmt.Errorf("--%s: unknown level %q", name, raw)
	}
	return lvl, nil
}

func stopApp(a *app.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.Stop(ctx)
}

var emitCmd = &cobra.Command{
	Use:   "emit MESSAGE",
	Short: "Write one log record through the configured handler",
	Long: `Write a single record at --level on --logger, then exit.

Use it to check credentials and routing: an error record on a covered
logger becomes one Datadog event.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := parseLevelFlag("level", emitLevel)
		if err != nil {
			return err
		}
		a, err := app.New(configPath, AppOptions...)
		if err != nil {
			return err
		}

		var fields []logx.Field
		if emitStack {
			fields = append(fields, logx.Stack(logx.CallStack()))
		}
		a.Logs().Named(emitLogger).Log(lvl, strings.Join(args, " "), fields...)
		return stopApp(a)
	},
}

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Log each stdin line until EOF, reloading config on change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := parseLevelFlag("level", pipeLevel)
		if err != nil {
			return err
		}
		a, err := app.New(configPath, AppOptions...)
		if err != nil {
			return err
		}
		if err := a.Start(cmd.Context()); err != nil {
			_ = stopApp(a)
			return err
		}

		log := a.Logs().Named(pipeLogger)
		lines := make(chan string)
		scanErr := make(chan error, 1)
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				lines <- sc.Text()
			}
			scanErr <- sc.Err()
		}()

		for {
			select {
			case <-a.Done():
				return joinStop(a.Err(), stopApp(a))
			case line, ok := <-lines:
				if !ok {
					return joinStop(<-scanErr, stopApp(a))
				}
				if line = strings.TrimSpace(line); line != "" {
					log.Log(lvl, line)
				}
			}
		}
	},
}

func joinStop(runErr, stopErr error) error {
	if runErr != nil {
		return runErr
	}
	return stopErr
}

func init() {
	emitCmd.Flags().StringVarP(&emitLevel, "level", "l", "error", "record level")
	emitCmd.Flags().StringVar(&emitLogger, "logger", "", "dotted logger name (empty is the root logger)")
	emitCmd.Flags().BoolVar(&emitStack, "stack", false, "attach the current call stack")

	pipeCmd.Flags().StringVarP(&pipeLevel, "level", "l", "error", "record level")
	pipeCmd.Flags().StringVar(&pipeLogger, "logger", "", "dotted logger name (empty is the root logger)")

	rootCmd.AddCommand(emitCmd, pipeCmd)
}
