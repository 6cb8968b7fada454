package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clickrouter/router/internal/adminapi"
	"github.com/clickrouter/router/router"
	"github.com/clickrouter/router/routerconfig"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "routerd",
		Short: "A modular packet-processing router",
		Long: `routerd builds and runs an element graph described in a
textual configuration file, the same way Click's userlevel driver
does: parse, validate, configure, initialize, go live, schedule.`,
	}
	root.AddCommand(newRunCmd(), newValidateCmd(), newAdaptCmd())
	return root
}

func newLogger(verbose bool) *zap.Logger {
	var log *zap.Logger
	var err error
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		log = zap.NewNop()
	}
	return log
}

// buildRouter parses and compiles path into a fresh Router, running it
// through Validate and ConfigureAll + InstallHandlers. It stops short
// of Initialize/GoLive so callers can choose whether to actually run
// it (validate) or continue to a live router (run).
func buildRouter(path string, log *zap.Logger) (*router.Router, *router.ErrorHandler, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r := router.NewRouter(log)
	errh := router.NewErrorHandler(log)
	reg := buildRegistry()
	if err := routerconfig.Compile(r, src, path, reg, errh); err != nil {
		return r, errh, err
	}
	if err := r.Validate(errh); err != nil {
		return r, errh, err
	}
	if err := r.ConfigureAll(errh); err != nil {
		return r, errh, err
	}
	r.InstallHandlers()
	return r, errh, nil
}

func newRunCmd() *cobra.Command {
	var configPath string
	var adminAddr string
	var threads int
	var verbose bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a router configuration in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			defer log.Sync()

			r, errh, err := buildRouter(configPath, log)
			if err != nil {
				return err
			}
			if threads > 1 {
				r.SetScheduler(router.NewScheduler(threads))
			}
			if err := r.InitializeAll(errh); err != nil {
				return err
			}
			r.GoLive()
			r.Scheduler().Start(r)
			defer func() {
				r.Scheduler().Stop()
				r.Cleanup()
			}()

			var admin *adminapi.Server
			if adminAddr != "" {
				admin = adminapi.New(r, log)
				go func() {
					if err := admin.ListenAndServe(adminAddr); err != nil {
						log.Error("admin API stopped", zap.Error(err))
					}
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			log.Info("shutting down")
			if admin != nil {
				admin.Shutdown()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "router.click", "path to the router configuration file")
	cmd.Flags().StringVar(&adminAddr, "http", "", "admin API listen address (empty disables it)")
	cmd.Flags().IntVar(&threads, "threads", 1, "number of scheduler threads")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode (human-readable) logging")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var configPath string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse, compile, and configure a router without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(verbose)
			defer log.Sync()
			r, errh, err := buildRouter(configPath, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d element(s), %d warning(s)\n", r.NumElements(), errh.NWarnings())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "router.click", "path to the router configuration file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode (human-readable) logging")
	return cmd
}

func newAdaptCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Print the fully-expanded element list for a configuration",
		Long: `adapt compiles a configuration the same way run does —
expanding every compound elementclass instantiation — and prints one
"name :: class" line per resulting element, the way Caddy's "adapt"
command prints a Caddyfile's translation. Connections are not printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			src, err := os.ReadFile(configPath)
			if err != nil {
				return err
			}
			r := router.NewRouter(log)
			errh := router.NewErrorHandler(log)
			reg := buildRegistry()
			if err := routerconfig.Compile(r, src, configPath, reg, errh); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := 0; i < r.NumElements(); i++ {
				h := router.ElementHandle(i)
				fmt.Fprintf(out, "%s :: %s\n", r.ElementName(h), r.Element(h).ClassName())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "router.click", "path to the router configuration file")
	return cmd
}
