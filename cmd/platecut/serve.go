package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PlateCut/internal/project"
	"github.com/piwi3910/PlateCut/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		addr    string
		noStore bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := o.settings(cmd, nil)
			if err != nil {
				return err
			}
			templates, err := project.LoadTemplates(o.templatePath())
			if err != nil {
				return err
			}
			opts := server.Options{Defaults: settings, Templates: templates, Timeout: timeout}
			if !noStore {
				if opts.Store, err = project.NewResultStore(o.resultDir()); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(opts).Run(ctx, addr)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.BoolVar(&noStore, "no-store", false, "disable the saved results API")
	f.DurationVar(&timeout, "timeout", 2*time.Minute, "maximum time per calculation")
	return cmd
}
