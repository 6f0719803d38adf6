package main

import (
	"fmt"

	"fitosanitario/internal/config"

	"github.com/spf13/cobra"
)

// cli state shared by the subcommands
type cli struct {
	role string
	cfg  *config.Config
	app  *app
}

// newRootCmd the caller runs close once Execute returns
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:          "fitosanitario",
		Short:        "Phytosanitary inspection records tooling",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.role, "role", "admin", "database role used for the connection handle")

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.checkCmd(),
		c.reportCmd(),
		c.alertsCmd(),
		c.inspectionsCmd(),
	)
	return root, c
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

// wire builds the app on first use
func (c *cli) wire() (*app, error) {
	if c.app != nil {
		return c.app, nil
	}
	if c.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	a, err := newApp(c.cfg, c.role)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}
