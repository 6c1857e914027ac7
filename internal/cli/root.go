// Package cli implements the moodmuse CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmuse/internal/app"
	"github.com/justestif/moodmuse/internal/config"
	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/router"
	"github.com/justestif/moodmuse/internal/session"
)

var errNotSignedIn = errors.New("not signed in; run `moodmuse login` first")

// options holds the persistent flags and the loaded configuration.
type options struct {
	configPath string
	baseURL    string
	logLevel   string
	format     string

	cfg *config.Config
}

// NewRootCmd builds the moodmuse command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "moodmuse",
		Short:         "Mood-based movie, series and song recommendations",
		Long:          "MoodMuse recommends movies, series and songs for how you feel, and keeps a short history of what you searched.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Config file (default: $MOODMUSE_CONFIG, ./moodmuse.yaml or ~/.config/moodmuse/config.yaml)")
	root.PersistentFlags().StringVar(&o.baseURL, "base-url", "", "Backend URL (overrides gateway.base_url)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (overrides log.level)")
	root.PersistentFlags().StringVarP(&o.format, "format", "f", "text", "Output format: text or json")

	root.AddCommand(
		newLoginCmd(o),
		newRegisterCmd(o),
		newLogoutCmd(o),
		newWhoamiCmd(o),
		newRecommendCmd(o),
		newActivityCmd(o),
		newMoodsCmd(o),
		newServeDevCmd(o),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *options) load() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.baseURL != "" {
		cfg.Gateway.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	o.cfg = cfg
	return nil
}

func (o *options) sessionStore() (*session.Store, error) {
	if o.cfg.Session.CachePath != "" {
		return session.NewStore(o.cfg.Session.CachePath), nil
	}
	return session.DefaultStore()
}

func (o *options) gateway() *gateway.Client {
	return gateway.New(gateway.Config{
		BaseURL: o.cfg.Gateway.BaseURL,
		Timeout: o.cfg.Gateway.Timeout,
	})
}

// withApp runs an App backed by the configured gateway and saved session for
// the duration of fn.
func (o *options) withApp(ctx context.Context, extra []app.Option, fn func(ctx context.Context, a *app.App) error) error {
	st, err := o.sessionStore()
	if err != nil {
		return err
	}

	opts := []app.Option{
		app.WithTimeout(o.cfg.Gateway.Timeout),
		app.WithPageSize(o.cfg.Feed.PageSize),
		app.WithWindow(o.cfg.Activity.Window),
		app.WithSessionStore(st),
	}
	a := app.New(o.gateway(), append(opts, extra...)...)

	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	err = fn(ctx, a)
	cancel()
	if runErr := <-errCh; err == nil {
		err = runErr
	}
	return err
}

// settle waits for the app to go idle. Error notifications become the
// returned error; others are printed to stderr.
func settle(ctx context.Context, cmd *cobra.Command, a *app.App) (app.State, error) {
	st, err := a.Settle(ctx)
	if err != nil {
		return st, err
	}

	var errs []error
	for _, n := range st.Notifications {
		if n.Level == app.Error {
			errs = append(errs, errors.New(n.Message))
			continue
		}
		fmt.Fprintln(cmd.ErrOrStderr(), n.Message)
	}
	return st, errors.Join(errs...)
}

// requireSignedIn waits for session restore and fails on the Auth view.
func requireSignedIn(ctx context.Context, cmd *cobra.Command, a *app.App) (app.State, error) {
	st, err := settle(ctx, cmd, a)
	if err != nil {
		return st, err
	}
	if st.View == router.Auth {
		return st, errNotSignedIn
	}
	return st, nil
}
