package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/venuebook/internal/profile"
	"github.com/hrygo/venuebook/server"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "venuebook",
		Short:         "Book school venues from Chinese natural-language requests",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.String("mode", "dev", `mode of the instance, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver: sqlite, postgres or memory")
	flags.String("dsn", "", "database source name")
	flags.String("timezone", "", "civil timezone (default Asia/Hong_Kong)")
	flags.Int("max-occurrences", 0, "occurrences generated for a recurring request (max 12)")
	flags.String("lock", "", "venue lock backend: local or redis")
	flags.Bool("ai", false, "enable external suggestions (needs VENUEBOOK_AI_API_KEY)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")

	for _, name := range []string{"mode", "data", "driver", "dsn", "timezone", "max-occurrences", "lock", "ai", "log-level"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("venuebook")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	app := &app{v: v}
	root.AddCommand(
		newVenuesCmd(),
		app.newParseCmd(),
		app.newBookCmd(),
		app.newListCmd(),
		app.newScheduleCmd(),
		app.newReportCmd(),
		app.newDashboardCmd(),
		app.newUpdateCmd(),
		app.newCancelCmd(),
		app.newDeleteCmd(),
		app.newHealthCmd(),
	)
	return root
}

// app builds a Server per command from the layered configuration.
type app struct {
	v *viper.Viper
}

func (a *app) profile() (*profile.Profile, error) {
	p := &profile.Profile{}
	p.FromEnv()

	p.Mode = a.v.GetString("mode")
	p.Data = a.v.GetString("data")
	p.Driver = a.v.GetString("driver")
	p.DSN = a.v.GetString("dsn")
	p.Version = version
	if tz := a.v.GetString("timezone"); tz != "" {
		p.Timezone = tz
	}
	if n := a.v.GetInt("max-occurrences"); n > 0 {
		p.MaxOccurrences = n
	}
	if backend := a.v.GetString("lock"); backend != "" {
		p.LockBackend = backend
	}
	if a.v.GetBool("ai") {
		p.AIEnabled = true
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *app) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run builds a server, runs fn and closes the server.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, s *server.Server) error) error {
	p, err := a.profile()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := server.NewServer(ctx, p, a.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(ctx, s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
