package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/fitcoach-api/pkg/config"
)

type app struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger
	now    func() time.Time

	apiURL   string
	token    string
	email    string
	password string
	verbose  bool
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, logger: zap.NewNop(), now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fitcoach",
		Short:         "Browse FitCoach clients and workouts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL including prefix (default $FITCOACH_API_URL)")
	flags.StringVar(&a.token, "token", "", "bearer token (default $FITCOACH_API_TOKEN)")
	flags.StringVar(&a.email, "email", "", "log in with this email before fetching")
	flags.StringVar(&a.password, "password", "", "password used with --email")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newClientsCmd(a),
		newWorkoutsCmd(a),
		newBrowseCmd(a),
		newLoginCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if !cmd.Flags().Changed("api-url") {
		a.apiURL = a.cfg.Remote.BaseURL
	}
	if !cmd.Flags().Changed("token") {
		a.token = a.cfg.Remote.Token
	}
	if a.verbose {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		a.logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(a.errOut), zap.DebugLevel))
	}
	return nil
}
