// Command dazel runs Bazel inside a managed container. Every argument is
// forwarded verbatim to the in-container Bazel binary; the container is
// (re)provisioned first when the marker file is missing or out of date.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/dazel/internal/appconfig"
	"pkt.systems/dazel/internal/dockyard"
	"pkt.systems/dazel/internal/launcher"
	"pkt.systems/dazel/internal/version"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	exitCode := 0
	root := newRootCmd(&exitCode)
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("dazel failed")
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

// newRootCmd builds the passthrough root command. Flag parsing is disabled
// so Bazel flags (--config, --jobs, ...) reach the container untouched.
func newRootCmd(exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:                "dazel [bazel arguments...]",
		Short:              "Run Bazel commands inside a managed build container",
		SilenceErrors:      true,
		SilenceUsage:       true,
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pslog.Ctx(ctx).Debug("dazel starting", "version", version.Current())

			cfg, err := appconfig.Load("")
			if err != nil {
				return err
			}

			l, err := launcher.New(cfg, dockyard.NewCLI(cfg.DockerBinary))
			if err != nil {
				return err
			}

			code, err := l.Run(ctx, args)
			*exitCode = code
			return err
		},
	}
}
