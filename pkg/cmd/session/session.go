package session

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/cmd/common"
	"github.com/racedayapp/notify-manager-go/pkg/config"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/watch/session"
)

func NewSessionCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session-check",
		Short: "scans the race schedules and dispatches session alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce()
		},
	}
	common.AddJobFlags(cmd)
	cmd.Flags().StringVar(&config.JobTimeout,
		"job-timeout",
		"2m",
		"timeout budget for one invocation")
	return cmd
}

func runOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(),
		common.JobTimeout(2*time.Minute))
	defer cancel()

	runtime, err := common.InitRuntime(ctx)
	if err != nil {
		log.Error("could not initialize runtime", log.ErrorField(err))
		return err
	}
	defer runtime.Shutdown()

	watcher := session.NewWatcher(
		session.WithQuerier(runtime.Pool),
		session.WithNotifier(notify.NewClient(
			notify.WithTransport(runtime.Transport))),
		session.WithSink(runtime.Sink),
		session.WithDryRun(config.DryRun),
	)
	return watcher.Run(ctx, time.Now())
}
