package standings

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/cmd/common"
	"github.com/racedayapp/notify-manager-go/pkg/config"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/watch/standings"
)

func NewStandingsCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standings-check",
		Short: "diffs the championship standings and notifies about favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce()
		},
	}
	common.AddJobFlags(cmd)
	cmd.Flags().StringVar(&config.JobTimeout,
		"job-timeout",
		"5m",
		"timeout budget for one invocation")
	return cmd
}

func runOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(),
		common.JobTimeout(5*time.Minute))
	defer cancel()

	runtime, err := common.InitRuntime(ctx)
	if err != nil {
		log.Error("could not initialize runtime", log.ErrorField(err))
		return err
	}
	defer runtime.Shutdown()

	watcher := standings.NewWatcher(
		standings.WithQuerier(runtime.Pool),
		standings.WithNotifier(notify.NewClient(
			notify.WithTransport(runtime.Transport))),
		standings.WithSink(runtime.Sink),
		standings.WithDryRun(config.DryRun),
	)
	return watcher.Run(ctx, time.Now())
}
