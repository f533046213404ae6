package hygiene

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/cmd/common"
	"github.com/racedayapp/notify-manager-go/pkg/config"
	"github.com/racedayapp/notify-manager-go/pkg/watch/hygiene"
)

func NewTokenHygieneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token-hygiene",
		Short: "probes all device tokens and clears the unregistered ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce()
		},
	}
	common.AddJobFlags(cmd)
	cmd.Flags().StringVar(&config.JobTimeout,
		"job-timeout",
		"15m",
		"timeout budget for one invocation")
	return cmd
}

func runOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(),
		common.JobTimeout(15*time.Minute))
	defer cancel()

	runtime, err := common.InitRuntime(ctx)
	if err != nil {
		log.Error("could not initialize runtime", log.ErrorField(err))
		return err
	}
	defer runtime.Shutdown()

	job := hygiene.NewJob(
		hygiene.WithQuerier(runtime.Pool),
		hygiene.WithTransport(runtime.Transport),
		hygiene.WithDryRun(config.DryRun),
	)
	return job.Run(ctx)
}
