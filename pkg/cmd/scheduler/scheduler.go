// Package scheduler runs all jobs in-process on cron schedules. The single
// binary replaces three externally scheduled invocations; useful for
// deployments without a cron-capable platform.
package scheduler

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/racedayapp/notify-manager-go/log"
	"github.com/racedayapp/notify-manager-go/pkg/cmd/common"
	"github.com/racedayapp/notify-manager-go/pkg/config"
	"github.com/racedayapp/notify-manager-go/pkg/notify"
	"github.com/racedayapp/notify-manager-go/pkg/watch/hygiene"
	"github.com/racedayapp/notify-manager-go/pkg/watch/session"
	"github.com/racedayapp/notify-manager-go/pkg/watch/standings"
)

func NewSchedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "runs all watcher jobs on cron schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler()
		},
	}
	common.AddJobFlags(cmd)
	cmd.Flags().StringVar(&config.SessionCron,
		"session-cron",
		"*/5 * * * *",
		"cron schedule for the session check")
	cmd.Flags().StringVar(&config.StandingsCron,
		"standings-cron",
		"0 */2 * * *",
		"cron schedule for the standings check")
	cmd.Flags().StringVar(&config.HygieneCron,
		"hygiene-cron",
		"0 4 * * 1",
		"cron schedule for the token hygiene job")
	cmd.Flags().StringVar(&config.JobTimeout,
		"job-timeout",
		"15m",
		"timeout budget for a single job run")
	return cmd
}

//nolint:funlen // by design
func runScheduler() error {
	runtime, err := common.InitRuntime(context.Background())
	if err != nil {
		log.Error("could not initialize runtime", log.ErrorField(err))
		return err
	}
	defer runtime.Shutdown()

	notifier := notify.NewClient(notify.WithTransport(runtime.Transport))
	sessionWatcher := session.NewWatcher(
		session.WithQuerier(runtime.Pool),
		session.WithNotifier(notifier),
		session.WithSink(runtime.Sink),
		session.WithDryRun(config.DryRun),
	)
	standingsWatcher := standings.NewWatcher(
		standings.WithQuerier(runtime.Pool),
		standings.WithNotifier(notifier),
		standings.WithSink(runtime.Sink),
		standings.WithDryRun(config.DryRun),
	)
	hygieneJob := hygiene.NewJob(
		hygiene.WithQuerier(runtime.Pool),
		hygiene.WithTransport(runtime.Transport),
		hygiene.WithDryRun(config.DryRun),
	)

	budget := common.JobTimeout(15 * time.Minute)
	withBudget := func(name string, job func(ctx context.Context) error) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), budget)
			defer cancel()
			if err := job(ctx); err != nil {
				log.Error("job run failed",
					log.String("job", name),
					log.ErrorField(err))
			}
		}
	}

	// skip a tick instead of piling up when a run overstays its schedule
	c := cron.New(cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	type entry struct {
		name string
		spec string
		job  func(ctx context.Context) error
	}
	entries := []entry{
		{"session-check", config.SessionCron,
			func(ctx context.Context) error {
				return sessionWatcher.Run(ctx, time.Now())
			}},
		{"standings-check", config.StandingsCron,
			func(ctx context.Context) error {
				return standingsWatcher.Run(ctx, time.Now())
			}},
		{"token-hygiene", config.HygieneCron, hygieneJob.Run},
	}
	for _, e := range entries {
		if _, err := c.AddFunc(e.spec, withBudget(e.name, e.job)); err != nil {
			log.Error("invalid cron schedule",
				log.String("job", e.name),
				log.String("spec", e.spec),
				log.ErrorField(err))
			return err
		}
		log.Info("job scheduled",
			log.String("job", e.name),
			log.String("spec", e.spec))
	}

	c.Start()
	log.Info("Scheduler started")
	common.SetupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("Scheduler terminated")
	return nil
}
