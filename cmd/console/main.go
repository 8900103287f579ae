// Package main is the interactive console for pushing depth chart commands
// onto a sport queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/depthchart-hub/depth-chart-hub/config"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/position"
	"github.com/depthchart-hub/depth-chart-hub/internal/infrastructure/messaging"
	"github.com/depthchart-hub/depth-chart-hub/internal/interface/console"
	"github.com/depthchart-hub/depth-chart-hub/internal/sport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(connectRedis).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type target struct {
	sport string
	queue string
}

func (t *target) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.sport, "sport", "s", "", "sport id (default $DEPTHCHART_CONSOLE_SPORT)")
	cmd.Flags().StringVarP(&t.queue, "queue", "q", "", "queue name override")
}

// endpoint is a connected queue and what the session shows about it.
type endpoint struct {
	publisher messaging.Publisher
	queue     string
	taxonomy  *position.Taxonomy
	close     func() error
}

// connectFunc opens the queue a command publishes to.
type connectFunc func(ctx context.Context, t target) (*endpoint, error)

// connectRedis loads config, works out the queue name and connects.
func connectRedis(ctx context.Context, t target) (*endpoint, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	id := t.sport
	if id == "" {
		id = cfg.Sports.ConsoleSport
	}
	taxonomy, ok := position.ForSport(id)
	if !ok && t.queue == "" {
		return nil, fmt.Errorf("unknown sport %q", id)
	}

	queueName := t.queue
	if queueName == "" {
		queueName = sport.QueueName(cfg.Sports.QueuePrefix, taxonomy.Sport())
	}

	rc := messaging.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.PoolSize = 2
	rc.MinIdleConns = 0
	rc.DialTimeout = cfg.Redis.DialTimeout

	q, err := messaging.NewRedisQueue(ctx, rc)
	if err != nil {
		return nil, err
	}
	return &endpoint{publisher: q, queue: queueName, taxonomy: taxonomy, close: q.Close}, nil
}

func newRootCmd(connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Send depth chart commands to a sport queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCmd(connect), newPushCmd(connect))
	return root
}

func newSendCmd(connect connectFunc) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Interactively send JSON messages, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ep, err := connect(ctx, t)
			if err != nil {
				return err
			}
			defer ep.close()

			return console.NewSession(ep.publisher, ep.queue, ep.taxonomy, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}
	t.bind(cmd)
	return cmd
}

// newPushCmd sends its arguments in order and exits non-zero at the first
// one that fails.
func newPushCmd(connect connectFunc) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "push <json>...",
		Short: "Send one or more JSON messages and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ep, err := connect(ctx, t)
			if err != nil {
				return err
			}
			defer ep.close()

			return console.NewSession(ep.publisher, ep.queue, ep.taxonomy, nil, cmd.OutOrStdout()).SendAll(ctx, args)
		},
	}
	t.bind(cmd)
	return cmd
}
