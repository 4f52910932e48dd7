package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thushan/llamadeck/internal/adapter/props"
	"github.com/thushan/llamadeck/internal/devproxy"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/store"
	"github.com/thushan/llamadeck/internal/util"
)

// RetryBase is the first status check delay after the backend goes away
const RetryBase = time.Second

func newDevCmd(a *app) *cobra.Command {
	var (
		host      string
		port      int
		target    string
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Serve the web UI and proxy API calls to a llama.cpp server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev := a.cfg.Dev
			if cmd.Flags().Changed("host") {
				dev.Host = host
			}
			if cmd.Flags().Changed("port") {
				dev.Port = port
			}
			if cmd.Flags().Changed("target") {
				dev.ProxyTarget = target
			}
			if cmd.Flags().Changed("static-dir") {
				dev.StaticDir = staticDir
			}

			server, err := devproxy.New(devproxy.Options{
				Addr:            dev.GetAddress(),
				Target:          dev.ProxyTarget,
				StaticDir:       dev.StaticDir,
				Headers:         dev.Headers,
				ShutdownTimeout: dev.ShutdownTimeout,
			}, a.log)
			if err != nil {
				return err
			}

			propsClient := props.NewClient(server.Target().String(), a.cfg.API.Key, a.cfg.API.Timeout, a.log)
			serverStore := store.NewServerStore(propsClient, a.log)
			defer serverStore.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return server.Start(ctx)
			})
			g.Go(func() error {
				monitorBackend(ctx, serverStore, dev.PropsInterval, a.log)
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from dev.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from dev.port)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "llama.cpp server to proxy to (default from dev.proxy_target)")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "serve files from this directory instead of the embedded web UI")
	return cmd
}

// monitorBackend refreshes the props every interval and logs when the backend
// comes and goes. While the backend is down it is polled from RetryBase back
// up to interval.
func monitorBackend(ctx context.Context, st *store.ServerStore, interval time.Duration, log *logger.StyledLogger) {
	events, unsubscribe := st.Subscribe(ctx)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logBackendTransitions(events, log)
	}()

	for failures := 0; ctx.Err() == nil; {
		if err := st.Fetch(ctx); err != nil {
			failures++
		} else {
			failures = 0
		}
		if interval <= 0 {
			<-ctx.Done()
			break
		}

		timer := time.NewTimer(util.PollDelay(failures, RetryBase, interval))
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	unsubscribe()
	<-done
}

func logBackendTransitions(events <-chan store.Event, log *logger.StyledLogger) {
	lastErr := ""
	online := false
	for ev := range events {
		switch ev.Kind {
		case store.EventLoaded:
			if !online {
				p := ev.State.Props
				log.Info("Backend online", "model", p.ModelAlias, "slots", p.TotalSlots)
			}
			online = true
			lastErr = ""
		case store.EventError:
			if online || lastErr != ev.State.Error {
				log.Warn(fmt.Sprintf("Backend unavailable: %s", ev.State.Error))
			}
			online = false
			lastErr = ev.State.Error
		}
	}
}
