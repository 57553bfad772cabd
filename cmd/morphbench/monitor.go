package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/swdee/go-morphbench/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print the CPU usage and memory of a process until it exits",
	Args:  cobra.NoArgs,
	RunE:  runMonitor,
}

func init() {
	f := monitorCmd.Flags()
	f.Int("pid", 0, "Process id to monitor")
	f.Duration("dt", time.Second, "Sampling interval")
	f.String("listen", "", "Also serve the samples as Prometheus metrics on this address, eg. :9100")
	f.Bool("csv", false, "Print the samples as semicolon separated rows")
	_ = monitorCmd.MarkFlagRequired("pid")
}

func runMonitor(cmd *cobra.Command, args []string) error {

	f := cmd.Flags()
	pid, _ := f.GetInt("pid")
	dt, _ := f.GetDuration("dt")
	listen, _ := f.GetString("listen")
	csvOut, _ := f.GetBool("csv")

	src, err := monitor.NewProcFS()

	if err != nil {
		return err
	}

	m, err := monitor.New(src, dt, logger)

	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m.WithMetrics(monitor.NewMetrics(reg, pid))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		if csvOut {
			fmt.Println(monitor.CSVHeader)
		} else {
			fmt.Println("  time :     CPU   -        VMS        RSS")
		}

		return m.Run(ctx, pid, func(s monitor.Sample) {
			if csvOut {
				fmt.Println(s.CSV())
			} else {
				fmt.Println(s.String())
			}
		})
	})

	if listen != "" {
		srv := &http.Server{
			Addr:              listen,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("serving metrics", "addr", listen)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error serving metrics: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()

			return srv.Shutdown(shutdown)
		})
	}

	return g.Wait()
}
