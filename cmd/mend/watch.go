package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/events"
	"github.com/mendhq/mend/internal/monitor"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the process health monitor",
	Long: `Sample process health (heap, goroutines) on the configured interval and
record threshold alerts in the audit trail. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		agent := monitor.NewAgent(&monitor.Config{
			CheckInterval: cfg.Monitor.CheckInterval,
			MaxHeapMB:     cfg.Monitor.MaxHeapMB,
			MaxGoroutines: cfg.Monitor.MaxGoroutines,
			Logger:        logger,
		})

		agent.RegisterCallback(func(r monitor.Report) {
			if r.Healthy() {
				return
			}
			if err := eventLog.Append(events.New(events.EventMonitorAlert, "monitor", "",
				"health threshold exceeded", map[string]interface{}{
					"alerts":     r.Alerts,
					"heap_mb":    r.HeapMB,
					"goroutines": r.Goroutines,
				})); err != nil {
				logger.Warn("failed to record monitor event", "error", err)
			}
		})

		if err := agent.Start(cmd.Context()); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s monitor running (interval %v), press Ctrl-C to stop\n",
			green("✓"), cfg.Monitor.CheckInterval)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		return agent.Stop()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
