package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendhq/mend/internal/events"
)

var (
	eventsType    string
	eventsSubject string
	eventsLimit   int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := eventLog.Query(events.Filter{
			Type:    events.EventType(eventsType),
			Subject: eventsSubject,
			Limit:   eventsLimit,
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Printf("%s\n", gray("No events"))
			return nil
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for _, ev := range entries {
			fmt.Printf("%s %s %s %s\n",
				gray(ev.Timestamp.Format("2006-01-02 15:04:05")),
				yellow(string(ev.Type)),
				ev.Subject,
				ev.Message)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type")
	eventsCmd.Flags().StringVar(&eventsSubject, "subject", "", "Filter by subject id")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Maximum entries to show")
	rootCmd.AddCommand(eventsCmd)
}
