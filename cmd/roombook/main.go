package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "roombook",
	Short: "Roombook — meeting room reservation server",
	Long:  "Roombook is a backend for booking shared meeting rooms: signed session login, conflict-checked reservations over exclusive room/time slots, attendee management, and week/month timetable views.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/roombook.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
