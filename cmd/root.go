package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/difylang/dbagent/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "dbagent",
	Short: "Terminal client for the natural-language database agent",
	Long: `dbagent is a terminal chat client for a natural-language database-operations
agent: describe what you want in plain language, review tabular results inline,
and confirm mutating operations before they run.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run the chat application
		application, err := app.NewApplication()
		if err != nil {
			log.Fatalf("Failed to create application: %v", err)
		}
		defer application.Stop()

		if err := application.Start(); err != nil {
			log.Fatalf("Application error: %v", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
