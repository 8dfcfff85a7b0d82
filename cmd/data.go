package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/client"
	"github.com/difylang/dbagent/internal/config"
	"github.com/difylang/dbagent/internal/models"
	"github.com/difylang/dbagent/ui/components"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the backend table schemas",
	Run: func(cmd *cobra.Command, args []string) {
		dataClient := newDataClient()

		schemas, err := dataClient.GetSchema(context.Background())
		if err != nil {
			log.Fatalf("Failed to fetch schema: %v", err)
		}

		for _, table := range schemas {
			fmt.Printf("%s\n", table.Name)
			for _, col := range table.Columns {
				nullable := "NOT NULL"
				if col.Nullable {
					nullable = "NULL"
				}
				key := ""
				if col.Key != "" {
					key = "  [" + col.Key + "]"
				}
				fmt.Printf("  %-24s %-20s %s%s\n", col.Name, col.Type, nullable, key)
			}
			fmt.Println()
		}
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run a read-only SQL query and print the result grid",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dataClient := newDataClient()

		rows, err := dataClient.ExecuteQuery(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		if len(rows) == 0 {
			fmt.Println("(no rows)")
			return
		}

		// Key order is lost in the decoded maps, so sort for stable output.
		columns := make([]string, 0, len(rows[0]))
		for col := range rows[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)

		fmt.Println(components.RenderDataset(&models.TabularDataset{
			Columns: columns,
			Rows:    rows,
			Total:   len(rows),
		}))
	},
}

func newDataClient() *client.DataClient {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return client.NewDataClient(cfg.GetDataURL(), cfg.GetTimeout(), zap.NewNop())
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queryCmd)
}
