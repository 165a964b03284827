package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"earnings-tracker/pkg/logger"

	"github.com/spf13/cobra"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import earnings from a legacy SQLite file",
	Long:  "Reads the earnings table of a legacy SQLite file and inserts new (stock, date) pairs or updates existing ones.",
	Run:   Import,
}

func Import(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	_, services := appDep.Services()
	result, err := services.ImportService.Import(ctx, importSource)
	if err != nil {
		appDep.log.Error("Import failed", logger.ErrorField(err))
		return
	}
	appDep.log.Info("Import completed",
		logger.IntField("total", result.Total),
		logger.IntField("inserted", result.Inserted),
		logger.IntField("updated", result.Updated),
		logger.IntField("skipped", result.Skipped),
	)
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "data.db", "path to the legacy SQLite file")
}
