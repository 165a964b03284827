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

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill missing prior price snapshots from Yahoo Finance",
	Run:   Enrich,
}

func Enrich(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	_, services := appDep.Services()
	result, err := services.EnrichmentService.Enrich(ctx)
	if err != nil {
		appDep.log.Error("Enrichment failed", logger.ErrorField(err))
		return
	}
	appDep.log.Info("Enrichment completed",
		logger.IntField("stocks", result.Stocks),
		logger.IntField("records", result.Records),
		logger.IntField("updated", result.Updated),
		logger.Field("failed_stocks", result.FailedStocks),
	)
}
