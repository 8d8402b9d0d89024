package jobs

import (
	"context"
	"log"
	"time"

	"github.com/leadforge/leadforge/pkg/campaigns"
	"github.com/leadforge/leadforge/pkg/enrichment"
	"github.com/leadforge/leadforge/pkg/scoring"
	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron       *cron.Cron
	scoring    *scoring.Service
	campaigns  *campaigns.Service
	enrichment *enrichment.Service
	logger     *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(scoringSvc *scoring.Service, campaignSvc *campaigns.Service, enrichmentSvc *enrichment.Service, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:       cron.New(),
		scoring:    scoringSvc,
		campaigns:  campaignSvc,
		enrichment: enrichmentSvc,
		logger:     logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Nightly at 2 AM: rescore sweep. The scoring rubric is deterministic,
	// but enrichment and manual edits can drift the stored scores.
	_, err := cm.cron.AddFunc("0 2 * * *", func() {
		cm.logger.Println("🕐 Running nightly rescore sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		updated, err := cm.scoring.RescoreAll(ctx, 1000)
		if err != nil {
			cm.logger.Printf("❌ Rescore sweep failed: %v", err)
			return
		}

		cm.logger.Printf("✅ Rescore sweep completed, %d leads updated", updated)
	})
	if err != nil {
		return err
	}

	// Hourly: reconcile campaign rollups after crashes mid-send.
	_, err = cm.cron.AddFunc("0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		reconciled, err := cm.campaigns.ReconcileRollups(ctx)
		if err != nil {
			cm.logger.Printf("❌ Rollup reconciliation failed: %v", err)
			return
		}

		if reconciled > 0 {
			cm.logger.Printf("✅ Reconciled rollups for %d active campaigns", reconciled)
		}
	})
	if err != nil {
		return err
	}

	// Daily at 4 AM: log pipeline statistics
	_, err = cm.cron.AddFunc("0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		stats, err := cm.enrichment.GetStats(ctx)
		if err != nil {
			cm.logger.Printf("❌ Failed to get pipeline stats: %v", err)
			return
		}

		cm.logger.Printf("📊 Pipeline statistics:")
		cm.logger.Printf("  Total leads: %d", stats.TotalLeads)
		cm.logger.Printf("  Enriched: %d (%.1f%%)", stats.EnrichedLeads, stats.EnrichmentRate)
		cm.logger.Printf("  Awaiting enrichment: %d", stats.UnenrichedLeads)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Nightly at 2 AM: rescore sweep")
	cm.logger.Println("  - Hourly: reconcile campaign rollups")
	cm.logger.Println("  - Daily at 4 AM: log pipeline statistics")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
