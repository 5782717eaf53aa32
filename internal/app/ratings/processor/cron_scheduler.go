package processor

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"ratehub/internal/app/ratings/service"
)

// CronScheduler периодически обновляет денормализованные рейтинги магазинов
type CronScheduler struct {
	cron        *cron.Cron
	snapshotSvc service.SnapshotServiceInterface
}

func NewCronScheduler(snapshotSvc service.SnapshotServiceInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &CronScheduler{
		cron:        c,
		snapshotSvc: snapshotSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	log.Printf("Starting cron scheduler with schedule: %s", schedule)

	_, err := s.cron.AddFunc(schedule, func() {
		log.Println("Cron job triggered: refreshing store rating snapshots")

		if err := s.snapshotSvc.RefreshStoreSnapshots(ctx); err != nil {
			log.Printf("ERROR: Failed to refresh store snapshots: %v", err)
		} else {
			log.Println("Cron job completed: store snapshots refreshed successfully")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started")

	// Первый пересчет сразу на старте, чтобы не ждать расписания
	log.Println("Performing initial store snapshot refresh...")
	if err := s.snapshotSvc.RefreshStoreSnapshots(ctx); err != nil {
		log.Printf("WARNING: Failed initial store snapshot refresh: %v", err)
	} else {
		log.Println("Initial store snapshot refresh completed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
