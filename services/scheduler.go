// services/scheduler.go
package services

import (
	"log"
	"time"

	"quest-progression-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartQuestScheduler runs the availability housekeeping: publish quests whose
// scheduled time has arrived, archive quests whose window has closed.
func (s *QuestService) StartQuestScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: publish scheduled quests
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			var quests []models.Quest
			err := s.DB.Where("status = ? AND publish_at IS NOT NULL AND publish_at <= ?",
				models.QuestStatusDraft, now).
				Find(&quests).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, q := range quests {
				q.Status = models.QuestStatusPublished
				q.PublishAt = nil
				if err := s.DB.Save(&q).Error; err != nil {
					log.Printf("[Scheduler] Failed to publish quest %s: %v", q.ID, err)
				} else {
					log.Printf("✅ Auto-published quest: %s", q.Title)
				}
			}

			// Close out quests whose availability window has passed
			res := s.DB.Model(&models.Quest{}).
				Where("status = ? AND available_until IS NOT NULL AND available_until < ?",
					models.QuestStatusPublished, now).
				Update("status", models.QuestStatusArchived)
			if res.Error != nil {
				log.Printf("[Scheduler] Failed to archive expired quests: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("📦 Archived %d expired quest(s)", res.RowsAffected)
			}
		}),
	)
}
