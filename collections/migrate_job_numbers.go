package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateMissingJobNumbers gives every job without a job number the next
// free number, in creation order. Quote numbers are derived from job
// numbers, so this runs before any quote is created.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateMissingJobNumbers(app *pocketbase.PocketBase) error {
	jobsCol, err := app.FindCollectionByNameOrId("jobs")
	if err != nil {
		return fmt.Errorf("migrate: could not find jobs collection: %w", err)
	}

	missing, err := app.FindRecordsByFilter(jobsCol, "job_number = 0 || job_number = null", "created", 0, 0, nil)
	if err != nil {
		return fmt.Errorf("migrate: could not query jobs without a number: %w", err)
	}
	if len(missing) == 0 {
		return nil
	}

	highest, err := app.FindRecordsByFilter(jobsCol, "job_number > 0", "-job_number", 1, 0, nil)
	if err != nil {
		return fmt.Errorf("migrate: could not query highest job number: %w", err)
	}
	next := 1
	if len(highest) > 0 {
		next = highest[0].GetInt("job_number") + 1
	}

	log.Printf("migrate: found %d job(s) without a job number -- assigning from %d", len(missing), next)

	for _, job := range missing {
		job.Set("job_number", next)
		if err := app.Save(job); err != nil {
			log.Printf("migrate: failed to number job %q (%s): %v", job.GetString("reference"), job.Id, err)
			continue
		}
		log.Printf("migrate: job %q -> %d", job.GetString("reference"), next)
		next++
	}

	log.Println("migrate: job number migration complete.")
	return nil
}
