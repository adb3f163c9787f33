package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// formatQuoteNumber constructs the quote number string from components.
func formatQuoteNumber(jobRef string, sequence int) string {
	return fmt.Sprintf("%s-%03d", jobRef, sequence)
}

// nextQuoteSequence returns one more than the highest sequence found among
// numbers that start with prefix. Numbers that do not parse are ignored, so
// a deleted quote never causes its number to be reused by a later one.
func nextQuoteSequence(prefix string, existing []string) int {
	highest := 0
	for _, n := range existing {
		suffix, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest + 1
}

// GenerateQuoteNumber creates the next quote number for a job.
// Format: {job_number}-{sequence}
//   - job_number: the job's number (falls back to job ID if unset)
//   - sequence: 3-digit zero-padded, per job
func GenerateQuoteNumber(app core.App, jobID string) (string, error) {
	job, err := app.FindRecordById("jobs", jobID)
	if err != nil {
		return "", fmt.Errorf("job not found: %w", err)
	}

	jobRef := jobID
	if n := job.GetInt("job_number"); n > 0 {
		jobRef = strconv.Itoa(n)
	}
	prefix := jobRef + "-"

	existing, err := app.FindRecordsByFilter(
		"quotes",
		"job = {:jobId} && quote_number ~ {:prefix}",
		"",
		0,
		0,
		dbx.Params{
			"jobId":  jobID,
			"prefix": prefix + "%",
		},
	)
	if err != nil {
		return "", fmt.Errorf("list quotes for job %s: %w", jobID, err)
	}

	numbers := make([]string, len(existing))
	for i, q := range existing {
		numbers[i] = q.GetString("quote_number")
	}

	return formatQuoteNumber(jobRef, nextQuoteSequence(prefix, numbers)), nil
}
