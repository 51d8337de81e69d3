package schedulerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// JobStatus is the recorded outcome of one job execution.
type JobStatus string

const (
	JobStatusSuccess JobStatus = "success"
	JobStatusFailed  JobStatus = "failed"
	JobStatusSkipped JobStatus = "skipped"
)

// JobExecution is the ledger row for one named scheduled job. It is created
// on the first execution and updated in place on every subsequent one.
type JobExecution struct {
	bun.BaseModel `bun:"table:job_executions,alias:je"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,notnull,unique"`
	LastExecution  time.Time `bun:"last_execution,notnull"`
	LastStatus     JobStatus `bun:"last_status,notnull"`
	LastError      string    `bun:"last_error,nullzero"`
	ExecutionCount int64     `bun:"execution_count,notnull,default:0"`
}
