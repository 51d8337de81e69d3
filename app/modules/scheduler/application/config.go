package schedulerservice

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrJobConfig indicates the declarative job list is malformed. It is fatal
// to the catch-up feature: recovery must never silently run on a partial or
// defaulted job list.
var ErrJobConfig = errors.New("invalid job configuration")

// ScheduleClass groups jobs by cadence; each class has its own staleness
// threshold for catch-up.
type ScheduleClass string

const (
	ClassDaily   ScheduleClass = "daily"
	ClassWeekly  ScheduleClass = "weekly"
	ClassMonthly ScheduleClass = "monthly"
)

// classThresholds is how old a last execution may be before a job of the
// class counts as overdue.
var classThresholds = map[ScheduleClass]time.Duration{
	ClassDaily:   24 * time.Hour,
	ClassWeekly:  168 * time.Hour,
	ClassMonthly: 720 * time.Hour,
}

// Priority orders catch-up execution.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// JobSpec is one entry of the declarative catch-up job list.
type JobSpec struct {
	ID        string        `yaml:"id"`
	Class     ScheduleClass `yaml:"class"`
	Operation string        `yaml:"operation"`
	Timeout   time.Duration `yaml:"timeout"`
	Priority  Priority      `yaml:"priority"`
}

// UnmarshalYAML decodes one job entry, parsing timeout values like "5m".
func (j *JobSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ID        string        `yaml:"id"`
		Class     ScheduleClass `yaml:"class"`
		Operation string        `yaml:"operation"`
		Timeout   string        `yaml:"timeout"`
		Priority  Priority      `yaml:"priority"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	j.ID = raw.ID
	j.Class = raw.Class
	j.Operation = raw.Operation
	j.Priority = raw.Priority
	if raw.Timeout != "" {
		parsed, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("job %q: timeout %q: %v", raw.ID, raw.Timeout, err)
		}
		j.Timeout = parsed
	}
	return nil
}

type jobsFile struct {
	Jobs []JobSpec `yaml:"jobs"`
}

// LoadJobSpecs reads and strictly validates the job list. Any structural
// violation fails the whole load; nothing is defaulted silently.
func LoadJobSpecs(path string, operations map[string]Operation) ([]JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrJobConfig, path, err)
	}

	var file jobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrJobConfig, path, err)
	}

	if err := ValidateJobSpecs(file.Jobs, operations); err != nil {
		return nil, err
	}
	return file.Jobs, nil
}

// ValidateJobSpecs checks every entry of a job list against the known
// operations.
func ValidateJobSpecs(jobs []JobSpec, operations map[string]Operation) error {
	if len(jobs) == 0 {
		return fmt.Errorf("%w: job list is empty", ErrJobConfig)
	}

	seen := map[string]bool{}
	for i, job := range jobs {
		if job.ID == "" {
			return fmt.Errorf("%w: job %d has no id", ErrJobConfig, i)
		}
		if seen[job.ID] {
			return fmt.Errorf("%w: duplicate job id %q", ErrJobConfig, job.ID)
		}
		seen[job.ID] = true

		if _, ok := classThresholds[job.Class]; !ok {
			return fmt.Errorf("%w: job %q has unknown class %q", ErrJobConfig, job.ID, job.Class)
		}
		if _, ok := operations[job.Operation]; !ok {
			return fmt.Errorf("%w: job %q references unknown operation %q", ErrJobConfig, job.ID, job.Operation)
		}
		if job.Timeout <= 0 {
			return fmt.Errorf("%w: job %q has no timeout", ErrJobConfig, job.ID)
		}
		if _, ok := priorityRank[job.Priority]; !ok {
			return fmt.Errorf("%w: job %q has unknown priority %q", ErrJobConfig, job.ID, job.Priority)
		}
	}
	return nil
}
