package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/PlateCut/internal/model"
)

// JobExtension is the file suffix used for saved jobs.
const JobExtension = ".platecut.json"

// JobPath returns name with JobExtension appended unless it already ends in .json.
func JobPath(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + JobExtension
}

// SaveJob writes the job, including its last result, to path.
func SaveJob(path string, job model.Job) error {
	if err := writeJSON(path, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// LoadJob reads a job file. Missing settings fields keep their defaults.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to read job: %w", err)
	}
	job := model.NewJob()
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job %s: %w", path, err)
	}
	if job.Items == nil {
		job.Items = []model.Item{}
	}
	if job.Offcuts == nil {
		job.Offcuts = []model.OffcutPlate{}
	}
	return job, nil
}
