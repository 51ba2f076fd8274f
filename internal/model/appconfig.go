package model

// AppConfig holds application-wide preferences and the defaults applied to new jobs.
type AppConfig struct {
	DefaultPlate      PlateConfig     `json:"default_plate"`
	DefaultCut        CutConfig       `json:"default_cut"`
	DefaultGoal       Goal            `json:"default_goal"`
	DefaultOffcutMode OffcutMode      `json:"default_offcut_mode"`
	UseGridGrouping   bool            `json:"use_grid_grouping"`
	UseGA             bool            `json:"use_ga"`
	Seed              int64           `json:"seed"`
	Genetic           GeneticSettings `json:"genetic"`

	// Application preferences
	RecentJobs []string `json:"recent_jobs"`
	OutputDir  string   `json:"output_dir"` // Where exports land; empty = next to the job file
}

// DefaultAppConfig returns an AppConfig populated with the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPlate:      defaults.Plate,
		DefaultCut:        defaults.Cut,
		DefaultGoal:       defaults.Goal,
		DefaultOffcutMode: defaults.OffcutMode,
		UseGridGrouping:   defaults.UseGridGrouping,
		UseGA:             defaults.UseGA,
		Seed:              defaults.Seed,
		Genetic:           defaults.Genetic,
		RecentJobs:        []string{},
	}
}

// ApplyToSettings copies the saved defaults into s so a new job inherits them.
// Zero-valued goal or offcut mode leave the existing value untouched.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Plate = c.DefaultPlate
	s.Cut = c.DefaultCut
	if c.DefaultGoal.Valid() {
		s.Goal = c.DefaultGoal
	}
	if c.DefaultOffcutMode != "" {
		s.OffcutMode = c.DefaultOffcutMode
	}
	s.UseGridGrouping = c.UseGridGrouping
	s.UseGA = c.UseGA
	s.Seed = c.Seed
	if c.Genetic.PopulationSize > 0 {
		s.Genetic = c.Genetic
	}
}

// AddRecentJob puts path at the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentJob(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			recent = append(recent, p)
		}
	}
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentJobs = recent
}
