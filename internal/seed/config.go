package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the risk engine
	Subjects    int           // Number of synthetic subjects
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	ProfileFile string        // Optional YAML profile file
	Seed        int64         // Random seed; 0 picks one from the clock
	Verbose     bool          // Log every submission
}

// Stats holds run statistics.
type Stats struct {
	SubjectsGenerated int
	Submitted         int
	Successful        int
	Recorded          int
	Failed            int
	CardiacLevels     map[string]int
	FatigueLevels     map[string]int
	UnfitForWork      int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

func newStats() *Stats {
	return &Stats{
		CardiacLevels: make(map[string]int),
		FatigueLevels: make(map[string]int),
		StartTime:     time.Now(),
	}
}
