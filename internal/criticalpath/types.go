package criticalpath

// Schedule holds the CPM scheduling numbers for a single phase, in days.
type Schedule struct {
	PhaseID     int64
	EarlyStart  float64
	EarlyFinish float64
	LateStart   float64
	LateFinish  float64
	TotalFloat  float64
	Critical    bool
}

// Result is the full critical-path analysis for one project.
type Result struct {
	Schedules        map[int64]*Schedule
	CriticalPhaseIDs []int64 // in phase order
	TotalDuration    float64
	FloatByPhase     map[int64]float64
	CriticalEdgeIDs  []int64
}
