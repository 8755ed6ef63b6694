package wiring

import "sort"

// SchedulerStats is a point-in-time snapshot of one scheduler's activity.
type SchedulerStats struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	UnprocessedTasks int64  `json:"unprocessed_tasks"`
	TasksHandled     int64  `json:"tasks_handled"`
	HandlerErrors    int64  `json:"handler_errors"`
	SquelchedTasks   int64  `json:"squelched_tasks"`
	Squelching       bool   `json:"squelching"`
}

// SchedulerStats snapshots every registered scheduler, sorted by name.
func (m *Model) SchedulerStats() []SchedulerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make([]SchedulerStats, 0, len(m.schedulers))
	for _, core := range m.schedulers {
		stats = append(stats, SchedulerStats{
			Name:             core.name,
			Type:             core.stype.String(),
			UnprocessedTasks: core.unprocessedTaskCount(),
			TasksHandled:     core.tasksHandled.Load(),
			HandlerErrors:    core.handlerErrors.Load(),
			SquelchedTasks:   core.squelched.Load(),
			Squelching:       core.squelching.Load(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}
