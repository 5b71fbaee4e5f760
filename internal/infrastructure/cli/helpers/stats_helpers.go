package helpers

import (
	"sort"
	"time"

	"github.com/doeshing/shcmd/internal/domain"
)

// CommandStatistic represents usage statistics for a command
type CommandStatistic struct {
	Command string
	Count   int
}

// HistoryStatistics summarises a slice of history records.
type HistoryStatistics struct {
	Attempts    int
	Ran         int
	Succeeded   int
	ByState     map[domain.ExecutionState]int
	Frequency   map[string]int
	TotalRunFor time.Duration
}

// AnalyzeHistory counts attempts per state and per command. Commands are keyed by alias,
// or by id when the alias is empty.
func AnalyzeHistory(records []domain.HistoryRecord) HistoryStatistics {
	stats := HistoryStatistics{
		Attempts:  len(records),
		ByState:   make(map[domain.ExecutionState]int),
		Frequency: make(map[string]int),
	}
	for _, rec := range records {
		stats.ByState[rec.State]++
		key := rec.Alias
		if key == "" {
			key = rec.CommandID
		}
		stats.Frequency[key]++
		if rec.ExitCode != nil || rec.State == domain.StateDone {
			stats.Ran++
			stats.TotalRunFor += time.Duration(rec.ExecutionTimeMS) * time.Millisecond
			if rec.Success {
				stats.Succeeded++
			}
		}
	}
	return stats
}

// AverageRunTime is the mean duration of the attempts that ran a process.
func (s HistoryStatistics) AverageRunTime() time.Duration {
	if s.Ran == 0 {
		return 0
	}
	return s.TotalRunFor / time.Duration(s.Ran)
}

// CalculateTopCommands returns the top N most frequently used commands
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(commandFrequency map[string]int, limit int) []CommandStatistic {
	stats := make([]CommandStatistic, 0, len(commandFrequency))
	for cmd, count := range commandFrequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sortStatisticsByFrequency(stats)

	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// sortStatisticsByFrequency sorts statistics by count (descending) then by command name (ascending)
func sortStatisticsByFrequency(stats []CommandStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, executedCount int) float64 {
	if executedCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(executedCount) * 100.0
}
