package domain

// HealthStatus is the outcome of one doctor check, ordered ok < warn < error.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

func (s HealthStatus) severity() int {
	switch s {
	case HealthWarn:
		return 1
	case HealthError:
		return 2
	default:
		return 0
	}
}

// HealthCheck is one diagnostic line.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport lists checks in the order they ran.
type HealthReport struct {
	Checks []HealthCheck
}

// Worst returns the most severe status in the report; ok for an empty report.
func (r HealthReport) Worst() HealthStatus {
	worst := HealthOK
	for _, c := range r.Checks {
		if c.Status.severity() > worst.severity() {
			worst = c.Status
		}
	}
	return worst
}

// Healthy reports whether no check ended in an error.
func (r HealthReport) Healthy() bool {
	return r.Worst() != HealthError
}

// Count returns how many checks ended with status.
func (r HealthReport) Count(status HealthStatus) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == status {
			n++
		}
	}
	return n
}
