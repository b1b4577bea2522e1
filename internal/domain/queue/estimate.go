package queue

// DefaultAvgVisitMinutes is the fallback average visit length when the
// avg_visit_minutes setting is missing or invalid.
const DefaultAvgVisitMinutes = 10

// EstimateWait projects the wait for a patient with the given number of
// still-waiting entries ahead of them. Head of the line means nobody ahead,
// zero minutes. The projection is linear and deliberately naive; avgMinutes
// comes from the runtime settings store.
func EstimateWait(waitingAhead, avgMinutes int) Estimate {
	if waitingAhead < 0 {
		waitingAhead = 0
	}
	return Estimate{
		WaitingAhead:     waitingAhead,
		EstimatedMinutes: waitingAhead * avgMinutes,
	}
}
