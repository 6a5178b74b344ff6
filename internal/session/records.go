package session

import "github.com/faizmokh/lifelog/internal/logbook"

// The helpers below dispatch the per-category transitions. Records of an
// unknown type come back unchanged.

func setItemState(r logbook.Record, i int, state logbook.ItemState) logbook.Record {
	switch v := r.(type) {
	case logbook.Workout:
		return v.SetItemState(i, state)
	case logbook.StudyLog:
		return v.SetItemState(i, state)
	case logbook.WorkLog:
		return v.SetItemState(i, state)
	case logbook.MealLog:
		return v.SetItemState(i, state)
	}
	return r
}

func stampDuration(r logbook.Record, i, seconds int) logbook.Record {
	switch v := r.(type) {
	case logbook.Workout:
		return v.SetRecordedDuration(i, logbook.FormatDurationHuman(seconds))
	case logbook.StudyLog:
		return v.SetTaskDuration(i, logbook.FormatDurationHuman(seconds))
	case logbook.WorkLog:
		return v.SetActualDuration(i, logbook.FormatDurationLong(seconds))
	}
	return r
}

func startRecord(r logbook.Record, at string) logbook.Record {
	switch v := r.(type) {
	case logbook.Workout:
		return v.Start(at)
	case logbook.StudyLog:
		return v.Start(at)
	case logbook.WorkLog:
		return v.Start(at)
	}
	return r
}

// completeRecord stamps the end of a session. A zero total leaves the
// duration field as it was.
func completeRecord(r logbook.Record, at string, totalSeconds int) logbook.Record {
	switch v := r.(type) {
	case logbook.Workout:
		total := ""
		if totalSeconds > 0 {
			total = logbook.FormatDurationHuman(totalSeconds)
		}
		return v.Complete(total)
	case logbook.StudyLog:
		total := ""
		if totalSeconds > 0 {
			total = logbook.FormatDurationHuman(totalSeconds)
		}
		return v.Complete(at, total)
	case logbook.WorkLog:
		total := ""
		if totalSeconds > 0 {
			total = logbook.FormatDurationLong(totalSeconds)
		}
		return v.Complete(at, total)
	case logbook.MealLog:
		return v.Complete()
	}
	return r
}
