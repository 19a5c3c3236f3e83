package worker

import "time"

func (w *DeadlineWorker) SetClock(now func() time.Time) {
	w.now = now
}
