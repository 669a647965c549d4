package resolver

// Stats counts tasks by status and, for non-completed tasks only, by
// priority. Completed tasks have had their priority cleared, so they appear
// only in the status counts; no_priority covers non-completed tasks without
// a priority. This is a live snapshot, not a history.
type Stats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	OnHold     int64 `json:"on_hold"`
	Completed  int64 `json:"completed"`
	Other      int64 `json:"other"`
	Urgent     int64 `json:"urgent"`
	High       int64 `json:"high"`
	Medium     int64 `json:"medium"`
	Low        int64 `json:"low"`
	NoPriority int64 `json:"no_priority"`
}

// GetStats computes the snapshot in a single query.
func (r *Resolver) GetStats() (*Stats, error) {
	var stats Stats
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS total,
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END) AS in_progress,
			SUM(CASE WHEN status = 'on_hold' THEN 1 ELSE 0 END) AS on_hold,
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed,
			SUM(CASE WHEN status = 'other' THEN 1 ELSE 0 END) AS other,
			SUM(CASE WHEN status != 'completed' AND priority = 'urgent' THEN 1 ELSE 0 END) AS urgent,
			SUM(CASE WHEN status != 'completed' AND priority = 'high' THEN 1 ELSE 0 END) AS high,
			SUM(CASE WHEN status != 'completed' AND priority = 'medium' THEN 1 ELSE 0 END) AS medium,
			SUM(CASE WHEN status != 'completed' AND priority = 'low' THEN 1 ELSE 0 END) AS low,
			SUM(CASE WHEN status != 'completed' AND (priority IS NULL OR priority = '') THEN 1 ELSE 0 END) AS no_priority
		FROM tasks
	`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
