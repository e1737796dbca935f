package cache

import (
	"encoding/json"
	"time"

	"github.com/fragmede/trackside/internal/api"
)

// GetPlans returns the cached membership plans in display order.
// Returns (plans, isFresh, error); plans is nil on cache miss.
func (d *DB) GetPlans(ttl time.Duration) ([]api.Plan, bool, error) {
	rows, err := d.db.Query(`SELECT data, fetched_at FROM plans ORDER BY position`)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var plans []api.Plan
	oldest := time.Now().Unix()
	for rows.Next() {
		var data string
		var fetchedAt int64
		if err := rows.Scan(&data, &fetchedAt); err != nil {
			return nil, false, err
		}
		var p api.Plan
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, false, err
		}
		plans = append(plans, p)
		if fetchedAt < oldest {
			oldest = fetchedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(plans) == 0 {
		return nil, false, nil
	}
	isFresh := time.Since(time.Unix(oldest, 0)) < ttl
	return plans, isFresh, nil
}

// PutPlans replaces the cached plans.
func (d *DB) PutPlans(plans []api.Plan) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM plans`); err != nil {
		return err
	}
	now := time.Now().Unix()
	for i, p := range plans {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO plans (id, position, data, fetched_at) VALUES (?, ?, ?, ?)`,
			p.ID, i, string(data), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
