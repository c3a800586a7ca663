package metric

import (
	"context"
	"time"

	"moncal/src-server/model"
	"moncal/src-server/utils"
)

func database(as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func eventCount(as *utils.AppState) (int, error) {
	return as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Count(context.Background())
}
