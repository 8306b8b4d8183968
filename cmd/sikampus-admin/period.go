package main

import (
	"fmt"
	"time"
)

func parsePeriod(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("since must be YYYY-MM-DD: %w", err)
	}
	return &t, nil
}
