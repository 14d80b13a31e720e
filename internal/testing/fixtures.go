package testing

import (
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/modules/world"
)

// FixedTime is the clock used by fixtures
var FixedTime = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

// NewCallerFixture returns a caller stamped with FixedTime
func NewCallerFixture() domain.Caller {
	return domain.Caller{
		User:    "test_user",
		Session: domain.SessionForDate(FixedTime),
		At:      FixedTime,
	}
}

// NewWorldFixture returns a world manager resized to xMax by yMax
func NewWorldFixture(xMax, yMax string) *world.Manager {
	m := world.NewManager()
	if _, err := m.SetMax(xMax, yMax); err != nil {
		panic(err)
	}
	return m
}
