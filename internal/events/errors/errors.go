package errors

import (
	"fmt"
	mongotx "parkbook/pkg/db/mongo"
)

var (
	ErrNotFound = fmt.Errorf("event %w", mongotx.ErrNotFound)

	ErrInvalidID = fmt.Errorf("%w for event", mongotx.ErrInvalidID)
)
