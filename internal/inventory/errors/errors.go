package errors

import (
	"fmt"
	mongotx "parkbook/pkg/db/mongo"
)

var (
	ErrRoomNotFound       = fmt.Errorf("room %w", mongotx.ErrNotFound)
	ErrAttractionNotFound = fmt.Errorf("attraction %w", mongotx.ErrNotFound)

	ErrInvalidID = fmt.Errorf("%w for inventory item", mongotx.ErrInvalidID)
)
