package match

import (
	"errors"

	"PocketTrade/service/trade/internal/lists"
)

// ErrUserNotFound indica un richiedente senza profilo.
var ErrUserNotFound = lists.ErrUserNotFound

// ErrStoreUnavailable indica che lo store non ha risposto; il motore non ritenta.
var ErrStoreUnavailable = lists.ErrStoreUnavailable

// ErrInvalidQuery indica offset/limit negativi o ranking sconosciuto.
var ErrInvalidQuery = errors.New("invalid match query")
