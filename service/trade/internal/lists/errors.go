package lists

import (
	"errors"
	"fmt"
	"strings"

	"PocketTrade/service/trade/internal/catalog"
)

// Errori di dominio usati da service/repo e mappati nei layer gRPC e HTTP.
var ErrUserNotFound = errors.New("user not found")

// ErrStoreUnavailable indica un guasto transitorio del database; il chiamante puo' ritentare.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrBatchTooLarge indica un batch oltre MaxBatchItems per direzione.
var ErrBatchTooLarge = errors.New("batch too large")

// ErrListConflict indica una carta aggiunta e rimossa insieme, o presente in entrambe le liste.
var ErrListConflict = errors.New("conflicting list update")

// ErrInvalidProfile indica username o friend id non validi.
var ErrInvalidProfile = errors.New("invalid profile")

// ErrUsernameTaken indica uno username gia' usato da un altro profilo.
var ErrUsernameTaken = errors.New("username already taken")

// ValidationError riporta le carte che hanno fatto fallire una modifica.
// Unwrap ritorna la causa (catalog.ErrNotTradeable, catalog.ErrUnknownCard, ErrBatchTooLarge, ErrListConflict).
type ValidationError struct {
	List  string
	Cards []catalog.CardID
	Err   error
}

func (e *ValidationError) Error() string {
	ids := make([]string, len(e.Cards))
	for i, id := range e.Cards {
		ids[i] = string(id)
	}
	if len(ids) == 0 {
		return fmt.Sprintf("%s: %v", e.List, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.List, e.Err, strings.Join(ids, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
