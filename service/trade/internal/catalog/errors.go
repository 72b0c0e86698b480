package catalog

import "errors"

// ErrUnknownCard indica un card id assente dal catalogo.
var ErrUnknownCard = errors.New("unknown card")

// ErrNotTradeable indica una carta con rarita' fuori da {C, U, R, RR, AR}.
var ErrNotTradeable = errors.New("card rarity is not tradeable")

// ErrCatalogUnavailable indica che nessuno snapshot e' ancora stato caricato.
var ErrCatalogUnavailable = errors.New("card catalog unavailable")
