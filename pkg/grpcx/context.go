package grpcx

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// Chiavi condivise per passare l'identita' utente tra HTTP, gRPC e dominio.
type contextKey string

// ContextUserIDKey definisce la chiave per il context locale (non gRPC).
const ContextUserIDKey contextKey = "user_id"

// UserIDMetadataKey definisce la chiave metadata per l'user_id su gRPC.
const UserIDMetadataKey = "user_id"

// ErrMissingUserID indica che né metadata né context portano un user_id valido.
var ErrMissingUserID = errors.New("user_id missing or invalid")

// WithUserID salva l'user_id nel context locale.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID.String())
}

// OutgoingWithUserID aggiunge l'user_id alle metadata della chiamata gRPC in uscita.
func OutgoingWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return metadata.AppendToOutgoingContext(ctx, UserIDMetadataKey, userID.String())
}

// UserIDFromContext prova prima dalle metadata gRPC, poi dal context locale.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(UserIDMetadataKey); len(values) > 0 {
			if parsed, err := uuid.Parse(strings.TrimSpace(values[0])); err == nil {
				return parsed, nil
			}
		}
	}

	value, ok := ctx.Value(ContextUserIDKey).(string)
	if !ok || strings.TrimSpace(value) == "" {
		return uuid.Nil, ErrMissingUserID
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrMissingUserID
	}
	return parsed, nil
}
