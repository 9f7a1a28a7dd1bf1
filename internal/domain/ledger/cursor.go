package ledger

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// Cursor is a keyset position in the newest-first ledger ordering.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        id.ID     `json:"id"`
}

// CursorOf returns the position of txn.
func CursorOf(txn StockTxn) Cursor {
	return Cursor{CreatedAt: txn.CreatedAt, ID: txn.ID}
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by Encode. An empty token means
// "start from the newest entry" and yields nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperror.NewValidation("invalid cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.CreatedAt.IsZero() || id.IsNil(c.ID) {
		return nil, apperror.NewValidation("invalid cursor")
	}
	return &c, nil
}
