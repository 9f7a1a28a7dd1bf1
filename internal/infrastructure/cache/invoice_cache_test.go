package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
)

func TestCachedInvoice_KeepsInternalID(t *testing.T) {
	number := "INV-000042"
	inv := &invoice.Invoice{
		ID:        42,
		PublicID:  id.New(),
		InvoiceNo: &number,
		Total:     1500,
		Items:     []invoice.Item{{InvoiceID: 42, LineNo: 1, Qty: 3, UnitPrice: 500, LineTotal: 1500}},
	}

	raw, err := json.Marshal(fromInvoice(inv))
	require.NoError(t, err)

	var entry cachedInvoice
	require.NoError(t, json.Unmarshal(raw, &entry))
	got := entry.toInvoice()

	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, inv.PublicID, got.PublicID)
	assert.Equal(t, "INV-000042", got.Number())
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(42), got.Items[0].InvoiceID)
	assert.Equal(t, "inventra:invoice:"+inv.PublicID.String(), invoiceKey(inv.PublicID))
}
