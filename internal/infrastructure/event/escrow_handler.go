package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soko/backend/internal/application/escrow"
	"github.com/soko/backend/internal/application/order"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
)

// EscrowCreateHandler returns the handler for escrow.create entries. It holds
// the order's funds in escrow; the escrow service treats a repeat call for the
// same order as already done, so retries are safe.
func EscrowCreateHandler(svc *escrow.Service) Handler {
	return func(ctx context.Context, entry *shared.OutboxEntry) error {
		var payload order.EscrowCreatePayload
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			return fmt.Errorf("invalid escrow.create payload: %w", err)
		}

		amount, err := valueobject.NewMoneyFromString(payload.Amount)
		if err != nil {
			return fmt.Errorf("invalid escrow.create amount: %w", err)
		}

		_, err = svc.CreateEscrow(ctx, payload.OrderID, amount)
		return err
	}
}
