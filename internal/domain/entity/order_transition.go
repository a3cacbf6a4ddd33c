package entity

import (
	"fmt"
)

// OrderAction acción que mueve un pedido de estado.
type OrderAction string

const (
	ActionSignRequest  OrderAction = "sign_request"
	ActionSignResponse OrderAction = "sign_response"
	ActionCancel       OrderAction = "cancel"
	ActionAdminSet     OrderAction = "admin_set"
)

type transitionKey struct {
	From   OrderStatus
	Action OrderAction
}

// orderTransitions (estado actual, acción) -> destino. Destino vacío = lo elige quien ejecuta la acción.
// Todas las acciones aplican desde cualquier estado; Rechazada sólo se alcanza con admin_set.
var orderTransitions = buildTransitions()

func buildTransitions() map[transitionKey]OrderStatus {
	t := make(map[transitionKey]OrderStatus, len(OrderStatuses)*4)
	for _, s := range OrderStatuses {
		t[transitionKey{s, ActionSignRequest}] = OrderStatusInTransit
		t[transitionKey{s, ActionSignResponse}] = OrderStatusDelivered
		t[transitionKey{s, ActionCancel}] = OrderStatusCancelled
		t[transitionKey{s, ActionAdminSet}] = ""
	}
	return t
}

func knownAction(a OrderAction) bool {
	switch a {
	case ActionSignRequest, ActionSignResponse, ActionCancel, ActionAdminSet:
		return true
	}
	return false
}

// NextStatus resuelve el estado resultante de aplicar action sobre un pedido en from.
// target sólo se usa con admin_set.
func NextStatus(action OrderAction, from, target OrderStatus) (OrderStatus, error) {
	if !knownAction(action) {
		return "", fmt.Errorf("acción desconocida %q", action)
	}
	to, ok := orderTransitions[transitionKey{from, action}]
	if !ok {
		return "", fmt.Errorf("%s no aplica desde %q", action, from)
	}
	if to == "" {
		to = target
	}
	if !to.Valid() {
		return "", fmt.Errorf("estado destino inválido %q", to)
	}
	return to, nil
}

// SlotAction acción asociada a capturar una firma en el slot.
func SlotAction(slot SignatureSlot) (OrderAction, bool) {
	switch slot {
	case SlotLetterSignature:
		return ActionSignRequest, true
	case SlotLetterResponseSignature:
		return ActionSignResponse, true
	}
	return "", false
}
