package service

import "github.com/campusbooks/internal/constants"

// orderTransitions 允许的订单状态迁移，终态不再变化
var orderTransitions = map[string][]string{
	constants.OrderStatusPending:   {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed: {constants.OrderStatusDelivered, constants.OrderStatusCancelled},
}

func isTransitionAllowed(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isValidOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled:
		return true
	}
	return false
}
