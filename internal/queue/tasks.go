package queue

import (
	"encoding/json"
	"fmt"

	"github.com/campusbooks/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskOrderAudit 订单完整性核查任务
const TaskOrderAudit = constants.TaskOrderAudit

// OrderAuditPayload 订单完整性核查任务载荷
type OrderAuditPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderAuditTask 创建订单完整性核查任务
func NewOrderAuditTask(payload OrderAuditPayload) (*asynq.Task, error) {
	if payload.OrderID == 0 {
		return nil, fmt.Errorf("order audit payload requires order_id")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderAudit, body), nil
}

// ParseOrderAuditPayload 解析任务载荷
func ParseOrderAuditPayload(task *asynq.Task) (OrderAuditPayload, error) {
	var payload OrderAuditPayload
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.OrderID == 0 {
		return payload, fmt.Errorf("order audit payload requires order_id")
	}
	return payload, nil
}
