package constants

// 用户角色常量
const (
	RoleSenior = "senior" // 卖书
	RoleJunior = "junior" // 买书
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodCOD = "cod"
	PaymentMethodUPI = "upi"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// 书籍成色常量
const (
	BookConditionNew     = "new"
	BookConditionLikeNew = "like_new"
	BookConditionGood    = "good"
	BookConditionFair    = "fair"
	BookConditionPoor    = "poor"
)

// 书籍列表排序常量
const (
	BookSortNewest    = "newest"
	BookSortPriceLow  = "price-low"
	BookSortPriceHigh = "price-high"
)

// 首页推荐书籍数量
const FeaturedBooksLimit = 6

// 订单号前缀
const OrderNoPrefix = "CB"

// 幂等键常量
const (
	IdempotencyHeader    = "X-Idempotency-Key"
	IdempotencyKeyMaxLen = 128
)

// 购物车存储常量
const (
	CartStorageKey    = "cart"
	CartStorageRedis  = "redis"
	CartStorageMemory = "memory"
)

// 跳转目标，随错误响应返回给前端
const (
	RedirectLogin = "/auth/login"
	RedirectHome  = "/"
	RedirectCart  = "/cart"
)

// 队列与任务常量
const (
	QueueDefault   = "default"
	QueueCritical  = "critical"
	TaskOrderAudit = "order:audit"
)
