package i18n

var catalog = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":              "Invalid request.",
		"error.unauthorized":             "Please log in to continue.",
		"error.token_invalid":            "Your session has expired. Please log in again.",
		"error.token_revoked":            "You have been logged out. Please log in again.",
		"error.order_status_invalid":     "Unknown order status.",
		"success.logged_out":             "Logged out.",
		"error.forbidden":                "You do not have access to this page.",
		"error.role_denied_junior":       "Access denied: only juniors can buy books.",
		"error.role_denied_senior":       "Access denied: only seniors can list books.",
		"error.internal":                 "Something went wrong. Please try again.",
		"error.rate_limited":             "Too many attempts. Please retry in %d seconds.",
		"error.rate_limit_unavailable":   "Rate limiter unavailable.",
		"error.not_found":                "Not found.",
		"error.email_invalid":            "Please enter a valid email address.",
		"error.email_exists":             "An account with this email already exists.",
		"error.invalid_credentials":      "Incorrect email or password.",
		"error.role_invalid":             "Role must be senior or junior.",
		"error.full_name_required":       "Full name is required.",
		"error.password_weak":            "Password does not meet the policy.",
		"error.password_min_length":      "Password must be at least %d characters.",
		"error.password_require_upper":   "Password must contain an uppercase letter.",
		"error.password_require_lower":   "Password must contain a lowercase letter.",
		"error.password_require_number":  "Password must contain a number.",
		"error.password_require_special": "Password must contain a special character.",
		"error.profile_not_found":        "Profile not found.",
		"error.book_not_found":           "Book not found.",
		"error.book_invalid":             "Please fill in all required book fields.",
		"error.book_condition_invalid":   "Unknown book condition.",
		"error.book_price_invalid":       "Price must be greater than zero.",
		"error.book_selling_price_high":  "Selling price cannot exceed the base price.",
		"error.book_not_owner":           "You can only manage your own books.",
		"error.book_unavailable":         "This book is no longer available.",
		"error.own_book":                 "You cannot buy your own book.",
		"error.already_in_cart":          "Book is already in your cart.",
		"error.cart_item_invalid":        "Invalid cart item.",
		"error.cart_save_failed":         "Could not update your cart.",
		"error.cart_empty":               "Your cart is empty.",
		"error.delivery_location_required": "Please enter a delivery location.",
		"error.payment_method_invalid":   "Payment method must be cod or upi.",
		"error.idempotency_key_invalid":  "Invalid idempotency key.",
		"error.idempotency_conflict":     "This checkout key was already used for a different cart.",
		"error.order_create_failed":      "Failed to place order. Nothing was charged, please try again.",
		"error.order_not_found":          "Order not found.",
		"success.order_placed":           "Order placed successfully!",
		"success.added_to_cart":          "Added to cart.",
	},
	LocaleZhCN: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "请先登录",
		"error.token_invalid":            "登录已失效，请重新登录",
		"error.token_revoked":            "已退出登录，请重新登录",
		"error.order_status_invalid":     "订单状态不合法",
		"success.logged_out":             "已退出登录",
		"error.forbidden":                "无权访问",
		"error.role_denied_junior":       "仅 junior 用户可以购买书籍",
		"error.role_denied_senior":       "仅 senior 用户可以发布书籍",
		"error.internal":                 "服务异常，请稍后重试",
		"error.rate_limited":             "尝试次数过多，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.not_found":                "资源不存在",
		"error.email_invalid":            "邮箱格式不正确",
		"error.email_exists":             "该邮箱已注册",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.role_invalid":             "角色只能是 senior 或 junior",
		"error.full_name_required":       "姓名不能为空",
		"error.password_weak":            "密码不符合安全策略",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.profile_not_found":        "用户不存在",
		"error.book_not_found":           "书籍不存在",
		"error.book_invalid":             "请填写完整的书籍信息",
		"error.book_condition_invalid":   "成色取值不正确",
		"error.book_price_invalid":       "价格必须大于 0",
		"error.book_selling_price_high":  "售价不能高于原价",
		"error.book_not_owner":           "只能管理自己发布的书籍",
		"error.book_unavailable":         "该书已下架或售出",
		"error.own_book":                 "不能购买自己发布的书籍",
		"error.already_in_cart":          "该书已在购物车中",
		"error.cart_item_invalid":        "购物车项不合法",
		"error.cart_save_failed":         "购物车保存失败",
		"error.cart_empty":               "购物车为空",
		"error.delivery_location_required": "请填写交付地点",
		"error.payment_method_invalid":   "支付方式只能是 cod 或 upi",
		"error.idempotency_key_invalid":  "幂等键不合法",
		"error.idempotency_conflict":     "该幂等键已用于其他购物车",
		"error.order_create_failed":      "下单失败，请重试",
		"error.order_not_found":          "订单不存在",
		"success.order_placed":           "下单成功",
		"success.added_to_cart":          "已加入购物车",
	},
}
