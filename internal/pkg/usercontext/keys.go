package usercontext

// Keys for values the auth middleware stores on the fiber context.
const (
	KeyUserID        = "user_id"
	KeyShopID        = "shop_id"
	KeyRole          = "role"
	KeyFromProtected = "from_protected"
)
