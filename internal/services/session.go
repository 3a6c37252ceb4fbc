package services

// Session is the per-visitor key/value store the services read and write.
// Fiber's *session.Session satisfies it.
type Session interface {
	Get(key string) any
	Set(key string, val any)
	Delete(key string)
}

// Session keys.
const (
	SessionCartID  = "cart_id"
	SessionOrderID = "order_id"

	// SessionPlacedOrders lists orders placed from this session, oldest
	// first. Only those invoices may be downloaded.
	SessionPlacedOrders = "placed_orders"
)

const maxPlacedOrders = 20
