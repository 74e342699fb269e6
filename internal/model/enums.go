package model

// Session is one of the three meal-time windows that gate menu availability.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
	SessionNight     Session = "night"
)

// Sessions lists the known sessions in service order.
var Sessions = []Session{SessionMorning, SessionAfternoon, SessionNight}

func (s Session) Valid() bool {
	switch s {
	case SessionMorning, SessionAfternoon, SessionNight:
		return true
	}
	return false
}

// OrderType: "dine-in" | "parcel"
type OrderType string

const (
	OrderTypeDineIn OrderType = "dine-in"
	OrderTypeParcel OrderType = "parcel"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeParcel
}

// PaymentMethod: "cash" | "online" | "split"
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
	PaymentSplit  PaymentMethod = "split"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentOnline, PaymentSplit:
		return true
	}
	return false
}

// User roles.
const (
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)
