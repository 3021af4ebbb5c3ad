package domain

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodGCash  PaymentMethod = "gcash"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodNone   PaymentMethod = "n/a"
)

// PaymentState is the single source of truth for a booking's payment fields.
// The legacy triple (payment flag, status, method) is derived from it at the
// serialization boundary, so a "paid but payment=false" record cannot be
// constructed.
type PaymentState struct {
	status PaymentStatus
	method PaymentMethod
}

func PaymentUnpaid() PaymentState {
	return PaymentState{status: PaymentStatusUnpaid, method: PaymentMethodNone}
}

// PaymentCashIntent records that the guest declared intent to pay at the
// property; the booking is still unpaid.
func PaymentCashIntent() PaymentState {
	return PaymentState{status: PaymentStatusPending, method: PaymentMethodCash}
}

func PaymentPaid(method PaymentMethod) (PaymentState, error) {
	switch method {
	case PaymentMethodCash, PaymentMethodGCash, PaymentMethodOnline:
		return PaymentState{status: PaymentStatusPaid, method: method}, nil
	default:
		return PaymentState{}, Errorf(KindInvalidArgument, "unknown payment method %q", method)
	}
}

// NewPaymentState reconstructs a state from its stored columns.
func NewPaymentState(status PaymentStatus, method PaymentMethod) (PaymentState, error) {
	switch status {
	case PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid:
	default:
		return PaymentState{}, Errorf(KindInvalidArgument, "unknown payment status %q", status)
	}
	switch method {
	case PaymentMethodCash, PaymentMethodGCash, PaymentMethodOnline, PaymentMethodNone:
	default:
		return PaymentState{}, Errorf(KindInvalidArgument, "unknown payment method %q", method)
	}
	if status == PaymentStatusPaid && method == PaymentMethodNone {
		return PaymentState{}, Errorf(KindInvalidArgument, "paid booking must carry a payment method")
	}
	return PaymentState{status: status, method: method}, nil
}

func (p PaymentState) Status() PaymentStatus { return p.status }

func (p PaymentState) Method() PaymentMethod {
	if p.method == "" {
		return PaymentMethodNone
	}
	return p.method
}

// Paid derives the legacy boolean flag.
func (p PaymentState) Paid() bool { return p.status == PaymentStatusPaid }
