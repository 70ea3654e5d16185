package orders

type Status string

const (
	StatusPending          Status = "pending"
	StatusWaitingPayment   Status = "waiting_payment"
	StatusPaymentConfirmed Status = "payment_confirmed"
	StatusInProgress       Status = "in_progress"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
)

var validStatus = map[Status]bool{
	StatusPending:          true,
	StatusWaitingPayment:   true,
	StatusPaymentConfirmed: true,
	StatusInProgress:       true,
	StatusDelivered:        true,
	StatusCancelled:        true,
}

func (s Status) Valid() bool { return validStatus[s] }

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool { return m == PaymentCash || m == PaymentTransfer }

// InitialStatus is pending for cash and waiting_payment for transfers.
func InitialStatus(m PaymentMethod) Status {
	if m == PaymentTransfer {
		return StatusWaitingPayment
	}
	return StatusPending
}
