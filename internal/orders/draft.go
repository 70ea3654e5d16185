package orders

import "github.com/shopspring/decimal"

// ChatAddressPlaceholder is stored until the customer gives an address in chat.
const ChatAddressPlaceholder = "to be defined via chat"

// Change computes change_amount. For cash with amount_paid present it is
// amount_paid - amount_total, negative values included; otherwise the
// supplied value is kept as-is.
func Change(m PaymentMethod, total decimal.Decimal, paid, supplied decimal.NullDecimal) decimal.NullDecimal {
	if m == PaymentCash && paid.Valid {
		return decimal.NewNullDecimal(paid.Decimal.Sub(total))
	}
	return supplied
}

// NewDraft fills in change and initial status. The payment method must
// already be validated.
func NewDraft(d Draft) Draft {
	d.ChangeAmount = Change(d.PaymentMethod, d.AmountTotal, d.AmountPaid, d.ChangeAmount)
	d.Status = InitialStatus(d.PaymentMethod)
	return d
}

// FromChat is the minimal order opened when a customer first writes to the
// business's WhatsApp channel.
func FromChat(businessID, sender string) Draft {
	return Draft{
		BusinessID:      businessID,
		CustomerName:    "WhatsApp " + sender,
		CustomerPhone:   sender,
		DeliveryAddress: ChatAddressPlaceholder,
		AmountTotal:     decimal.Zero,
		PaymentMethod:   PaymentCash,
		Status:          StatusPending,
	}
}
