package types

// PaymentMethod identifies the rail a transaction is dispatched on.
type PaymentMethod string

const (
	MethodMpesa        PaymentMethod = "mpesa"
	MethodAirtelMoney  PaymentMethod = "airtel_money"
	MethodCard         PaymentMethod = "card"
	MethodPayPal       PaymentMethod = "paypal"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodMpesa, MethodAirtelMoney, MethodCard, MethodPayPal, MethodBankTransfer:
		return true
	}
	return false
}

// PaymentType distinguishes donation payments from sponsorship payments.
type PaymentType string

const (
	PaymentTypeDonation    PaymentType = "donation"
	PaymentTypeSponsorship PaymentType = "sponsorship"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeDonation || t == PaymentTypeSponsorship
}

// ReferencePrefix is the prefix used for client-generated reference ids.
func (t PaymentType) ReferencePrefix() string {
	if t == PaymentTypeSponsorship {
		return "SPN"
	}
	return "DON"
}

// TransactionStatus is the backend-authoritative lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusInitiated  TransactionStatus = "initiated"
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusRefunded   TransactionStatus = "refunded"
)

// statusLattice lists the transitions a client may accept from a status
// observation. Terminal states are absorbing; refunded is reachable only
// from completed and only ever set by the backend.
var statusLattice = map[TransactionStatus][]TransactionStatus{
	StatusInitiated:  {StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled},
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
	StatusFailed:     {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// CanTransition reports whether a locally held status may be replaced by the
// observed one. Equal statuses are always accepted (a refresh, not a move).
func CanTransition(from, to TransactionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusLattice[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further client-visible transition is expected.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// NextAction tells the presentation layer what to do after a dispatch.
type NextAction string

const (
	// ActionNone: the transaction already reached a terminal state.
	ActionNone NextAction = "none"
	// ActionPoll: confirmation arrives out-of-band; watch the status.
	ActionPoll NextAction = "poll"
	// ActionRedirect: send the payer to the approval URL.
	ActionRedirect NextAction = "redirect"
	// ActionDisplayInstructions: show bank details and the reference id.
	ActionDisplayInstructions NextAction = "display_instructions"
)
