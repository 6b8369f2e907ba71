package enum

// FillKind execution, confirmation
//
// Only executions change the balance; confirmations are order-book echoes
// the brokerage sends for accepted/amended orders.
type FillKind uint8

const (
	_fill_kind_beg FillKind = iota
	FillKindExecution
	FillKindConfirmation
	_fill_kind_end
)

func (k FillKind) IsAvailable() bool {
	return k > _fill_kind_beg && k < _fill_kind_end
}

func (k FillKind) ChangesBalance() bool {
	return k == FillKindExecution
}
