package coinselect

import "fmt"

// ErrInsufficientFunds is returned when coin selection cannot find enough
// spendable outputs, after fees, to cover the requested amount.
type ErrInsufficientFunds struct {
	AmountAvailable uint64
	AmountNeeded    uint64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, only have %d available",
		e.AmountNeeded, e.AmountAvailable)
}
