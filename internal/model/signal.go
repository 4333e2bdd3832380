package model

// Decision is a discrete trading signal for one indicator family.
type Decision string

const (
	DecisionBuy     Decision = "BUY"
	DecisionSell    Decision = "SELL"
	DecisionNeutral Decision = "NEUTRAL"
	// DecisionWait means the indicator's window is not yet full, so no
	// judgement is possible for that day.
	DecisionWait Decision = "WAIT"
)
