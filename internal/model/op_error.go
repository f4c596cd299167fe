package model

// OpError records a rejected operation.
type OpError struct {
	Seq     uint64 `json:"seq"`
	Op      string `json:"op"`
	Pool    Pubkey `json:"pool"`
	User    Pubkey `json:"user"`
	OrderID string `json:"order_id,omitempty"`
	Code    uint32 `json:"code,omitempty"`
	Error   string `json:"error"`
}

// OpErrorFrom builds an OpError for op, carrying the business code when present.
func OpErrorFrom(op Operation, err error) OpError {
	return OpError{
		Seq:     op.Seq,
		Op:      op.Op,
		Pool:    op.Pool,
		User:    op.User,
		OrderID: op.OrderID,
		Code:    CodeOf(err),
		Error:   err.Error(),
	}
}

// OpResult records an applied operation and what it produced.
type OpResult struct {
	Seq    uint64      `json:"seq"`
	Op     string      `json:"op"`
	Pool   Pubkey      `json:"pool"`
	User   Pubkey      `json:"user"`
	Result interface{} `json:"result"`
}
