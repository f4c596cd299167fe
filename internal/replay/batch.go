package replay

import "fmt"

// Batch is a half-open index range [From, To) over an operation list.
type Batch struct {
	From int
	To   int
}

// SplitBatches splits n operations into batches of at most size.
func SplitBatches(n, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("operation count must not be negative")
	}

	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batches = append(batches, Batch{From: start, To: end})
	}
	return batches, nil
}
