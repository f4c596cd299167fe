package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestEventRecordJSONRoundTrip(t *testing.T) {
	pool := DerivePosition(Pubkey{1}, Pubkey{2})
	original, err := NewEventRecord(EventSwapExecuted, pool, time.Unix(1700000000, 0), SwapExecutedData{
		User:        Pubkey{9},
		Pool:        pool,
		AmountIn:    1000,
		AmountOut:   4533,
		FeeAmount:   3,
		IsAToB:      true,
		NewReserveA: 11000,
		NewReserveB: 45467,
	})
	if err != nil {
		t.Fatalf("new record failed: %v", err)
	}
	original.Seq = 7

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded EventRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Seq != original.Seq || decoded.Kind != original.Kind || decoded.Pool != original.Pool || decoded.At != original.At {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}

	var payload SwapExecutedData
	if err := decoded.Decode(&payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.AmountOut != 4533 || !payload.IsAToB {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestEventRecordRejectsMissingKind(t *testing.T) {
	var decoded EventRecord
	if err := json.Unmarshal([]byte(`{"seq":1,"payload":{}}`), &decoded); err == nil {
		t.Fatalf("expected error for missing kind")
	}
}

func TestOperationArgsRoundTrip(t *testing.T) {
	args := SwapArgs{AmountIn: 1000, MinimumAmountOut: 4500, IsAToB: true}
	op, err := NewOperation(OpSwap, Pubkey{3}, Pubkey{4}, args)
	if err != nil {
		t.Fatalf("new operation failed: %v", err)
	}

	b, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded Operation
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	var got SwapArgs
	if err := decoded.DecodeArgs(&got); err != nil {
		t.Fatalf("decode args failed: %v", err)
	}
	if !reflect.DeepEqual(args, got) {
		t.Fatalf("args mismatch: %+v != %+v", args, got)
	}
}
