package model

import (
	"encoding/json"
	"testing"
)

func TestLiquidityAddedDataJSONStringFields(t *testing.T) {
	payload := LiquidityAddedData{
		User:           Pubkey{1},
		Pool:           Pubkey{2},
		AmountA:        18446744073709551615,
		AmountB:        42,
		LpTokensMinted: 200,
		NewReserveA:    1000,
		NewReserveB:    5000,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"amount_a", "amount_b", "lp_tokens_minted", "new_reserve_a", "new_reserve_b"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
	if decoded["amount_a"] != "18446744073709551615" {
		t.Fatalf("amount_a lost precision: %v", decoded["amount_a"])
	}
	if decoded["user"] != payload.User.String() {
		t.Fatalf("user should be base58, got %v", decoded["user"])
	}
}

func TestLimitOrderStatusJSON(t *testing.T) {
	order := LimitOrder{ID: "x", Status: OrderCancelled}
	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["status"] != "cancelled" {
		t.Fatalf("status should encode as text, got %v", decoded["status"])
	}

	var back LimitOrder
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal order failed: %v", err)
	}
	if back.Status != OrderCancelled {
		t.Fatalf("status mismatch: %v", back.Status)
	}
}
