package models

import "testing"

func TestCanTransition_ForwardSteps(t *testing.T) {
	sequence := []OrderStatus{
		OrderReadyForDispatch,
		OrderAssigned,
		OrderAccepted,
		OrderPickedUp,
		OrderInTransit,
		OrderDelivered,
	}

	for i := 0; i < len(sequence)-1; i++ {
		if !sequence[i].CanTransition(sequence[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", sequence[i], sequence[i+1])
		}
	}
}

func TestCanTransition_RejectsSkips(t *testing.T) {
	if OrderReadyForDispatch.CanTransition(OrderAccepted) {
		t.Error("expected skipping assigned to be rejected")
	}
	if OrderAssigned.CanTransition(OrderDelivered) {
		t.Error("expected jumping straight to delivered to be rejected")
	}
}

func TestCanTransition_RejectsBackward(t *testing.T) {
	if OrderInTransit.CanTransition(OrderPickedUp) {
		t.Error("expected backward transition to be rejected")
	}
	if OrderAssigned.CanTransition(OrderReadyForDispatch) {
		t.Error("expected backward transition to be rejected")
	}
}

func TestCanTransition_CancelFromAnyNonTerminal(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderReadyForDispatch, OrderAssigned, OrderAccepted, OrderPickedUp, OrderInTransit,
	} {
		if !s.CanTransition(OrderCanceled) {
			t.Errorf("expected %s -> canceled to be allowed", s)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, s := range []OrderStatus{OrderDelivered, OrderCanceled} {
		for _, next := range []OrderStatus{
			OrderReadyForDispatch, OrderAssigned, OrderAccepted,
			OrderPickedUp, OrderInTransit, OrderDelivered, OrderCanceled,
		} {
			if s.CanTransition(next) {
				t.Errorf("expected %s -> %s to be rejected", s, next)
			}
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderReadyForDispatch, OrderAssigned, OrderAccepted,
		OrderPickedUp, OrderInTransit, OrderDelivered, OrderCanceled,
	} {
		if !IsValidStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if IsValidStatus("pending") {
		t.Error("expected unknown status to be invalid")
	}
}

func TestOrderIsActive(t *testing.T) {
	active := &Order{Status: string(OrderInTransit)}
	if !active.IsActive() {
		t.Error("expected in_transit order to be active")
	}
	done := &Order{Status: string(OrderDelivered)}
	if done.IsActive() {
		t.Error("expected delivered order to be inactive")
	}
	canceled := &Order{Status: string(OrderCanceled)}
	if canceled.IsActive() {
		t.Error("expected canceled order to be inactive")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jordan.Baker@Example.COM "); got != "jordan.baker@example.com" {
		t.Errorf("unexpected result: %q", got)
	}
}
