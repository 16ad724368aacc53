package action

import (
	"context"
	"errors"
	"testing"
)

func TestRegistryRegisterAndExecute(t *testing.T) {
	r := NewRegistry()
	err := r.Register("demo", func(ctx context.Context, callID string, call *FunctionCall) (string, error) {
		return "ok " + callID, nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !r.Has("demo") {
		t.Fatalf("expected Has to report registered executor")
	}
	if r.Has("missing") {
		t.Fatalf("Has must be false for unregistered name")
	}

	result, err := r.Execute(context.Background(), "c1", &FunctionCall{Name: "demo"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "ok c1" {
		t.Fatalf("unexpected result: %q", result)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	exec := func(ctx context.Context, callID string, call *FunctionCall) (string, error) {
		return "", nil
	}
	if err := r.Register("demo", exec); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register("demo", exec); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegistryExecuteUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "c1", &FunctionCall{Name: "nope"})
	if err == nil {
		t.Fatalf("expected error for unknown executor")
	}
}

func TestRegistryExecutorError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.MustRegister("demo", func(ctx context.Context, callID string, call *FunctionCall) (string, error) {
		return "", boom
	})
	_, err := r.Execute(context.Background(), "c1", &FunctionCall{Name: "demo"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected executor error, got %v", err)
	}
}

func TestFunctionCallParseArguments(t *testing.T) {
	call := &FunctionCall{ID: "call_1", Name: NameBookAppointment}
	if err := call.ParseArguments(`{"message":"one moment","date":"2024-05-01"}`); err != nil {
		t.Fatalf("ParseArguments failed: %v", err)
	}
	if call.Message() != "one moment" {
		t.Fatalf("unexpected message: %q", call.Message())
	}
	if call.StringArg("date") != "2024-05-01" {
		t.Fatalf("unexpected date: %q", call.StringArg("date"))
	}
}

func TestFunctionCallParseArgumentsEmpty(t *testing.T) {
	call := &FunctionCall{ID: "call_1", Name: NameEndCall}
	if err := call.ParseArguments(""); err != nil {
		t.Fatalf("empty argument buffer must parse: %v", err)
	}
	if call.Message() != "" {
		t.Fatalf("expected empty message")
	}
}

func TestFunctionCallParseArgumentsInvalid(t *testing.T) {
	call := &FunctionCall{ID: "call_1", Name: NameBookAppointment}
	if err := call.ParseArguments(`{"message":`); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(NameEndCall) || !Terminal(NameTransferCall) {
		t.Fatalf("end_call and transfer_call are terminal")
	}
	if Terminal(NameBookAppointment) {
		t.Fatalf("book_appointment is not terminal")
	}
}

func TestCatalogOffersRequiredFunctions(t *testing.T) {
	names := make(map[string]bool)
	for _, tool := range Catalog() {
		if tool.Type != "function" {
			t.Fatalf("unexpected tool type: %s", tool.Type)
		}
		names[tool.Function.Name] = true
	}
	for _, want := range []string{NameEndCall, NameTransferCall, NameBookAppointment} {
		if !names[want] {
			t.Fatalf("catalog missing %s", want)
		}
	}
}
