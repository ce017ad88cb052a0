package receipt

import (
	"context"
	"strings"
	"testing"

	"github.com/magpress/receipts/internal/gateway"
)

func TestDispatchAll_OutcomesAlignWithRows(t *testing.T) {
	sender := &stubSender{messageID: "<OK1@host>"}
	d := NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")

	rows := []Row{
		{Email: "a@example.com", Name: "Alice", PurchaseDate: "2024-01-01", Quantity: 1, Edition: EditionPrint},
		{Email: "", Name: "Nameless", PurchaseDate: "2024-01-02", Quantity: 1, Edition: EditionPrint},
		{Email: "c@example.com", Name: "Carol", PurchaseDate: "2024-01-03", Quantity: 2, Edition: EditionPrint},
	}

	summary := d.DispatchAll(context.Background(), rows)

	if len(summary.Outcomes) != len(rows) {
		t.Fatalf("expected %d outcomes, got %d", len(rows), len(summary.Outcomes))
	}
	if summary.Sent != 2 || summary.Failed != 1 {
		t.Errorf("expected 2 sent / 1 failed, got %d / %d", summary.Sent, summary.Failed)
	}

	if !summary.Outcomes[0].Success || summary.Outcomes[0].RecipientEmail != "a@example.com" {
		t.Errorf("outcome 0 does not match row 0: %+v", summary.Outcomes[0])
	}
	if summary.Outcomes[1].Success {
		t.Error("invalid row must produce a failure outcome")
	}
	if !strings.HasPrefix(summary.Outcomes[1].ErrorMessage, "invalid row: ") {
		t.Errorf("unexpected invalid-row error: %q", summary.Outcomes[1].ErrorMessage)
	}
	if !summary.Outcomes[2].Success || summary.Outcomes[2].RecipientEmail != "c@example.com" {
		t.Errorf("outcome 2 does not match row 2: %+v", summary.Outcomes[2])
	}

	// The invalid row never reaches the gateway.
	if len(sender.calls) != 2 {
		t.Fatalf("expected 2 gateway calls, got %d", len(sender.calls))
	}
	if sender.calls[0].recipient != "a@example.com" || sender.calls[1].recipient != "c@example.com" {
		t.Error("gateway calls out of row order")
	}
}

func TestDispatchAll_DigitalWithoutCredentialsSkipsGateway(t *testing.T) {
	sender := &stubSender{messageID: "<OK1@host>"}
	d := NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")

	rows := []Row{
		{
			Email: "a@example.com", Name: "Alice", PurchaseDate: "2024-01-01",
			Quantity: 1, Edition: EditionDigital,
			Digital: &DigitalAccess{Link: "https://read.example.com"},
		},
	}

	summary := d.DispatchAll(context.Background(), rows)

	if summary.Sent != 0 || summary.Failed != 1 {
		t.Errorf("expected 0 sent / 1 failed, got %d / %d", summary.Sent, summary.Failed)
	}
	if len(sender.calls) != 0 {
		t.Errorf("digital row without credentials must not reach the gateway, got %d calls", len(sender.calls))
	}
	if !strings.Contains(summary.Outcomes[0].ErrorMessage, "missing digital access credentials") {
		t.Errorf("unexpected error: %q", summary.Outcomes[0].ErrorMessage)
	}
}

func TestDispatchAll_UnconfiguredGatewayFailsEveryRow(t *testing.T) {
	sender := &stubSender{err: gateway.ErrNotConfigured}
	d := NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")

	rows := []Row{
		{Email: "a@example.com", Name: "Alice", PurchaseDate: "2024-01-01", Quantity: 1, Edition: EditionPrint},
		{Email: "b@example.com", Name: "Bob", PurchaseDate: "2024-01-02", Quantity: 1, Edition: EditionPrint},
		{Email: "c@example.com", Name: "Carol", PurchaseDate: "2024-01-03", Quantity: 1, Edition: EditionPrint},
	}

	summary := d.DispatchAll(context.Background(), rows)

	if summary.Sent != 0 || summary.Failed != len(rows) {
		t.Errorf("expected 0 sent / %d failed, got %d / %d", len(rows), summary.Sent, summary.Failed)
	}
	for i, outcome := range summary.Outcomes {
		if !strings.Contains(outcome.ErrorMessage, "not configured") {
			t.Errorf("outcome %d: expected configuration error, got %q", i, outcome.ErrorMessage)
		}
	}
}

func TestDispatchAll_AttemptIDAssignedBeforeSend(t *testing.T) {
	sender := &stubSender{err: gateway.ErrNotConfigured}
	d := NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")

	rows := []Row{
		{Email: "a@example.com", Name: "Alice", PurchaseDate: "2024-01-01", Quantity: 1, Edition: EditionPrint},
	}

	summary := d.DispatchAll(context.Background(), rows)

	outcome := summary.Outcomes[0]
	if outcome.AttemptID == "" {
		t.Fatal("expected an attempt ID even on failure")
	}
	if !strings.HasPrefix(outcome.AttemptID, "TXN-") {
		t.Errorf("unexpected attempt ID %q", outcome.AttemptID)
	}
	if outcome.TransactionID != outcome.AttemptID {
		t.Errorf("failed row should fall back to the attempt ID as its transaction ID, got %q", outcome.TransactionID)
	}
}

func TestDispatchAll_SuccessfulRowDerivesTransactionID(t *testing.T) {
	sender := &stubSender{messageID: "<XYZ@smtp-relay.mailin.fr>"}
	d := NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")

	rows := []Row{
		{Email: "a@example.com", Name: "Alice", PurchaseDate: "2024-01-01", Quantity: 1, Edition: EditionPrint},
	}

	summary := d.DispatchAll(context.Background(), rows)

	outcome := summary.Outcomes[0]
	if outcome.TransactionID != "XYZ" {
		t.Errorf("expected derived transaction ID XYZ, got %q", outcome.TransactionID)
	}
	if outcome.AttemptID == "" {
		t.Error("successful bulk rows still carry their attempt ID")
	}
}

func TestDispatchAll_EmptyInput(t *testing.T) {
	d := NewDispatcher(&stubSender{}, "Quarterly Review", "25.00", "MagPress Team")

	summary := d.DispatchAll(context.Background(), nil)
	if summary.Sent != 0 || summary.Failed != 0 || len(summary.Outcomes) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}
