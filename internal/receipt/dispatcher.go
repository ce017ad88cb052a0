package receipt

import (
	"context"
	"time"

	"github.com/magpress/receipts/internal/gateway"
)

// maxErrorLen caps the gateway error text stored on an outcome.
const maxErrorLen = 500

// Dispatcher sends one receipt email per call: it renders the template
// variant for the row's edition, invokes the gateway, and folds the result,
// gateway errors included, into an Outcome. It never panics or returns an
// error past this boundary.
type Dispatcher struct {
	sender         gateway.Sender
	magazineName   string
	purchaseAmount string
	senderName     string
	now            func() time.Time
}

// NewDispatcher creates a Dispatcher with the shared receipt context: the
// magazine being sold, the fixed purchase amount, and the sender identity
// used in the subject line and footer.
func NewDispatcher(sender gateway.Sender, magazineName, purchaseAmount, senderName string) *Dispatcher {
	return &Dispatcher{
		sender:         sender,
		magazineName:   magazineName,
		purchaseAmount: purchaseAmount,
		senderName:     senderName,
		now:            time.Now,
	}
}

// Subject returns the receipt email subject line.
func (d *Dispatcher) Subject() string {
	return "Receipt for " + d.magazineName + " - " + d.senderName
}

// Dispatch sends the receipt for one validated row and returns its outcome.
// On success the outcome carries the gateway message ID and the transaction
// ID derived from it.
func (d *Dispatcher) Dispatch(ctx context.Context, row Row) Outcome {
	outcome := Outcome{
		RecipientEmail: row.Email,
		RecipientName:  row.Name,
	}

	receiptDate := d.now().UTC().Format("2006-01-02 15:04:05")

	var body string
	if row.Edition == EditionDigital && row.Digital != nil {
		body = digitalReceiptBody(row.Name, d.magazineName, d.purchaseAmount, row.PurchaseDate, row.Quantity, *row.Digital, receiptDate, d.senderName)
	} else {
		body = printReceiptBody(row.Name, d.magazineName, d.purchaseAmount, row.PurchaseDate, row.Quantity, receiptDate, d.senderName)
	}

	messageID, err := d.sender.Send(ctx, row.Email, d.Subject(), body)
	if err != nil {
		outcome.ErrorMessage = truncate(err.Error(), maxErrorLen)
		return outcome
	}

	outcome.Success = true
	outcome.MessageID = messageID
	outcome.TransactionID = DeriveTransactionID(messageID)
	return outcome
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
