package receipt

import (
	"fmt"
	"html"
)

// printReceiptBody returns the HTML receipt for a print-edition purchase.
func printReceiptBody(recipientName, magazineName, purchaseAmount, purchaseDate string, quantity int, receiptDate, senderName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background-color: #f4f4f7; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
    .header { background-color: #1a1a2e; color: #ffffff; padding: 24px 32px; }
    .header h1 { margin: 0; font-size: 20px; font-weight: 600; }
    .body { padding: 32px; color: #333333; line-height: 1.6; }
    .details { background-color: #f8f9fa; border-left: 4px solid #1a1a2e; padding: 16px 20px; border-radius: 0 4px 4px 0; font-size: 14px; }
    .details p { margin: 4px 0; }
    .details strong { color: #333333; }
    .footer { padding: 20px 32px; text-align: center; font-size: 12px; color: #999999; border-top: 1px solid #eeeeee; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Purchase Receipt</h1>
    </div>
    <div class="body">
      <p>Dear %s,</p>
      <p>Thank you for your purchase. Here are the details of your order:</p>
      <div class="details">
        <p><strong>Magazine:</strong> %s</p>
        <p><strong>Edition:</strong> Print</p>
        <p><strong>Quantity:</strong> %d</p>
        <p><strong>Amount:</strong> %s</p>
        <p><strong>Purchase date:</strong> %s</p>
      </div>
      <p>Your copy will be delivered to your registered address.</p>
    </div>
    <div class="footer">
      Receipt generated %s by %s.
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(recipientName),
		html.EscapeString(magazineName),
		quantity,
		html.EscapeString(purchaseAmount),
		html.EscapeString(purchaseDate),
		html.EscapeString(receiptDate),
		html.EscapeString(senderName),
	)
}

// digitalReceiptBody returns the HTML receipt for a digital-edition purchase,
// including the access credentials.
func digitalReceiptBody(recipientName, magazineName, purchaseAmount, purchaseDate string, quantity int, access DigitalAccess, receiptDate, senderName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background-color: #f4f4f7; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
    .header { background-color: #1a1a2e; color: #ffffff; padding: 24px 32px; }
    .header h1 { margin: 0; font-size: 20px; font-weight: 600; }
    .body { padding: 32px; color: #333333; line-height: 1.6; }
    .details { background-color: #f8f9fa; border-left: 4px solid #1a1a2e; padding: 16px 20px; border-radius: 0 4px 4px 0; font-size: 14px; }
    .details p { margin: 4px 0; }
    .details strong { color: #333333; }
    .access { background-color: #eef4ff; border-left: 4px solid #2952cc; padding: 16px 20px; margin-top: 16px; border-radius: 0 4px 4px 0; font-size: 14px; }
    .access p { margin: 4px 0; }
    .footer { padding: 20px 32px; text-align: center; font-size: 12px; color: #999999; border-top: 1px solid #eeeeee; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Purchase Receipt</h1>
    </div>
    <div class="body">
      <p>Dear %s,</p>
      <p>Thank you for your purchase. Here are the details of your order:</p>
      <div class="details">
        <p><strong>Magazine:</strong> %s</p>
        <p><strong>Edition:</strong> Digital</p>
        <p><strong>Quantity:</strong> %d</p>
        <p><strong>Amount:</strong> %s</p>
        <p><strong>Purchase date:</strong> %s</p>
      </div>
      <div class="access">
        <p><strong>Access link:</strong> <a href="%s">%s</a></p>
        <p><strong>Username:</strong> %s</p>
        <p><strong>Password:</strong> %s</p>
      </div>
      <p>Keep these credentials safe. They are your access to the digital edition.</p>
    </div>
    <div class="footer">
      Receipt generated %s by %s.
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(recipientName),
		html.EscapeString(magazineName),
		quantity,
		html.EscapeString(purchaseAmount),
		html.EscapeString(purchaseDate),
		html.EscapeString(access.Link),
		html.EscapeString(access.Link),
		html.EscapeString(access.Username),
		html.EscapeString(access.Password),
		html.EscapeString(receiptDate),
		html.EscapeString(senderName),
	)
}
