package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"boltform_back_end/internal/models"
)

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"lineTotal": func(l models.CartLine) float64 {
		return l.Price * float64(l.Quantity)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order confirmation</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Thanks for your order, {{.Name}}!</h2>
		<p>Order <strong>{{.OrderID}}</strong> is being processed.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Product</th>
					<th style="padding: 10px; text-align: left;">Qty</th>
					<th style="padding: 10px; text-align: left;">Price</th>
					<th style="padding: 10px; text-align: left;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{range .Items}}
				<tr>
					<td style="padding: 10px;">{{.Title}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{money .Price}}</td>
					<td style="padding: 10px;">{{money (lineTotal .)}}</td>
				</tr>
			{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">{{money .Total}}</td>
				</tr>
			</tfoot>
		</table>
		{{if .QR}}<p>Scan to track your order:</p><img src="{{.QR}}" alt="tracking QR" width="160" height="160">{{end}}
		<p style="margin-top: 30px; color: #555;">The Boltform team</p>
	</div>
</body>
</html>`))

// RenderOrderConfirmation renders the confirmation body. trackingURL may be
// empty, in which case no QR code is embedded.
func RenderOrderConfirmation(order models.Order, name, trackingURL string) (string, error) {
	data := struct {
		Name    string
		OrderID string
		Items   []models.CartLine
		Total   float64
		QR      template.URL
	}{
		Name:    name,
		OrderID: order.ID.Hex(),
		Items:   order.Items,
		Total:   order.Total,
	}
	if data.Name == "" {
		data.Name = "customer"
	}

	if trackingURL != "" {
		qr, err := GenerateTrackingQR(trackingURL)
		if err != nil {
			return "", fmt.Errorf("tracking qr: %w", err)
		}
		// data URIs are rejected by html/template unless marked safe
		data.QR = template.URL(qr)
	}

	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendOrderConfirmation renders and mails the confirmation for order.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, to, name string, order models.Order, baseURL string) error {
	trackingURL := ""
	if baseURL != "" {
		trackingURL = strings.TrimRight(baseURL, "/") + "/orders/" + order.ID.Hex()
	}

	body, err := RenderOrderConfirmation(order, name, trackingURL)
	if err != nil {
		log.Printf("❌ Order e-mail template: %v", err)
		return err
	}

	if err := m.Send(ctx, to, "✅ Order confirmed - Boltform", body); err != nil {
		log.Printf("❌ Order e-mail to %s: %v", to, err)
		return err
	}
	log.Printf("📧 Order confirmation sent: %s (order: %s)", to, order.ID.Hex())
	return nil
}
