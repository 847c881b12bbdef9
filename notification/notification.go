// Package notification renders orders into chat messages that customers relay
// to the store by hand.
package notification

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/junaidrashid-git/storefront-api/models"
)

// DefaultTemplate is the WhatsApp order message.
const DefaultTemplate = `*New order {{ .Order.OrderNumber }}*
{{ range $i, $it := .Order.Items }}{{ inc $i }}. {{ $it.Name }} x{{ $it.Quantity }} = {{ money $it.Total }}
{{ end }}
*Total:* {{ money .Order.TotalAmount }}
*Payment:* {{ .Order.PaymentMethod.Label }}

*Customer:* {{ .Contact.Name }}
*Phone:* {{ .Order.ShippingAddress.Phone }}
{{- if .Contact.Email }}
*Email:* {{ .Contact.Email }}{{ end }}
*Deliver to:* {{ .Order.ShippingAddress }}
{{- if .Order.Notes }}

*Notes:* {{ .Order.Notes }}{{ end }}`

// Contact is who placed the order.
type Contact struct {
	Name  string
	Email string
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"money": func(v interface{ StringFixed(int32) string }) string {
		return v.StringFixed(2)
	},
}

// Formatter renders orders with one parsed template.
type Formatter struct {
	tmpl *template.Template
}

func NewFormatter(text string) (*Formatter, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	t, err := template.New("order").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse notification template: %w", err)
	}
	return &Formatter{tmpl: t}, nil
}

// Format is a pure rendering of the order; it does not touch the order.
func (f *Formatter) Format(order *models.Order, contact Contact) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Order   *models.Order
		Contact Contact
	}{order, contact}
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render order %s: %w", order.OrderNumber, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Format renders with the default template.
func Format(order *models.Order, contact Contact) (string, error) {
	f, err := NewFormatter(DefaultTemplate)
	if err != nil {
		return "", err
	}
	return f.Format(order, contact)
}

// WhatsAppLink builds a click-to-chat URL for phone with the message prefilled.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
