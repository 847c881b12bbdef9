package notification

import (
	"net/url"
	"strings"
	"testing"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.Order {
	return &models.Order{
		OrderNumber:   "EA202610180007",
		TotalAmount:   decimal.NewFromInt(2500),
		PaymentMethod: models.PaymentMobileMoney,
		ShippingAddress: models.ShippingAddress{
			Street: "12 Uhuru St", City: "Arusha", State: "Arusha", ZipCode: "23100", Country: "TZ", Phone: "+255 700 111 222",
		},
		Notes: "Call before delivery",
		Items: []models.OrderItem{
			{Name: "Lamp", Quantity: 2, Price: decimal.NewFromInt(1000), Total: decimal.NewFromInt(2000)},
			{Name: "Mug", Quantity: 1, Price: decimal.NewFromInt(500), Total: decimal.NewFromInt(500)},
		},
	}
}

func TestFormatDefaultTemplate(t *testing.T) {
	msg, err := Format(sampleOrder(), Contact{Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)

	for _, want := range []string{
		"*New order EA202610180007*",
		"1. Lamp x2 = 2000.00",
		"2. Mug x1 = 500.00",
		"*Total:* 2500.00",
		"*Payment:* Mobile money",
		"*Customer:* Asha",
		"*Phone:* +255 700 111 222",
		"*Email:* asha@example.com",
		"*Deliver to:* 12 Uhuru St, Arusha, Arusha, 23100, TZ",
		"*Notes:* Call before delivery",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestFormatOmitsEmptyOptionalLines(t *testing.T) {
	o := sampleOrder()
	o.Notes = ""
	msg, err := Format(o, Contact{Name: "Asha"})
	require.NoError(t, err)

	assert.NotContains(t, msg, "*Notes:*")
	assert.NotContains(t, msg, "*Email:*")
}

func TestFormatIsPure(t *testing.T) {
	o := sampleOrder()
	_, err := Format(o, Contact{})
	require.NoError(t, err)

	assert.Empty(t, o.NotificationMessage)
	assert.False(t, o.NotificationSent)
}

func TestCustomTemplate(t *testing.T) {
	f, err := NewFormatter("{{ .Order.OrderNumber }}: {{ money .Order.TotalAmount }}")
	require.NoError(t, err)

	msg, err := f.Format(sampleOrder(), Contact{})
	require.NoError(t, err)
	assert.Equal(t, "EA202610180007: 2500.00", msg)

	_, err = NewFormatter("{{ .Order.OrderNumber ")
	assert.Error(t, err)
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+255 700-111-222", "Order EA1 & more")

	require.True(t, strings.HasPrefix(link, "https://wa.me/255700111222?text="))
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Order EA1 & more", u.Query().Get("text"))
	assert.NotContains(t, link, "+")
}
