package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
)

var statusEmoji = map[model.OrderStatus]string{
	model.OrderStatusPending:   "⏳",
	model.OrderStatusConfirmed: "✅",
	model.OrderStatusPreparing: "👨‍🍳",
	model.OrderStatusMissing:   "⚠️",
	model.OrderStatusReady:     "🛍️",
	model.OrderStatusDelivered: "✅",
	model.OrderStatusCancelled: "❌",
}

// StatusUpdateMessage builds the customer-facing text for a status change.
// The ready message branches on delivery vs pickup.
func StatusUpdateMessage(order *model.Order) string {
	emoji := statusEmoji[order.Status]

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Order update</b>\n\n", emoji)
	fmt.Fprintf(&b, "🔢 Order #: <code>%s</code>\n", order.OrderNumber)
	fmt.Fprintf(&b, "%s Status: <b>%s</b>\n", emoji, titleWords(string(order.Status)))

	switch order.Status {
	case model.OrderStatusConfirmed:
		b.WriteString("\nYour order has been confirmed and will be prepared shortly.")
	case model.OrderStatusPreparing:
		b.WriteString("\nYour order is being prepared.")
	case model.OrderStatusMissing:
		b.WriteString("\nSome items in your order are currently unavailable. We will contact you shortly.")
	case model.OrderStatusReady:
		if order.DeliveryMethod == model.DeliveryMethodDelivery {
			b.WriteString("\nYour order is ready and on its way to:\n")
			fmt.Fprintf(&b, "📍 %s", order.DeliveryAddress)
		} else {
			b.WriteString("\nYour order is ready for pickup at the shop.")
		}
	case model.OrderStatusDelivered:
		b.WriteString("\nYour order has been delivered. Enjoy!")
	case model.OrderStatusCancelled:
		b.WriteString("\nYour order has been cancelled. Contact us if this is unexpected.")
	}

	return b.String()
}

// NewOrderMessage builds the admin-facing text for a freshly placed order.
func NewOrderMessage(order *model.Order, customer *model.Customer) string {
	deliveryEmoji := "🏪"
	if order.DeliveryMethod == model.DeliveryMethodDelivery {
		deliveryEmoji = "🚚"
	}

	var b strings.Builder
	b.WriteString("🆕 <b>New order received</b>\n\n")
	fmt.Fprintf(&b, "🔢 Order #: <code>%s</code>\n", order.OrderNumber)
	fmt.Fprintf(&b, "👤 Customer: <b>%s</b>\n", customer.FullName)
	fmt.Fprintf(&b, "📞 Phone: <code>%s</code>\n\n", customer.PhoneNumber)

	b.WriteString("🛒 <b>Items:</b>")
	for _, item := range order.Items {
		options := formatOptions(item.Options)
		fmt.Fprintf(&b, "\n• %dx %s%s - %.2f", item.Quantity, item.ProductName, options, item.TotalPrice)
	}

	fmt.Fprintf(&b, "\n\n%s <b>Delivery:</b> %s", deliveryEmoji, titleWords(string(order.DeliveryMethod)))
	if order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "\n📍 Address: %s", order.DeliveryAddress)
	}
	fmt.Fprintf(&b, "\n\n💳 <b>Total:</b> %.2f", order.Total)

	return b.String()
}

func formatOptions(options model.JSONMap) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", titleWords(strings.ReplaceAll(k, "_", " ")), options[k]))
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
}

// titleWords capitalizes the first letter of every space-separated word.
// Status and option keys are ASCII snake_case, so no locale handling needed.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
