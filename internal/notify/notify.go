package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrDeliveryFailed = errors.New("notification delivery failed")

type Format int

const (
	FormatPlain Format = iota
	FormatMarkdown
)

// Transport доставляет готовый текст получателю.
type Transport interface {
	SendMessage(ctx context.Context, recipientID, text string, format Format) error
}

type SummaryLine struct {
	Name     string
	Quantity uint32
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

// OrderSummary: всё, что нужно для текста уведомления о заказе.
type OrderSummary struct {
	OrderID       uint64
	Lines         []SummaryLine
	Total         decimal.Decimal
	City          string
	Department    string
	Phone         string
	PaymentMethod string
	StatusLabel   string
	CreatedAt     time.Time
}

var paymentLabels = map[string]string{
	"cash_on_delivery": "cash on delivery",
	"card_online":      "card online",
}

// markdownEscaper экранирует спецсимволы legacy Markdown Telegram.
var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

var funcs = template.FuncMap{
	"md":    markdownEscaper.Replace,
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"payment": func(p string) string {
		if l, ok := paymentLabels[p]; ok {
			return l
		}
		return p
	},
}

const orderTemplate = `*Order #{{.OrderID}} placed*
{{range .Lines}}
• {{md .Name}}: {{.Quantity}} x {{money .Price}} = {{money .Subtotal}} UAH{{end}}

*Total: {{money .Total}} UAH*
Delivery: {{md .City}}, {{md .Department}}
Phone: {{md .Phone}}
Payment: {{payment .PaymentMethod}}
Status: {{.StatusLabel}}

All orders: /myorders`

var orderTmpl = template.Must(template.New("order").Funcs(funcs).Parse(orderTemplate))

func Render(s OrderSummary) (string, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type Gateway struct {
	transport Transport
	log       *zap.Logger
}

func NewGateway(transport Transport, log *zap.Logger) *Gateway {
	return &Gateway{transport: transport, log: log}
}

// Notify renders the summary and sends it. Transport errors are wrapped
// in ErrDeliveryFailed.
func (g *Gateway) Notify(ctx context.Context, recipientID string, s OrderSummary) error {
	text, err := Render(s)
	if err != nil {
		return fmt.Errorf("render order summary: %w", err)
	}
	if err := g.transport.SendMessage(ctx, recipientID, text, FormatMarkdown); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	g.log.Info("order notification sent", zap.Uint64("order_id", s.OrderID), zap.String("recipient_id", recipientID))
	return nil
}
