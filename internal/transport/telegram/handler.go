package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storefront-service/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	orderCommandPrefix = "/order_"

	textWelcome       = "Welcome to AwesomeZooShop!"
	textNoOrders      = "You have no orders yet"
	textInvalidFormat = "Invalid command format"
	textNotFound      = "Order not found"
	textFailed        = "Something went wrong, try again later"
	textHelp          = "Commands:\n/start - open the shop\n/myorders - your orders\n/order_<id> - order details"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	bot     botSender
	orders  service.OrderService
	shopURL string
	log     *zap.Logger
}

func NewHandler(bot botSender, orders service.OrderService, shopURL string, log *zap.Logger) *Handler {
	return &Handler{
		bot:     bot,
		orders:  orders,
		shopURL: shopURL,
		log:     log,
	}
}

// Run обрабатывает апдейты до закрытия канала или отмены ctx
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			h.log.Info("telegram handler stopped")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	recipient := strconv.FormatInt(chatID, 10)
	text := strings.TrimSpace(msg.Text)

	var reply tgbotapi.MessageConfig
	switch {
	case msg.Command() == "start":
		reply = h.start(chatID)
	case msg.Command() == "myorders":
		reply = h.myOrders(ctx, chatID, recipient)
	case strings.HasPrefix(text, orderCommandPrefix):
		reply = h.orderDetail(ctx, chatID, recipient, text)
	default:
		reply = tgbotapi.NewMessage(chatID, textHelp)
	}

	if _, err := h.bot.Send(reply); err != nil {
		h.log.Warn("telegram reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) start(chatID int64) tgbotapi.MessageConfig {
	reply := tgbotapi.NewMessage(chatID, textWelcome)
	if h.shopURL == "" {
		return reply
	}
	link := fmt.Sprintf("%s?tgid=%d", h.shopURL, chatID)
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🛍 Shop", link)),
	)
	return reply
}

func (h *Handler) myOrders(ctx context.Context, chatID int64, recipient string) tgbotapi.MessageConfig {
	orders, err := h.orders.ListOrders(ctx, recipient)
	if err != nil {
		h.log.Error("list orders failed", zap.String("recipient_id", recipient), zap.Error(err))
		return tgbotapi.NewMessage(chatID, textFailed)
	}
	if len(orders) == 0 {
		return tgbotapi.NewMessage(chatID, textNoOrders)
	}

	parts := []string{"📋 *Your orders:*"}
	for _, o := range orders {
		parts = append(parts, fmt.Sprintf(
			"%s *Order #%d*\n📅 *Date:* %s\n📌 *Status:* %s\n💰 *Total:* %s UAH\nDetails: %s",
			o.StatusIcon, o.ID,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.StatusLabel,
			o.Total.StringFixed(2),
			escape(fmt.Sprintf("%s%d", orderCommandPrefix, o.ID)),
		))
	}
	reply := tgbotapi.NewMessage(chatID, strings.Join(parts, "\n\n"))
	reply.ParseMode = tgbotapi.ModeMarkdown
	return reply
}

func (h *Handler) orderDetail(ctx context.Context, chatID int64, recipient, text string) tgbotapi.MessageConfig {
	raw := strings.TrimPrefix(text, orderCommandPrefix)
	// в группах команда приходит как /order_12@botname
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return tgbotapi.NewMessage(chatID, textInvalidFormat)
	}

	d, err := h.orders.GetOrderDetail(ctx, id, recipient)
	if errors.Is(err, service.ErrOrderNotFound) {
		return tgbotapi.NewMessage(chatID, textNotFound)
	}
	if err != nil {
		h.log.Error("get order detail failed", zap.Uint64("order_id", id), zap.Error(err))
		return tgbotapi.NewMessage(chatID, textFailed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Order #%d*\n\n", d.StatusIcon, d.ID)
	for _, it := range d.Items {
		fmt.Fprintf(&b, "▫ %s - %d × %s UAH = %s UAH\n",
			escape(it.Name), it.Quantity, it.Price.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\n🏙 *City:* %s\n", escape(d.City))
	fmt.Fprintf(&b, "🏤 *Department:* %s\n", escape(d.Department))
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", escape(d.Phone))
	fmt.Fprintf(&b, "📅 *Date:* %s\n", d.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "📌 *Status:* %s\n", d.StatusLabel)
	fmt.Fprintf(&b, "💰 *Total:* %s UAH", d.Total.StringFixed(2))

	reply := tgbotapi.NewMessage(chatID, b.String())
	reply.ParseMode = tgbotapi.ModeMarkdown
	return reply
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
