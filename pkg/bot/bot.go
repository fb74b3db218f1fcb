package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"taxidispatch/config"
	"taxidispatch/pkg/logger"
	"taxidispatch/pkg/models"
	"taxidispatch/storage"
)

// Notifier broadcasts order lifecycle events to the shared driver channel.
// Delivery is best effort: failures are logged, never surfaced to the caller.
type Notifier struct {
	bot       *tele.Bot
	channelID int64
	stg       storage.IStorage
	dispatch  *DispatchStore
	log       logger.ILogger
}

func NewNotifier(cfg config.Config, stg storage.IStorage, dispatch *DispatchStore, log logger.ILogger) (*Notifier, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Notifier{
		bot:       b,
		channelID: cfg.DriverChannelID,
		stg:       stg,
		dispatch:  dispatch,
		log:       log,
	}, nil
}

func (n *Notifier) OrderCreated(ctx context.Context, order *models.Order) {
	if n.dispatch != nil {
		sent, err := n.dispatch.AlreadyDispatched(ctx, order.ID)
		if err != nil {
			n.log.Error("dispatch record lookup failed", logger.Int64("order_id", order.ID), logger.Error(err))
		} else if sent {
			return
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>🚕 New order #%d</b>\n", order.ID)
	fmt.Fprintf(&sb, "📍 %s → %s\n", n.districtName(ctx, order.FromDistrictID), n.districtName(ctx, order.ToDistrictID))
	fmt.Fprintf(&sb, "🕒 %s\n", order.PickupTime.Format("02.01.2006 15:04"))
	if order.OrderType == models.OrderTypeLuggage {
		sb.WriteString("📦 Luggage delivery\n")
	} else {
		fmt.Fprintf(&sb, "👥 %d passenger(s), %s\n", order.Seats, order.OrderType)
	}
	fmt.Fprintf(&sb, "💰 %d so'm", order.TotalCost)

	n.send(sb.String())

	if n.dispatch != nil {
		if err := n.dispatch.RecordDispatch(ctx, order.ID); err != nil {
			n.log.Error("dispatch record write failed", logger.Int64("order_id", order.ID), logger.Error(err))
		}
	}
}

func (n *Notifier) OrderAccepted(ctx context.Context, order *models.Order) {
	if order.DriverID == nil {
		return
	}
	n.send(fmt.Sprintf("✅ Order #%d was taken by driver %d.", order.ID, *order.DriverID))
}

func (n *Notifier) OrderCompleted(ctx context.Context, order *models.Order) {
	n.send(fmt.Sprintf("🏁 Order #%d completed.", order.ID))
}

func (n *Notifier) OrderCanceled(ctx context.Context, order *models.Order) {
	n.send(fmt.Sprintf("❌ Order #%d was canceled.", order.ID))
}

func (n *Notifier) send(text string) {
	if _, err := n.bot.Send(tele.ChatID(n.channelID), text, tele.ModeHTML); err != nil {
		n.log.Error("driver channel send failed", logger.Error(err))
	}
}

func (n *Notifier) districtName(ctx context.Context, id int64) string {
	district, err := n.stg.District().GetByID(ctx, id)
	if err != nil {
		return fmt.Sprintf("district %d", id)
	}
	return district.Name
}
