package server

import (
	"github.com/dchamindu826/Rider-App/internal/alert"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/utils"
	"github.com/shopspring/decimal"
)

type orderView struct {
	model.Order
	Earning        decimal.Decimal `json:"earning"`
	EarningText    string          `json:"earning_text"`
	GrandTotalText string          `json:"grand_total_text"`
	Destination    *model.GeoPoint `json:"destination,omitempty"`
}

func newOrderView(o model.Order) orderView {
	return orderView{
		Order:          o,
		Earning:        o.Earning(),
		EarningText:    utils.FormatLKR(o.Earning()),
		GrandTotalText: utils.FormatLKR(o.GrandTotal()),
		Destination:    o.Destination(),
	}
}

func newOrderViews(orders []model.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	return views
}

type dashboardView struct {
	Online                bool            `json:"online"`
	WalletBalance         decimal.Decimal `json:"wallet_balance"`
	WalletText            string          `json:"wallet_text"`
	PendingOrders         int             `json:"pending_orders"`
	RecentDeliveries      []orderView     `json:"recent_deliveries"`
	HasActiveOrder        bool            `json:"has_active_order"`
	HasUnreadAnnouncement bool            `json:"has_unread_announcement"`
}

type earningsView struct {
	WalletBalance decimal.Decimal           `json:"wallet_balance"`
	WalletText    string                    `json:"wallet_text"`
	Withdrawals   []model.WithdrawalRequest `json:"withdrawals"`
	Totals        model.WithdrawalTotals    `json:"totals"`
}

type completionView struct {
	Order         orderView        `json:"order"`
	WalletBalance *decimal.Decimal `json:"wallet_balance,omitempty"`
}

type alertView struct {
	State     alert.State `json:"state"`
	Progress  float64     `json:"progress"`
	LastEvent *AlertEvent `json:"last_event,omitempty"`
}

type locationView struct {
	Position  model.GeoPoint `json:"position"`
	IsDefault bool           `json:"is_default"`
	Sent      bool           `json:"sent"`
}
