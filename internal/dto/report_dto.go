package dto

import (
	"time"

	"messpos/internal/report"

	"github.com/shopspring/decimal"
)

// ReportQuery is bound from the query string of the /v1/reports endpoints.
type ReportQuery struct {
	Period  string `form:"period"  validate:"omitempty,oneof=today week month year custom"`
	Start   string `form:"start"`
	End     string `form:"end"`
	Session string `form:"session" validate:"omitempty,oneof=morning afternoon night"`
}

// ReportRow is one line of the orders table of a report.
type ReportRow struct {
	BillNo        string          `json:"bill_no"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Session       string          `json:"session"`
	OrderType     string          `json:"order_type"`
	TotalItems    int             `json:"total_items"`
	Total         decimal.Decimal `json:"total"`
	CashPayment   decimal.Decimal `json:"cash_payment"`
	OnlinePayment decimal.Decimal `json:"online_payment"`
	Payment       string          `json:"payment"`
}

type ReportResponse struct {
	Period    string              `json:"period"`
	Start     *time.Time          `json:"start"`
	End       *time.Time          `json:"end"`
	Session   *string             `json:"session"`
	Stats     report.PeriodStats  `json:"stats"`
	Orders    []ReportRow         `json:"orders"`
	ItemSales []report.ItemSales  `json:"item_sales"`
	Trend     []report.TrendPoint `json:"trend"`
}

type SummaryResponse struct {
	Today          report.PeriodStats `json:"today"`
	Week           report.PeriodStats `json:"week"`
	Month          report.PeriodStats `json:"month"`
	Year           report.PeriodStats `json:"year"`
	TodayItemSales []report.ItemSales `json:"today_item_sales"`
}
