package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// PriorIntervals are the day offsets before the earnings date that get a price snapshot.
var PriorIntervals = []int{45, 30, 14, 1}

type Earnings struct {
	ID            uint            `gorm:"primaryKey"`
	StockName     string          `gorm:"not null;index"`
	EarningsDate  datatypes.Date  `gorm:"type:date;not null"`
	ClosePrice    float64         `gorm:"not null"`
	ClosePrior45d *float64        `gorm:"column:close_prior_45d"`
	DatePrior45d  *datatypes.Date `gorm:"column:date_prior_45d;type:date"`
	ClosePrior30d *float64        `gorm:"column:close_prior_30d"`
	DatePrior30d  *datatypes.Date `gorm:"column:date_prior_30d;type:date"`
	ClosePrior14d *float64        `gorm:"column:close_prior_14d"`
	DatePrior14d  *datatypes.Date `gorm:"column:date_prior_14d;type:date"`
	ClosePrior1d  *float64        `gorm:"column:close_prior_1d"`
	DatePrior1d   *datatypes.Date `gorm:"column:date_prior_1d;type:date"`
	UserID        *uint
	User          *User     `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Earnings) TableName() string {
	return "earnings"
}

// PriorSnapshot is the (price, date) pair captured Days before the earnings date.
type PriorSnapshot struct {
	Days  int
	Close *float64
	Date  *time.Time
}

func (e Earnings) Date() time.Time {
	return time.Time(e.EarningsDate)
}

// Priors returns the snapshots in PriorIntervals order.
func (e Earnings) Priors() []PriorSnapshot {
	return []PriorSnapshot{
		{Days: 45, Close: e.ClosePrior45d, Date: dateOrNil(e.DatePrior45d)},
		{Days: 30, Close: e.ClosePrior30d, Date: dateOrNil(e.DatePrior30d)},
		{Days: 14, Close: e.ClosePrior14d, Date: dateOrNil(e.DatePrior14d)},
		{Days: 1, Close: e.ClosePrior1d, Date: dateOrNil(e.DatePrior1d)},
	}
}

// MissingPriorPrice reports whether any prior close is still null.
func (e Earnings) MissingPriorPrice() bool {
	for _, p := range e.Priors() {
		if p.Close == nil {
			return true
		}
	}
	return false
}

func PriorCloseColumn(days int) string {
	return fmt.Sprintf("close_prior_%dd", days)
}

func PriorDateColumn(days int) string {
	return fmt.Sprintf("date_prior_%dd", days)
}

func dateOrNil(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func (e *Earnings) SetPriorClose(days int, price float64) {
	switch days {
	case 45:
		e.ClosePrior45d = &price
	case 30:
		e.ClosePrior30d = &price
	case 14:
		e.ClosePrior14d = &price
	case 1:
		e.ClosePrior1d = &price
	}
}

func (e *Earnings) SetPriorDate(days int, date time.Time) {
	d := datatypes.Date(date)
	switch days {
	case 45:
		e.DatePrior45d = &d
	case 30:
		e.DatePrior30d = &d
	case 14:
		e.DatePrior14d = &d
	case 1:
		e.DatePrior1d = &d
	}
}
