package view

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vaultScope/internal/model"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)

	grouping = message.NewPrinter(language.English)
)

// USDT formats a raw amount as "12.34 USDT".
func USDT(raw *big.Int) string {
	return model.FromRaw(raw).StringFixed(2) + " USDT"
}

// Amount formats a decimal with a fixed number of places and the USDT suffix.
func Amount(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + " USDT"
}

// ShortAddress renders "0x12...abcd".
func ShortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:4] + "..." + hex[len(hex)-4:]
}

// Compact renders large values with K/M/B suffixes; smaller values get thousands separators.
func Compact(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(2) + "K"
	}
	return Grouped(d)
}

// Grouped renders two decimals with comma thousands separators.
func Grouped(d decimal.Decimal) string {
	return grouping.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// TVL renders the lending pool liquidity as "$1.23M".
func TVL(raw *big.Int) string {
	return "$" + Compact(model.FromRaw(raw))
}
