package model

import (
	"main/internal/model/enum"
)

// Symbol identifies an instrument. Value type, comparable.
type Symbol struct {
	Ticker       string
	SecurityType enum.SecurityType
	Market       string
}

func NewSymbol(ticker, market string, securityType enum.SecurityType) Symbol {
	return Symbol{
		Ticker:       ticker,
		SecurityType: securityType,
		Market:       market,
	}
}

func (s Symbol) IsEmpty() bool {
	return s.Ticker == ""
}

func (s Symbol) String() string {
	if s.Market == "" {
		return s.Ticker
	}
	return s.Ticker + "." + s.Market
}
