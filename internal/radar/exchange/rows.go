package exchange

import (
	"encoding/json"
	"strings"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"
)

// envelope 上游统一响应结构 {code,msg,data}
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// 上游数字一律为字符串

type TokenRow struct {
	TokenContractAddress string `json:"tokenContractAddress"`
	TokenSymbol          string `json:"tokenSymbol"`
	TokenName            string `json:"tokenName"`
	Decimals             string `json:"decimals"`
	TokenLogoURL         string `json:"tokenLogoUrl,omitempty"`
	ListingTime          string `json:"listingTime,omitempty"`
}

type TickerRow struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
	TokenSymbol          string `json:"tokenSymbol"`
	TokenName            string `json:"tokenName"`
	Price                string `json:"price"`
	Volume24H            string `json:"volume24H"`
	Liquidity            string `json:"liquidity"`
	MarketCap            string `json:"marketCap"`
	Holders              string `json:"holders"`
	TotalSupply          string `json:"totalSupply"`
	PriceChange1H        string `json:"priceChange1H"`
	PriceChange24H       string `json:"priceChange24H"`
	ListingTime          string `json:"listingTime"`
	Time                 string `json:"time"`
}

type TradeRow struct {
	TxHash               string `json:"txHash"`
	Time                 string `json:"time"`
	TokenContractAddress string `json:"tokenContractAddress"`
	Amount               string `json:"amount"`
	Volume               string `json:"volume"` // USD
	Price                string `json:"price"`
	Type                 string `json:"type"`
	UserAddress          string `json:"userAddress"`
}

func (r TokenRow) toModel(chainID string) model.Token {
	return model.Token{
		Address:     r.TokenContractAddress,
		Symbol:      r.TokenSymbol,
		Name:        r.TokenName,
		Decimals:    int(utils.ParseInt(r.Decimals, 18)),
		ChainID:     chainID,
		LogoURL:     r.TokenLogoURL,
		ListingTime: millis(utils.ParseInt(r.ListingTime, 0)),
	}
}

func (r TickerRow) toModel() model.Ticker {
	return model.Ticker{
		Address:        r.TokenContractAddress,
		Symbol:         r.TokenSymbol,
		Name:           r.TokenName,
		PriceUSD:       utils.ParseFloat(r.Price, 0),
		Volume24h:      utils.ParseFloat(r.Volume24H, 0),
		Liquidity:      utils.ParseFloat(r.Liquidity, 0),
		MarketCap:      utils.ParseFloat(r.MarketCap, 0),
		Holders:        utils.ParseInt(r.Holders, 0),
		TotalSupply:    utils.ParseFloat(r.TotalSupply, 0),
		PriceChange1h:  utils.ParseFloat(r.PriceChange1H, 0),
		PriceChange24h: utils.ParseFloat(r.PriceChange24H, 0),
		ListingTime:    millis(utils.ParseInt(r.ListingTime, 0)),
		Timestamp:      millis(utils.ParseInt(r.Time, 0)),
	}
}

func (r TradeRow) toModel() model.Trade {
	return model.Trade{
		TxHash:    r.TxHash,
		Timestamp: millis(utils.ParseInt(r.Time, 0)),
		Token:     r.TokenContractAddress,
		Amount:    utils.ParseFloat(r.Amount, 0),
		AmountUSD: utils.ParseFloat(r.Volume, 0),
		PriceUSD:  utils.ParseFloat(r.Price, 0),
		Type:      model.ParseTradeType(strings.TrimSpace(r.Type)),
		Sender:    r.UserAddress,
	}
}

// millis 上游时间戳有秒也有毫秒，统一为毫秒
func millis(ts int64) int64 {
	if ts <= 0 {
		return 0
	}
	return utils.ToTime(ts).UnixMilli()
}
