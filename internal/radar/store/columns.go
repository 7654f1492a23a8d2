package store

import (
	"strconv"
	"strings"

	"token-radar/internal/radar/model"
	"token-radar/pkg/exporter"
)

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var TokenColumns = []exporter.Column[model.Token]{
	{Header: "address", Value: func(t model.Token) string { return t.Address }},
	{Header: "symbol", Value: func(t model.Token) string { return t.Symbol }},
	{Header: "name", Value: func(t model.Token) string { return t.Name }},
	{Header: "decimals", Value: func(t model.Token) string { return strconv.Itoa(t.Decimals) }},
	{Header: "chainId", Value: func(t model.Token) string { return t.ChainID }},
	{Header: "listingTime", Value: func(t model.Token) string { return strconv.FormatInt(t.ListingTime, 10) }},
}

var TrendingColumns = []exporter.Column[model.TrendingToken]{
	{Header: "address", Value: func(t model.TrendingToken) string { return t.Address }},
	{Header: "symbol", Value: func(t model.TrendingToken) string { return t.Symbol }},
	{Header: "name", Value: func(t model.TrendingToken) string { return t.Name }},
	{Header: "priceUSD", Value: func(t model.TrendingToken) string { return f(t.PriceUSD) }},
	{Header: "volume24h", Value: func(t model.TrendingToken) string { return f(t.Volume24h) }},
	{Header: "liquidity", Value: func(t model.TrendingToken) string { return f(t.Liquidity) }},
	{Header: "priceChange24h", Value: func(t model.TrendingToken) string { return f(t.PriceChange24h) }},
	{Header: "ageInDays", Value: func(t model.TrendingToken) string { return f(t.AgeInDays) }},
	{Header: "trendingScore", Value: func(t model.TrendingToken) string { return f(t.TrendingScore) }},
	{Header: "origin", Value: func(t model.TrendingToken) string { return string(t.Origin) }},
}

var ComparisonColumns = []exporter.Column[model.ComparisonRow]{
	{Header: "address", Value: func(r model.ComparisonRow) string { return r.Address }},
	{Header: "symbol", Value: func(r model.ComparisonRow) string { return r.Symbol }},
	{Header: "name", Value: func(r model.ComparisonRow) string { return r.Name }},
	{Header: "priceUSD", Value: func(r model.ComparisonRow) string { return f(r.PriceUSD) }},
	{Header: "volume24h", Value: func(r model.ComparisonRow) string { return f(r.Volume24h) }},
	{Header: "liquidity", Value: func(r model.ComparisonRow) string { return f(r.Liquidity) }},
	{Header: "holders", Value: func(r model.ComparisonRow) string { return strconv.FormatInt(r.Holders, 10) }},
	{Header: "marketCap", Value: func(r model.ComparisonRow) string { return f(r.MarketCap) }},
	{Header: "priceChange24h", Value: func(r model.ComparisonRow) string { return f(r.PriceChange24h) }},
	{Header: "volatility", Value: func(r model.ComparisonRow) string { return f(r.Volatility) }},
	{Header: "holderGrowthRate", Value: func(r model.ComparisonRow) string { return f(r.HolderGrowthRate) }},
	{Header: "volumeLiquidityRatio", Value: func(r model.ComparisonRow) string { return f(r.VolumeLiquidityRatio) }},
	{Header: "score", Value: func(r model.ComparisonRow) string { return f(r.Score) }},
}

var RecommendationColumns = []exporter.Column[model.Recommendation]{
	{Header: "address", Value: func(r model.Recommendation) string { return r.Address }},
	{Header: "symbol", Value: func(r model.Recommendation) string { return r.Symbol }},
	{Header: "name", Value: func(r model.Recommendation) string { return r.Name }},
	{Header: "score", Value: func(r model.Recommendation) string { return f(r.Score) }},
	{Header: "recommendation", Value: func(r model.Recommendation) string { return string(r.Recommendation) }},
	{Header: "reasons", Value: func(r model.Recommendation) string { return strings.Join(r.Reasons, "; ") }},
	{Header: "source", Value: func(r model.Recommendation) string { return string(r.Source) }},
}

var MetricsColumns = []exporter.Column[model.TokenMetrics]{
	{Header: "address", Value: func(m model.TokenMetrics) string { return m.Address }},
	{Header: "symbol", Value: func(m model.TokenMetrics) string { return m.Symbol }},
	{Header: "name", Value: func(m model.TokenMetrics) string { return m.Name }},
	{Header: "priceUSD", Value: func(m model.TokenMetrics) string { return f(m.PriceUSD) }},
	{Header: "volume24h", Value: func(m model.TokenMetrics) string { return f(m.Volume24h) }},
	{Header: "liquidity", Value: func(m model.TokenMetrics) string { return f(m.Liquidity) }},
	{Header: "holders", Value: func(m model.TokenMetrics) string { return strconv.FormatInt(m.Holders, 10) }},
	{Header: "marketCap", Value: func(m model.TokenMetrics) string { return f(m.MarketCap) }},
	{Header: "priceChange24h", Value: func(m model.TokenMetrics) string { return f(m.PriceChange24h) }},
	{Header: "volatility", Value: func(m model.TokenMetrics) string { return f(m.Derived.Volatility) }},
	{Header: "source", Value: func(m model.TokenMetrics) string { return string(m.Source) }},
}
