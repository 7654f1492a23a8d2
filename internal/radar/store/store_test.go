package store

import (
	"os"
	"strings"
	"testing"

	"token-radar/internal/radar/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenListRoundTrip(t *testing.T) {
	s := New(t.TempDir(), zap.NewNop())

	tokens, err := s.LoadTokenList()
	require.NoError(t, err)
	assert.Empty(t, tokens)

	want := []model.Token{
		{Address: "0xAbC", Symbol: "PEPE", Name: "Pepe", Decimals: 18, ChainID: "196"},
		{Address: "0xDeF", Symbol: "DOGE", Name: "Doge", Decimals: 9, ChainID: "196", ListingTime: 1700000000000},
	}
	require.NoError(t, s.SaveJSON(TokenListFile, want))

	got, err := s.LoadTokenList()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCorruptFile(t *testing.T) {
	s := New(t.TempDir(), zap.NewNop())
	require.NoError(t, os.WriteFile(s.Path(TokenListFile), []byte("{not json"), 0644))

	_, err := s.LoadTokenList()
	assert.Error(t, err)
}

func TestSaveCSV(t *testing.T) {
	s := New(t.TempDir(), zap.NewNop())
	rows := []model.Recommendation{
		{Address: "0x1", Symbol: "A", Name: "Alpha", Score: 81.5, Recommendation: model.RatingStrongBuy, Reasons: []string{"high volume", "deep liquidity"}, Source: model.SourceLive},
	}
	require.NoError(t, SaveCSV(s, RecommendationsCSV, rows, RecommendationColumns))

	b, err := os.ReadFile(s.Path(RecommendationsCSV))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "address,symbol,name,score,recommendation,reasons,source", lines[0])
	assert.Equal(t, "0x1,A,Alpha,81.5,Strong Buy,high volume; deep liquidity,live", lines[1])
}
