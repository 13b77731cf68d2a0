package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdings_backend/internal/feature/holdings/domain"
)

func TestRegistry_Defaults(t *testing.T) {
	t.Parallel()

	r := New(Defaults())

	assert.Equal(t, []string{"PCEF", "YYY"}, r.Tickers())
	assert.Equal(t, []string{"PCEF"}, r.SourceLimited())

	pcef, err := r.Get("pcef")
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, pcef.Kind)

	yyy, err := r.Get(" YYY ")
	require.NoError(t, err)
	assert.Equal(t, SourceScraped, yyy.Kind)
	assert.NotEmpty(t, yyy.FeedURL)
}

func TestRegistry_GetUnsupported(t *testing.T) {
	t.Parallel()

	r := New(Defaults())
	_, err := r.Get("ZZZ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFund))
	assert.Contains(t, err.Error(), "PCEF, YYY")
}

func TestNew_InfersKind(t *testing.T) {
	t.Parallel()

	r := New([]FundConfig{
		{Ticker: "aaa", APIURL: "https://example.com/api"},
		{Ticker: "bbb", HoldingsURL: "https://example.com/bbb"},
		{Ticker: "  "},
	})

	assert.Equal(t, []string{"AAA", "BBB"}, r.Tickers())
	a, _ := r.Get("AAA")
	b, _ := r.Get("BBB")
	assert.Equal(t, SourceAPI, a.Kind)
	assert.Equal(t, SourceScraped, b.Kind)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "funds.yaml")
	content := `
funds:
  - ticker: qqqx
    name: Sample Fund
    holdings_url: https://example.com/qqqx
    profile_url: https://example.com/qqqx/profile
  - ticker: YYY
    name: Overridden
    download_csv_url: https://example.com/yyy.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"PCEF", "QQQX", "YYY"}, r.Tickers())
	yyy, err := r.Get("YYY")
	require.NoError(t, err)
	assert.Equal(t, "Overridden", yyy.Name)
	assert.Equal(t, "https://example.com/yyy.csv", yyy.DirectCSVURL)

	q, err := r.Get("QQQX")
	require.NoError(t, err)
	assert.Equal(t, SourceScraped, q.Kind)
	assert.Equal(t, "https://example.com/qqqx/profile", q.ProfileURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("funds: [unterminated"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	r, err := Load("")
	require.NoError(t, err)
	assert.Len(t, r.Tickers(), 2)
}
