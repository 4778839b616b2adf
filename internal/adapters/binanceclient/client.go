package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

// Client implements the ports.MarketDataProvider and ports.AccountService
// interfaces using the go-binance library. Prices cross the boundary as
// the exchange's decimal strings and are parsed straight into decimals,
// so no binary floating point ever touches them.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	quoteAsset    string
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	QuoteAsset string // Asset the balance is reported in (e.g., "USDT")
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}
	quote := cfg.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}

	futures.UseTestnet = cfg.UseTestnet
	return &Client{
		futuresClient: futures.NewClient(cfg.APIKey, cfg.SecretKey),
		logger:        cfg.Logger,
		quoteAsset:    quote,
	}, nil
}

// GetBars retrieves the most recent closed bars for a symbol, oldest first.
func (c *Client) GetBars(ctx context.Context, symbol, interval string, limit int) ([]*domain.PriceBar, error) {
	op := "GetBars"
	klines, err := c.futuresClient.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	bars := make([]*domain.PriceBar, 0, len(klines))
	for _, k := range klines {
		bar, err := translateKline(k, symbol)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate kline: %w", err), op)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// GetPrice retrieves the current mark price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	op := "GetPrice"
	tickers, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		err := fmt.Errorf("no price data returned for symbol %s", symbol)
		return decimal.Zero, c.handleError(ctx, err, op)
	}

	price, err := decimal.NewFromString(tickers[0].MarkPrice)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].MarkPrice, err)
		return decimal.Zero, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	op := "GetServerTime"
	serverTimeMillis, err := c.futuresClient.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, c.handleError(ctx, err, op)
	}
	return time.UnixMilli(serverTimeMillis), nil
}

// GetBalance retrieves the available balance for the configured quote asset.
func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	op := "GetBalance"
	balances, err := c.futuresClient.NewGetBalanceService().Do(ctx)
	if err != nil {
		return decimal.Zero, c.handleError(ctx, err, op)
	}
	for _, bal := range balances {
		if bal.Asset != c.quoteAsset {
			continue
		}
		balance, err := decimal.NewFromString(bal.AvailableBalance)
		if err != nil {
			parseErr := fmt.Errorf("could not parse balance '%s' for asset %s: %w", bal.AvailableBalance, c.quoteAsset, err)
			return decimal.Zero, c.handleError(ctx, parseErr, op)
		}
		return balance, nil
	}
	err = fmt.Errorf("%w: no balance entry for asset %s", ports.ErrNotFound, c.quoteAsset)
	c.logger.Error(ctx, err, "Balance lookup failed", map[string]interface{}{"operation": op})
	return decimal.Zero, err
}

func translateKline(k *futures.Kline, symbol string) (*domain.PriceBar, error) {
	if k == nil {
		return nil, errors.New("received nil kline")
	}
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", k.Open, err)
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", k.High, err)
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", k.Low, err)
	}
	cls, err := decimal.NewFromString(k.Close)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", k.Close, err)
	}
	vol, err := decimal.NewFromString(k.Volume)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", k.Volume, err)
	}

	return &domain.PriceBar{
		Symbol:    symbol,
		OpenTime:  time.UnixMilli(k.OpenTime),
		CloseTime: time.UnixMilli(k.CloseTime),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}

// handleError maps Binance API errors onto the standard error taxonomy
// and logs the original error with its diagnostic fields.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130:
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrExchangeUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
}
