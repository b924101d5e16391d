// Package http is the echo delivery layer for the swap aggregator: POST
// /quote plus the pool/token/health read endpoints. Grounded on
// router/delivery/http/router_handler.go's handler-struct shape
// (deferred error-to-JSON translation, domain.StatusCode dispatch), with
// OpenTelemetry spans dropped since this service carries structured
// logging instead of tracing.
package http

import (
	"context"
	"encoding/base64"
	"math/big"
	"net/http"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/group"
	"github.com/voinetwork/swaprouter/log"
	"github.com/voinetwork/swaprouter/router/usecase"
)

// GroupBuilder assembles the atomic transaction group for a planned swap;
// satisfied by *group.Builder.
type GroupBuilder interface {
	Build(ctx context.Context, plan domain.PlannedSwap, tokens []domain.TokenId, address string) (group.Result, error)
}

// Handler serves the HTTP surface over a RouterUsecase, a PoolCatalog, and
// a GroupBuilder.
type Handler struct {
	router  *usecase.RouterUsecase
	catalog domain.PoolCatalog
	builder GroupBuilder
	logger  log.Logger
}

// NewHandler registers every route this service exposes onto e.
func NewHandler(e *echo.Echo, router *usecase.RouterUsecase, catalog domain.PoolCatalog, builder GroupBuilder, logger log.Logger) {
	h := &Handler{router: router, catalog: catalog, builder: builder, logger: logger}

	e.POST("/quote", h.PostQuote)
	e.GET("/pool/:poolId", h.GetPool)
	e.GET("/config/pools", h.GetConfigPools)
	e.GET("/config/tokens", h.GetConfigTokens)
	e.GET("/health", h.GetHealth)
}

// quoteRequestBody is the wire shape of POST /quote.
type quoteRequestBody struct {
	Address           string  `json:"address"`
	InputToken        string  `json:"inputToken"`
	OutputToken       string  `json:"outputToken"`
	Amount            string  `json:"amount"`
	SlippageTolerance float64 `json:"slippageTolerance"`
	PoolId            string  `json:"poolId"`
	Dex               string  `json:"dex"`
}

type quoteResponseBody struct {
	Quote               quoteDetail          `json:"quote"`
	UnsignedTransactions []string            `json:"unsignedTransactions"`
	Route               routeDetail          `json:"route"`
	PoolId              *string              `json:"poolId"`
	PlatformFee         *platformFeeDetail   `json:"platformFee,omitempty"`
	Error               string               `json:"error,omitempty"`
}

type quoteDetail struct {
	InputAmount        string  `json:"inputAmount"`
	OutputAmount       string  `json:"outputAmount"`
	MinimumOutputAmount string  `json:"minimumOutputAmount"`
	Rate               string  `json:"rate"`
	PriceImpact        float64 `json:"priceImpact"`
	NetworkFee         uint64  `json:"networkFee"`
}

type routeDetail struct {
	Type  string          `json:"type"`
	Hops  []hopDetail     `json:"hops,omitempty"`
	Pools []string        `json:"pools,omitempty"`
}

type hopDetail struct {
	Pools []string `json:"pools"`
}

type platformFeeDetail struct {
	Gain       string `json:"gain"`
	FeeAmount  string `json:"feeAmount"`
	FeeBps     uint32 `json:"feeBps"`
	FeeAddress string `json:"feeAddress"`
	Applied    bool   `json:"applied"`
}

// PostQuote implements POST /quote.
func (h *Handler) PostQuote(c echo.Context) (err error) {
	ctx := c.Request().Context()

	defer func() {
		if err != nil {
			h.logger.Error("quote request failed", zap.Error(err))
			c.JSON(domain.StatusCode(err), domain.ResponseError{Message: err.Error()})
			err = nil
		}
	}()

	var body quoteRequestBody
	if bindErr := c.Bind(&body); bindErr != nil {
		err = bindErr
		return err
	}

	req, err := parseQuoteRequest(body)
	if err != nil {
		return err
	}

	result, err := h.router.GetOptimalQuote(ctx, req)
	if err != nil {
		return err
	}

	resp := quoteResponseBody{
		Quote: quoteDetail{
			InputAmount:         result.Plan.TotalIn.String(),
			OutputAmount:        result.Plan.TotalOut.String(),
			MinimumOutputAmount: result.Plan.TotalMinOut.String(),
			Rate:                rate(result.Plan.TotalIn, result.Plan.TotalOut),
			PriceImpact:         result.Plan.WeightedPriceImpact,
		},
		UnsignedTransactions: []string{},
		Route:                buildRouteDetail(result),
	}

	if req.PoolId != nil {
		s := req.PoolId.String()
		resp.PoolId = &s
	}

	if result.Plan.PlatformFee != nil {
		resp.PlatformFee = &platformFeeDetail{
			Gain:       result.Plan.PlatformFee.Gain.String(),
			FeeAmount:  result.Plan.PlatformFee.FeeAmount.String(),
			FeeBps:     result.Plan.PlatformFee.FeeBps,
			FeeAddress: result.Plan.PlatformFee.FeeAddress,
			Applied:    result.Plan.PlatformFee.Applied,
		}
	}

	if body.Address != "" {
		groupResult, buildErr := h.builder.Build(ctx, result.Plan, result.Tokens, body.Address)
		if buildErr != nil {
			// BuildFailed degrades gracefully per the error design: the
			// quote is still returned with an empty transaction list.
			resp.Error = buildErr.Error()
			h.logger.Debug("group build failed, returning quote-only response", zap.Error(buildErr))
		} else {
			resp.Quote.NetworkFee = groupResult.NetworkFee
			resp.UnsignedTransactions = encodeTransactions(groupResult)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func buildRouteDetail(result usecase.QuoteResult) routeDetail {
	if !result.IsMultiHop {
		pools := make([]string, 0)
		if len(result.Plan.Hops) > 0 {
			for _, s := range result.Plan.Hops[0] {
				pools = append(pools, s.Pool.PoolId.String())
			}
		}
		return routeDetail{Type: "direct", Pools: pools}
	}

	hops := make([]hopDetail, 0, len(result.Plan.Hops))
	for _, splits := range result.Plan.Hops {
		pools := make([]string, 0, len(splits))
		for _, s := range splits {
			pools = append(pools, s.Pool.PoolId.String())
		}
		hops = append(hops, hopDetail{Pools: pools})
	}
	return routeDetail{Type: "multi-hop", Hops: hops}
}

func rate(in, out *big.Int) string {
	if in == nil || in.Sign() == 0 {
		return "0"
	}
	r := new(big.Float).Quo(new(big.Float).SetInt(out), new(big.Float).SetInt(in))
	return r.Text('f', 8)
}

func parseQuoteRequest(body quoteRequestBody) (usecase.QuoteRequest, error) {
	inputToken, err := parseToken(body.InputToken)
	if err != nil {
		return usecase.QuoteRequest{}, err
	}
	outputToken, err := parseToken(body.OutputToken)
	if err != nil {
		return usecase.QuoteRequest{}, err
	}

	amount, ok := new(big.Int).SetString(body.Amount, 10)
	if !ok {
		return usecase.QuoteRequest{}, domain.ErrInvalidRequest
	}

	req := usecase.QuoteRequest{
		InputToken:  inputToken,
		OutputToken: outputToken,
		Amount:      amount,
		SlippageBps: uint32(body.SlippageTolerance * 10000),
	}

	if body.PoolId != "" {
		id, err := parseToken(body.PoolId)
		if err != nil {
			return usecase.QuoteRequest{}, err
		}
		req.PoolId = &id
	}
	if body.Dex != "" {
		dex := domain.Dex(body.Dex)
		req.Dex = &dex
	}

	return req, nil
}

func parseToken(s string) (domain.TokenId, error) {
	id, err := domain.ParseTokenId(s)
	if err != nil {
		return 0, domain.ErrInvalidRequest
	}
	return id, nil
}

func encodeTransactions(result group.Result) []string {
	out := make([]string, 0, len(result.Transactions))
	for _, t := range result.Transactions {
		out = append(out, encodeTransaction(t))
	}
	return out
}

// encodeTransaction returns the base64-encoded msgpack wire form of an
// unsigned transaction, the format the client's wallet expects to sign.
func encodeTransaction(t types.Transaction) string {
	return base64.StdEncoding.EncodeToString(msgpack.Encode(&t))
}

// GetPool implements GET /pool/:poolId.
func (h *Handler) GetPool(c echo.Context) error {
	id, err := domain.ParseTokenId(c.Param("poolId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResponseError{Message: domain.ErrInvalidRequest.Error()})
	}

	pool, ok := h.catalog.Pool(id)
	if !ok {
		err := domain.PoolNotFoundError{PoolId: id}
		return c.JSON(domain.StatusCode(err), domain.ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, pool)
}

// GetConfigPools implements GET /config/pools.
func (h *Handler) GetConfigPools(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Pools())
}

// GetConfigTokens implements GET /config/tokens.
func (h *Handler) GetConfigTokens(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Tokens())
}

// GetHealth implements GET /health.
func (h *Handler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
