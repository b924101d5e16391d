// Package catalog loads and serves the immutable pool/token configuration:
// JSON files read once at startup, held in memory for the process
// lifetime, following the pattern of a
// small file-backed usecase behind a narrow interface (mirrors domain.
// PoolCatalog here rather than Osmosis's chain-ingested pool store, since
// this domain's pools are operator-configured rather than indexed).
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/voinetwork/swaprouter/domain"
)

// poolFile and tokenFile mirror the on-disk JSON shapes for PoolConfig and
// TokenMetadata; domain.PoolConfig's pointer/map-valued fields need an
// explicit wire shape rather than direct json tags on the domain type,
// keeping on-disk format changes from rippling into the planning core.
type poolFile struct {
	PoolId uint64  `json:"poolId"`
	Dex    string  `json:"dex"`
	FeeBps *uint32 `json:"feeBps,omitempty"`

	WrappedPair *wrappedPairFile `json:"wrappedPair,omitempty"`

	NomadexTokA *tokenRefFile `json:"nomadexTokA,omitempty"`
	NomadexTokB *tokenRefFile `json:"nomadexTokB,omitempty"`
}

type wrappedPairFile struct {
	TokA                uint64            `json:"tokA"`
	TokB                uint64            `json:"tokB"`
	UnderlyingToWrapped map[string]uint64 `json:"underlyingToWrapped"`
	Unwrap              []uint64          `json:"unwrap"`
}

type tokenRefFile struct {
	Id   uint64 `json:"id"`
	Type string `json:"type"`
}

type tokenMetaFile struct {
	Id             uint64 `json:"id"`
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Decimals       int    `json:"decimals"`
	WrappedTokenId uint64 `json:"wrappedTokenId,omitempty"`
}

// Catalog implements domain.PoolCatalog from two loaded JSON files.
type Catalog struct {
	pools    []domain.PoolConfig
	poolByID map[domain.TokenId]domain.PoolConfig
	tokens   map[domain.TokenId]domain.TokenMetadata
}

// Load reads poolsPath and tokensPath into a Catalog. Both must be valid
// JSON arrays of the documented shape; any read, parse or pool-shape error
// fails startup rather than leaving the process running against a partial
// catalog. Pool token IDs are not checked against the token list.
func Load(poolsPath, tokensPath string) (*Catalog, error) {
	var poolFiles []poolFile
	if err := readJSON(poolsPath, &poolFiles); err != nil {
		return nil, fmt.Errorf("catalog: load pools: %w", err)
	}

	var tokenFiles []tokenMetaFile
	if err := readJSON(tokensPath, &tokenFiles); err != nil {
		return nil, fmt.Errorf("catalog: load tokens: %w", err)
	}

	c := &Catalog{
		poolByID: make(map[domain.TokenId]domain.PoolConfig, len(poolFiles)),
		tokens:   make(map[domain.TokenId]domain.TokenMetadata, len(tokenFiles)),
	}

	for _, t := range tokenFiles {
		id := domain.TokenId(t.Id)
		c.tokens[id] = domain.TokenMetadata{
			Id:             id,
			Symbol:         t.Symbol,
			Name:           t.Name,
			Decimals:       t.Decimals,
			WrappedTokenId: domain.TokenId(t.WrappedTokenId),
		}
	}

	for _, p := range poolFiles {
		cfg, err := toPoolConfig(p)
		if err != nil {
			return nil, fmt.Errorf("catalog: pool %d: %w", p.PoolId, err)
		}
		c.pools = append(c.pools, cfg)
		c.poolByID[cfg.PoolId] = cfg
	}

	return c, nil
}

func toPoolConfig(p poolFile) (domain.PoolConfig, error) {
	cfg := domain.PoolConfig{
		PoolId: domain.TokenId(p.PoolId),
		Dex:    domain.Dex(p.Dex),
		FeeBps: p.FeeBps,
	}

	switch cfg.Dex {
	case domain.DexHumbleSwap:
		if p.WrappedPair == nil {
			return domain.PoolConfig{}, fmt.Errorf("humbleswap pool missing wrappedPair")
		}
		cfg.WrappedPair = domain.WrappedPairConfig{
			TokA:                domain.TokenId(p.WrappedPair.TokA),
			TokB:                domain.TokenId(p.WrappedPair.TokB),
			UnderlyingToWrapped: make(map[domain.TokenId]domain.TokenId, len(p.WrappedPair.UnderlyingToWrapped)),
			Unwrap:              make(map[domain.TokenId]struct{}, len(p.WrappedPair.Unwrap)),
		}
		for underlying, wrapped := range p.WrappedPair.UnderlyingToWrapped {
			id, err := parseTokenId(underlying)
			if err != nil {
				return domain.PoolConfig{}, err
			}
			cfg.WrappedPair.UnderlyingToWrapped[id] = domain.TokenId(wrapped)
		}
		for _, w := range p.WrappedPair.Unwrap {
			cfg.WrappedPair.Unwrap[domain.TokenId(w)] = struct{}{}
		}

	case domain.DexNomadex:
		if p.NomadexTokA == nil || p.NomadexTokB == nil {
			return domain.PoolConfig{}, fmt.Errorf("nomadex pool missing token refs")
		}
		cfg.NomadexTokA = domain.NomadexTokenRef{Id: domain.TokenId(p.NomadexTokA.Id), Type: domain.NomadexTokenType(p.NomadexTokA.Type)}
		cfg.NomadexTokB = domain.NomadexTokenRef{Id: domain.TokenId(p.NomadexTokB.Id), Type: domain.NomadexTokenType(p.NomadexTokB.Type)}

	default:
		return domain.PoolConfig{}, fmt.Errorf("unknown dex %q", p.Dex)
	}

	return cfg, nil
}

func parseTokenId(s string) (domain.TokenId, error) {
	id, err := domain.ParseTokenId(s)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q: %w", s, err)
	}
	return id, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Catalog) Pools() []domain.PoolConfig { return c.pools }

func (c *Catalog) Pool(id domain.TokenId) (domain.PoolConfig, bool) {
	p, ok := c.poolByID[id]
	return p, ok
}

func (c *Catalog) Token(id domain.TokenId) (domain.TokenMetadata, bool) {
	t, ok := c.tokens[id]
	return t, ok
}

func (c *Catalog) Tokens() map[domain.TokenId]domain.TokenMetadata {
	return c.tokens
}
