package redis

import (
	"context"
	"encoding/json"
	"errors"

	"autotrade/internal/app/ds"
	"autotrade/internal/app/settlement"

	"github.com/go-redis/redis/v8"
)

const selectionTokenPrefix = "selection_token:"

// привязка токена, хранится в Redis как JSON
type tokenBinding struct {
	ContractID uint         `json:"contract_id"`
	PartyRole  ds.PartyRole `json:"party_role"`
}

// SaveToken сохраняет привязку токена к (контракт, сторона) с TTL из конфига
func (c *Client) SaveToken(ctx context.Context, token string, contractID uint, partyRole ds.PartyRole) error {
	payload, err := json.Marshal(tokenBinding{ContractID: contractID, PartyRole: partyRole})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, selectionTokenPrefix+token, payload, c.cfg.SelectionTokenTTL).Err()
}

// LookupToken возвращает привязку токена. Неизвестный и истёкший токены
// неразличимы - в обоих случаях ErrInvalidToken
func (c *Client) LookupToken(ctx context.Context, token string) (uint, ds.PartyRole, error) {
	payload, err := c.rdb.Get(ctx, selectionTokenPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, "", settlement.ErrInvalidToken
	}
	if err != nil {
		return 0, "", err
	}

	var binding tokenBinding
	if err := json.Unmarshal(payload, &binding); err != nil {
		return 0, "", settlement.ErrInvalidToken
	}
	return binding.ContractID, binding.PartyRole, nil
}
