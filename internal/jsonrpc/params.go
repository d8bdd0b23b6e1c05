package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// errInvalidParams はparamsの形式不正
var errInvalidParams = errors.New("invalid params")

// mapParams はparams（デコード済みのany）を構造体に変換する
func mapParams(params any, target any) error {
	if params == nil {
		return nil
	}

	// anyをJSONに変換してから構造体にアンマーシャル
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}
