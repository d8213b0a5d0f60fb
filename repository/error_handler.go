package repository

import (
	"encoding/json"
	"errors"

	"github.com/go-kit/log/level"
	"github.com/go-resty/resty/v2"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/types"
)

func handleError(resp *resty.Response) error {
	if resp.StatusCode() == 404 {
		return types.ErrNotFound
	}
	if resp.StatusCode() == 409 {
		return types.ErrConflict
	}
	if resp.IsError() {
		var body map[string]interface{}
		uErr := json.Unmarshal(resp.Body(), &body)
		if uErr != nil {
			level.Error(global.Logger).Log("msg", "failed to unmarshal response", "error", uErr)
			return uErr
		}
		if errDesc, ok := body["error"]; ok {
			return errors.New(errDesc.(string))
		}
		return types.ErrBadRequest
	}
	return nil
}
