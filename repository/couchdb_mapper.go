package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-resty/resty/v2"
)

/**
* Object Mapper (from a couchdb resty response, or raw bytes from a fake
* repository, to a typed object)
**/

func MapToObject(resp interface{}, obj interface{}) error {
	// Check if obj is a pointer to a struct
	val := reflect.ValueOf(obj)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("obj is not a pointer to a struct")
	}

	var data []byte
	switch r := resp.(type) {
	case *resty.Response:
		data = r.Body()
	case []byte:
		data = r
	case json.RawMessage:
		data = r
	default:
		return errors.New("resp is not a resty.Response or raw bytes")
	}

	err := json.Unmarshal(data, obj)
	if err != nil {
		return fmt.Errorf("%s cannot be mapped to the given object", string(data))
	}
	return nil
}
