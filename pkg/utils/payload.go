package utils

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// DecodePayload converts a loosely typed message payload (a map after JSON
// decoding, or a struct when passed in-process) into T.
func DecodePayload[T any](v any) (T, error) {
	var result T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Result:           &result,
	})
	if err != nil {
		return *new(T), errors.WithMessage(err, "new payload decoder")
	}
	if err := decoder.Decode(v); err != nil {
		return *new(T), errors.WithMessage(err, "decode payload")
	}
	return result, nil
}
