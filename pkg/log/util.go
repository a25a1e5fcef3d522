package log

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// toFields turns logr-style key/value pairs into zap fields. zap.Field and
// error values may stand alone anywhere in the list. A trailing value without
// a key is logged as "arg#N"; a pair with a non-string key as "invalid_key_N".
func toFields(args ...any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case zap.Field:
			fields = append(fields, v)
			continue
		case error:
			fields = append(fields, zap.Error(v))
			continue
		}

		if i == len(args)-1 {
			fields = append(fields, zap.Any(fmt.Sprintf("arg#%d", i), args[i]))
			break
		}

		key, ok := args[i].(string)
		if !ok {
			fields = append(fields, zap.Any(fmt.Sprintf("invalid_key_%d", i/2+1), map[string]any{
				"key":   args[i],
				"value": args[i+1],
			}))
			i++
			continue
		}

		fields = append(fields, field(key, args[i+1]))
		i++
	}
	return fields
}

// field picks the zap encoder for one value. zap.Any covers the primitive
// types; errors keep their key and anything printable falls back to String.
func field(key string, val any) zap.Field {
	switch v := val.(type) {
	case time.Time, time.Duration:
		return zap.Any(key, v)
	case error:
		return zap.NamedError(key, v)
	case []byte:
		return zap.ByteString(key, v)
	case fmt.Stringer:
		return zap.Stringer(key, v)
	default:
		return zap.Any(key, v)
	}
}
