package primitive

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotConvertible is returned when no permitted category converts a value.
	ErrNotConvertible = errors.New("value is not convertible")
	// ErrPrecisionLoss is returned when a float with a fraction targets an int
	// and CategoryUnsafeNumber is not allowed.
	ErrPrecisionLoss = errors.New("conversion loses precision")
)

// dateLayouts are tried in order when parsing textual datetimes.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// Coerce converts a decoded scalar to the given kind using the conversions
// permitted by categories. Nil stays nil and KindAny keeps the value as is.
func Coerce(v any, to Kind, categories Category) (any, error) {
	if v == nil || to == KindAny {
		return v, nil
	}

	from := FromValue(v)
	if from == KindAny || !categories.Allows(from, to) {
		return nil, fmt.Errorf("%w: %T to %s", ErrNotConvertible, v, to.Name())
	}

	v = normalize(v)

	switch to {
	case KindString:
		return toString(v), nil
	case KindInt:
		return toInt(v, categories)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	case KindTime:
		return toTime(v)
	case KindDuration:
		return toDuration(v)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", ErrNotConvertible, to)
	}
}

// normalize widens integers to int64 and floats to float64.
func normalize(v any) any {
	switch v.(type) {
	case time.Time, time.Duration:
		return v
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	default:
		return v
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any, categories Category) (any, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrNotConvertible, x)
		}

		return int(n), nil
	case float64:
		if x != math.Trunc(x) && !categories.Has(CategoryUnsafeNumber) {
			return nil, fmt.Errorf("%w: %v", ErrPrecisionLoss, x)
		}

		return int(x), nil
	case bool:
		if x {
			return 1, nil
		}

		return 0, nil
	case time.Time:
		return int(x.Unix()), nil
	case time.Duration:
		return int(x), nil
	}

	return nil, fmt.Errorf("%w: %T to int", ErrNotConvertible, v)
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrNotConvertible, x)
		}

		return f, nil
	case time.Duration:
		return x.Seconds(), nil
	}

	return nil, fmt.Errorf("%w: %T to float", ErrNotConvertible, v)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "y", "yes", "on", "true":
			return true, nil
		case "0", "n", "no", "off", "false", "":
			return false, nil
		}

		return nil, fmt.Errorf("%w: %q is not a boolean", ErrNotConvertible, x)
	}

	return nil, fmt.Errorf("%w: %T to bool", ErrNotConvertible, v)
}

func toTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case int64:
		return time.Unix(x, 0).UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}

		return nil, fmt.Errorf("%w: %q is not a datetime", ErrNotConvertible, x)
	}

	return nil, fmt.Errorf("%w: %T to time", ErrNotConvertible, v)
}

func toDuration(v any) (any, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case int64:
		return time.Duration(x), nil
	case float64:
		return time.Duration(x * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a duration", ErrNotConvertible, x)
		}

		return d, nil
	}

	return nil, fmt.Errorf("%w: %T to duration", ErrNotConvertible, v)
}
