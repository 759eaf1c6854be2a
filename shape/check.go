package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func rulesValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Check reports why v does not conform to t, or nil. A nil v conforms when
// t is nullable or optional.
func (t Type) Check(v any) error {
	if v == nil {
		if t.IsNullable() || t.IsOptional() {
			return nil
		}
		return errors.New("must not be null")
	}
	if err := checkKind(t.Core(), v); err != nil {
		return err
	}
	for _, tag := range t.RuleTags() {
		if err := rulesValidator().Var(v, tag); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return fmt.Errorf("failed rule %q", verrs[0].Tag())
			}
			return fmt.Errorf("rule %q: %w", tag, err)
		}
	}
	return nil
}

func checkKind(c Type, v any) error {
	switch c.kind {
	case KindString:
		if _, ok := v.(string); !ok {
			return mismatch(c, v)
		}
	case KindInteger, KindBigInt:
		if !isIntegral(v) {
			return mismatch(c, v)
		}
	case KindFloat:
		if !isNumeric(v) {
			return mismatch(c, v)
		}
	case KindDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
		case string:
			if _, err := decimal.NewFromString(x); err != nil {
				return fmt.Errorf("expected decimal, got %q", x)
			}
		default:
			if !isNumeric(v) {
				return mismatch(c, v)
			}
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(c, v)
		}
	case KindDate:
		return checkTime(c, v, time.DateOnly)
	case KindDateTime:
		return checkTime(c, v, time.RFC3339)
	case KindJSON:
		if _, err := json.Marshal(v); err != nil {
			return fmt.Errorf("expected JSON encodable value: %w", err)
		}
	case KindUUID:
		switch x := v.(type) {
		case uuid.UUID:
		case string:
			if _, err := uuid.Parse(x); err != nil {
				return fmt.Errorf("expected uuid, got %q", x)
			}
		default:
			return mismatch(c, v)
		}
	case KindBytes:
		if _, ok := v.([]byte); !ok {
			return mismatch(c, v)
		}
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return mismatch(c, v)
		}
		if !slices.Contains(c.values, s) {
			return fmt.Errorf("expected one of %s, got %q", strings.Join(c.values, ", "), s)
		}
	}
	return nil
}

func checkTime(c Type, v any, layout string) error {
	switch x := v.(type) {
	case time.Time:
		return nil
	case string:
		if _, err := time.Parse(layout, x); err != nil {
			return fmt.Errorf("expected %s, got %q", c.kind, x)
		}
		return nil
	}
	return mismatch(c, v)
}

func mismatch(c Type, v any) error {
	return fmt.Errorf("expected %s, got %T", c.KindName(), v)
}

func isIntegral(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == math.Trunc(f) && !math.IsInf(f, 0)
	}
	return false
}

func isNumeric(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
