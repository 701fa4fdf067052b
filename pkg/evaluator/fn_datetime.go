package evaluator

import (
	"context"
	"regexp"
	"time"

	"github.com/sandrolain/jsonata/pkg/types"
)

// isoLayout renders timestamps in UTC with millisecond precision.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

var iso8601 = regexp.MustCompile(`^\d{4}(-[01]\d)?(-[0-3]\d)?(T[0-2]\d:[0-5]\d:[0-5]\d(\.\d+)?([+-][0-2]\d:?[0-5]\d|Z)?)?$`)

// parse layouts, most specific first. Fractional seconds are accepted by
// time.Parse after the seconds field even though the layouts omit them.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseISO parses an ISO 8601 timestamp. A timestamp without an offset
// is taken to be UTC.
func parseISO(s string) (time.Time, error) {
	if !iso8601.MatchString(s) {
		return time.Time{}, types.NewError(types.ErrInvalidTimestamp, "", -1).WithValue(s)
	}
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, types.NewError(types.ErrInvalidTimestamp, "", -1).WithValue(s).WithCause(lastErr)
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoLayout)
}

func fnNow(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return call.ev.timestamp.UTC().Format(isoLayout), nil
}

func fnMillis(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	return float64(call.ev.timestamp.UnixMilli()), nil
}

func fnFromMillis(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	ms, ok := args[0].(float64)
	if !ok {
		return nil, nil
	}
	return formatMillis(int64(ms)), nil
}

func fnToMillis(ctx context.Context, call *Call, args []interface{}) (interface{}, error) {
	str, ok := args[0].(string)
	if !ok {
		return nil, nil
	}
	t, err := parseISO(str)
	if err != nil {
		return nil, err
	}
	return float64(t.UnixMilli()), nil
}
