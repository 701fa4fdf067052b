// Package extdatetime provides calendar functions on top of the
// millisecond timestamps used by $millis, $toMillis and $fromMillis.
//
// $parseDate accepts the many date notations understood by
// github.com/araddon/dateparse, so that documents carrying dates such as
// "Mar 3, 2021 10:15" can be brought into the millisecond form.
package extdatetime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns every date/time function definition.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		ParseDate(),
		DateAdd(),
		DateDiff(),
		DateComponents(),
		DateStartOf(),
		DateEndOf(),
	}
}

// AllEntries returns All as function entries for jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// ParseDate defines $parseDate(str [, timezone]). It returns the
// timestamp of str in milliseconds. Dates without an explicit offset are
// read in timezone, an IANA name, or in UTC. Ambiguous numeric dates are
// read month first.
func ParseDate() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "parseDate",
		Signature: "<s-s?:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			loc, err := location(argAt(args, 1))
			if err != nil {
				return nil, err
			}
			t, err := dateparse.ParseIn(strings.TrimSpace(str), loc, dateparse.PreferMonthFirst(true))
			if err != nil {
				return nil, types.NewError(types.ErrInvalidTimestamp, "", -1).WithValue(str).WithCause(err)
			}
			return float64(t.UnixMilli()), nil
		},
	}
}

// DateAdd defines $dateAdd(millis, amount, unit). Units are year,
// month, day, hour, minute, second and millisecond; month and year
// arithmetic follows the calendar.
func DateAdd() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "dateAdd",
		Signature: "<n-ns:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			ms, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			amount, _ := args[1].(float64)
			unit, _ := args[2].(string)
			t := fromMillis(ms)
			n := int(amount)
			switch strings.ToLower(unit) {
			case "year":
				t = t.AddDate(n, 0, 0)
			case "month":
				t = t.AddDate(0, n, 0)
			case "day":
				t = t.AddDate(0, 0, n)
			default:
				d, err := duration(unit)
				if err != nil {
					return nil, err
				}
				t = t.Add(time.Duration(n) * d)
			}
			return float64(t.UnixMilli()), nil
		},
	}
}

// DateDiff defines $dateDiff(from, to, unit): the number of whole units
// from from to to, negative when to is earlier.
func DateDiff() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "dateDiff",
		Signature: "<nns:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			from, ok1 := args[0].(float64)
			to, ok2 := args[1].(float64)
			if !ok1 || !ok2 {
				return nil, nil
			}
			unit, _ := args[2].(string)
			tFrom, tTo := fromMillis(from), fromMillis(to)
			switch strings.ToLower(unit) {
			case "year":
				return float64(monthsBetween(tFrom, tTo) / 12), nil
			case "month":
				return float64(monthsBetween(tFrom, tTo)), nil
			case "day":
				return float64(int64(to-from) / (24 * time.Hour).Milliseconds()), nil
			}
			d, err := duration(unit)
			if err != nil {
				return nil, err
			}
			return float64(int64(to-from) / d.Milliseconds()), nil
		},
	}
}

// DateComponents defines $dateComponents(millis [, timezone]), the
// calendar fields of a timestamp. weekday counts from 0 for Sunday.
func DateComponents() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "dateComponents",
		Signature: "<n-s?:o>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			ms, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			loc, err := location(argAt(args, 1))
			if err != nil {
				return nil, err
			}
			t := fromMillis(ms).In(loc)
			obj := types.NewOrderedObject()
			obj.Set("year", float64(t.Year()))
			obj.Set("month", float64(t.Month()))
			obj.Set("day", float64(t.Day()))
			obj.Set("hour", float64(t.Hour()))
			obj.Set("minute", float64(t.Minute()))
			obj.Set("second", float64(t.Second()))
			obj.Set("millisecond", float64(t.Nanosecond()/int(time.Millisecond)))
			obj.Set("weekday", float64(t.Weekday()))
			return obj, nil
		},
	}
}

// DateStartOf defines $dateStartOf(millis, unit), the first millisecond
// of the enclosing unit in UTC.
func DateStartOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "dateStartOf",
		Signature: "<n-s:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			ms, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			unit, _ := args[1].(string)
			start, err := startOf(fromMillis(ms), unit)
			if err != nil {
				return nil, err
			}
			return float64(start.UnixMilli()), nil
		},
	}
}

// DateEndOf defines $dateEndOf(millis, unit), the last millisecond of
// the enclosing unit in UTC.
func DateEndOf() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "dateEndOf",
		Signature: "<n-s:n>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			ms, ok := args[0].(float64)
			if !ok {
				return nil, nil
			}
			unit, _ := args[1].(string)
			t := fromMillis(ms)
			start, err := startOf(t, unit)
			if err != nil {
				return nil, err
			}
			var next time.Time
			switch strings.ToLower(unit) {
			case "year":
				next = start.AddDate(1, 0, 0)
			case "month":
				next = start.AddDate(0, 1, 0)
			case "day":
				next = start.AddDate(0, 0, 1)
			default:
				d, _ := duration(unit)
				next = start.Add(d)
			}
			return float64(next.UnixMilli() - 1), nil
		},
	}
}

func startOf(t time.Time, unit string) (time.Time, error) {
	y, m, d := t.Date()
	switch strings.ToLower(unit) {
	case "year":
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), nil
	case "month":
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), nil
	case "day":
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	dur, err := duration(unit)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(dur), nil
}

func duration(unit string) (time.Duration, error) {
	switch strings.ToLower(unit) {
	case "hour":
		return time.Hour, nil
	case "minute":
		return time.Minute, nil
	case "second":
		return time.Second, nil
	case "millisecond":
		return time.Millisecond, nil
	}
	return 0, types.NewError(types.ErrArgumentMismatch, fmt.Sprintf("unsupported date unit %q", unit), -1).WithValue(unit)
}

// monthsBetween counts the whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	sign := 1
	if b.Before(a) {
		a, b = b, a
		sign = -1
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months > 0 && a.AddDate(0, months, 0).After(b) {
		months--
	}
	return sign * months
}

func location(v interface{}) (*time.Location, error) {
	name, ok := v.(string)
	if !ok || name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, types.NewError(types.ErrArgumentMismatch, fmt.Sprintf("unknown time zone %q", name), -1).WithValue(name).WithCause(err)
	}
	return loc, nil
}

func fromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func argAt(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}
