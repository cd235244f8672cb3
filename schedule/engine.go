package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cyp0633/schedrule/recurrence"
	"github.com/samber/mo"
	rrulego "github.com/teambition/rrule-go"
)

var (
	// ErrScheduleTooLong is returned when the text exceeds MaxScheduleLength
	ErrScheduleTooLong = errors.New("schedule text too long")
	// ErrIncompatible is returned when another RFC 5545 parser rejects the canonical form
	ErrIncompatible = errors.New("schedule not accepted by rrule-go")
)

// Engine parses, validates and canonicalizes schedule texts
type Engine struct {
	cache  *ParseCache
	config EngineConfig
	logger *slog.Logger
	zones  recurrence.ZoneResolver
}

// NewEngine creates a new schedule engine with DefaultEngineConfig
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// NewEngineWithoutCache creates an engine that parses every call
func NewEngineWithoutCache() *Engine {
	return NewEngineWithConfig(DisabledCacheConfig)
}

// Parse returns the schedule described by text. Results, including failures,
// are cached by text; callers always get their own copy of the set.
func (e *Engine) Parse(text string) (*recurrence.Set, error) {
	text = strings.TrimSpace(text)

	if e.cache != nil {
		if result, ok := e.cache.Get(text); ok {
			return cloneResult(result)
		}
	}

	result := e.parse(text)
	if e.cache != nil {
		e.cache.Set(text, result)
	}
	return cloneResult(result)
}

func (e *Engine) parse(text string) mo.Result[*recurrence.Set] {
	if limit := e.config.MaxScheduleLength; limit > 0 && len(text) > limit {
		return mo.Err[*recurrence.Set](fmt.Errorf("%w: %d bytes, limit %d", ErrScheduleTooLong, len(text), limit))
	}

	set, err := recurrence.ParseSet(text,
		recurrence.WithZoneResolver(e.zones),
		recurrence.WithIgnoredTokenHandler(func(token string) {
			e.logger.Debug("ignoring schedule token", "token", token)
		}),
	)
	if err != nil {
		e.logger.Debug("schedule rejected", "error", err)
		return mo.Err[*recurrence.Set](err)
	}
	return mo.Ok(set)
}

func cloneResult(result mo.Result[*recurrence.Set]) (*recurrence.Set, error) {
	set, err := result.Get()
	if err != nil {
		return nil, err
	}
	return set.Clone(), nil
}

// Validate reports whether text is a well-formed schedule
func (e *Engine) Validate(text string) error {
	_, err := e.Parse(text)
	return err
}

// Normalize returns the canonical form of text
func (e *Engine) Normalize(text string) (string, error) {
	info, err := e.Inspect(text)
	if err != nil {
		return "", err
	}
	return info.Canonical, nil
}

// Inspect parses text and describes the result. A warning is logged when the
// canonical form does not carry every field the input set.
func (e *Engine) Inspect(text string) (Info, error) {
	set, err := e.Parse(text)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Input:     strings.TrimSpace(text),
		Canonical: set.Format(),
		Start:     set.Start(),
		Zone:      set.Zone().String(),
	}
	for _, r := range set.Inclusions() {
		info.Rules = append(info.Rules, r.Format())
	}
	for _, r := range set.Exclusions() {
		info.Exclusions = append(info.Exclusions, r.Format())
	}

	reparsed, err := recurrence.ParseSet(info.Canonical, recurrence.WithZoneResolver(e.zones))
	info.Lossy = err != nil || !reparsed.Equal(set)
	if info.Lossy {
		e.logger.Warn("canonical schedule drops fields not used by its frequency",
			"input", info.Input, "canonical", info.Canonical)
	}

	return info, nil
}

// ParseAll parses every text, keeping one result per input in order
func (e *Engine) ParseAll(texts []string) []mo.Result[*recurrence.Set] {
	results := make([]mo.Result[*recurrence.Set], len(texts))
	for i, text := range texts {
		results[i] = mo.TupleToResult(e.Parse(text))
	}
	return results
}

// CheckCompatibility feeds each rule of set, in canonical form, to rrule-go
// anchored at the set's start.
func (e *Engine) CheckCompatibility(set *recurrence.Set) error {
	check := func(kind string, r *recurrence.Rule) error {
		opt, err := rrulego.StrToROptionInLocation(r.Format(), set.Zone())
		if err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrIncompatible, kind, r.Format(), err)
		}
		opt.Dtstart = set.Start()
		if _, err := rrulego.NewRRule(*opt); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrIncompatible, kind, r.Format(), err)
		}
		return nil
	}

	for _, r := range set.Inclusions() {
		if err := check("RRULE", r); err != nil {
			return err
		}
	}
	for _, r := range set.Exclusions() {
		if err := check("EXRULE", r); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns cache statistics; zero when caching is disabled
func (e *Engine) Stats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Close releases the cache, if any
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
