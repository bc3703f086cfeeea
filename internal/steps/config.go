package steps

import (
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/averlon/questline/internal/constants"
	"github.com/averlon/questline/internal/domain"
	questerrors "github.com/averlon/questline/internal/errors"
	"github.com/averlon/questline/internal/game"
)

// decodeConfig normalizes a step's opaque config map into a typed
// executor config struct. Input is weakly typed: YAML and JSON sources
// may carry numbers as int, int64, or float64, and durations as either
// Go duration strings ("2s") or bare numbers of seconds.
func decodeConfig(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			secondsToDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return questerrors.Wrap(questerrors.ErrStepInvalid, "building config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return questerrors.Wrapf(questerrors.ErrStepInvalid, "decoding step config: %v", err)
	}
	return nil
}

// secondsToDurationHookFunc converts bare numeric config values into
// durations, interpreting them as seconds. Sub-second values survive
// through the float path ("settle: 0.5").
func secondsToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			_ = from
			return data, nil
		}
	}
}

// stepTimeout returns the step's execution budget, falling back to the
// runtime default when the definition carries none.
func stepTimeout(step *domain.Step) time.Duration {
	if step.Timeout > 0 {
		return step.Timeout
	}
	return constants.DefaultStepTimeout
}

// locateOptions builds perception options from the shared target
// fields of an executor config.
func locateOptions(region *game.Region, threshold float64) game.LocateOptions {
	return game.LocateOptions{Region: region, Threshold: threshold}
}
