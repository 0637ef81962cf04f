package translator

import (
	"context"
	"math"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

const (
	minKelvin = 2000
	maxKelvin = 6000
)

// LightbulbStrategy derives its traits from the characteristics the bulb
// exposes: Brightness, Hue for HSV colour and ColorTemperature for CCT.
type LightbulbStrategy struct{}

func (s *LightbulbStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	traits := []string{smarthome.TraitOnOff}
	attributes := map[string]interface{}{}

	if svc.Has(hap.Brightness) {
		traits = append(traits, smarthome.TraitBrightness)
	}
	colour := false
	if svc.Has(hap.Hue) {
		colour = true
		attributes["colorModel"] = "hsv"
	}
	if svc.Has(hap.ColorTemperature) {
		colour = true
		attributes["colorTemperatureRange"] = map[string]int{
			"temperatureMinK": minKelvin,
			"temperatureMaxK": maxKelvin,
		}
		attributes["commandOnlyColorSetting"] = false
	}
	if colour {
		traits = append(traits, smarthome.TraitColorSetting)
	}

	d := baseSyncDevice(svc, smarthome.TypeLight, traits...)
	d.Attributes = attributes
	return d
}

func (s *LightbulbStrategy) Query(svc *model.Service) smarthome.State {
	state := smarthome.State{
		"on":     truthy(svc, hap.On),
		"online": true,
	}
	if svc.Has(hap.Brightness) {
		state["brightness"] = value(svc, hap.Brightness)
	}
	if svc.Has(hap.Hue) {
		state["color"] = map[string]interface{}{
			"spectrumHsv": map[string]interface{}{
				"hue":        value(svc, hap.Hue),
				"saturation": number(svc, hap.Saturation) / 100,
				"value":      1,
			},
		}
	}
	// A bulb reporting both colour models is reported by temperature.
	if c := svc.Characteristic(hap.ColorTemperature); c != nil {
		state["color"] = map[string]interface{}{
			"temperatureK": miredToKelvin(c.Float(), c.MinValue, c.MaxValue),
		}
	}
	return state
}

func (s *LightbulbStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandOnOff:
		p, err := smarthome.DecodeParams[smarthome.OnOffParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.On); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.On, *p.On); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandBrightnessAbsolute:
		p, err := smarthome.DecodeParams[smarthome.BrightnessAbsoluteParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.On, hap.Brightness); m != "" {
			return notSupported(svc, m)
		}
		on := *p.Brightness > 0
		if p.On != nil {
			on = *p.On
		}
		if err := write(ctx, svc, hap.On, on); err != nil {
			return nil, err
		}
		if err := write(ctx, svc, hap.Brightness, *p.Brightness); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandColorAbsolute:
		p, err := smarthome.DecodeParams[smarthome.ColorAbsoluteParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if hsv := p.Color.SpectrumHSV; hsv != nil {
			if m := lacking(svc, hap.Hue, hap.Saturation); m != "" {
				return notSupported(svc, m)
			}
			if err := write(ctx, svc, hap.Hue, hsv.Hue); err != nil {
				return nil, err
			}
			if err := write(ctx, svc, hap.Saturation, hsv.Saturation*100); err != nil {
				return nil, err
			}
			return success(svc)
		}
		if p.Color.Temperature != 0 {
			c := svc.Characteristic(hap.ColorTemperature)
			if c == nil {
				return notSupported(svc, hap.ColorTemperature)
			}
			if err := c.SetValue(ctx, kelvinToMired(p.Color.Temperature, c.MinValue, c.MaxValue)); err != nil {
				return nil, err
			}
			return success(svc)
		}
		return failure(svc, "unsupported color "+string(exec.Params))
	}
	return unknownCommand(svc, exec.Command)
}

// kelvinToMired rescales a Kelvin value into the bulb's native range. The
// native scale runs the other way, so the result is mirrored around
// [min, max].
func kelvinToMired(kelvin, min, max float64) float64 {
	accessory := min + (max-min)*((kelvin-minKelvin)/(maxKelvin-minKelvin))
	return math.Round(max - (accessory - min))
}

// miredToKelvin is the inverse of kelvinToMired.
func miredToKelvin(mired, min, max float64) float64 {
	if max <= min {
		return minKelvin
	}
	mirrored := max - (mired - min)
	return math.Round(minKelvin + (maxKelvin-minKelvin)*((mirrored-min)/(max-min)))
}
