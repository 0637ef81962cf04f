package translator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

func command(exec ...smarthome.Execution) smarthome.Command {
	return smarthome.Command{Execution: exec}
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func stateJSON(t *testing.T, s smarthome.State) string {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	return string(raw)
}

func TestSync_IDAndNameFallback(t *testing.T) {
	f := NewFactory(nil)
	cases := []struct {
		name          string
		serviceName   string
		accessoryName string
		defaults      []string
		display       string
	}{
		{"both names", "Desk Lamp", "Lamp Bridge", []string{"Desk Lamp", "Lamp Bridge"}, "Desk Lamp"},
		{"service name only", "Desk Lamp", "", []string{"Desk Lamp"}, "Desk Lamp"},
		{"accessory name only", "", "Lamp Bridge", []string{"Lamp Bridge"}, "Lamp Bridge"},
		{"no names", "", "", []string{}, smarthome.MissingName},
	}

	for _, dt := range model.AllDeviceTypes() {
		for _, tc := range cases {
			t.Run(dt.String()+"/"+tc.name, func(t *testing.T) {
				svc := newTestService(dt.String(), tc.serviceName, tc.accessoryName, nil)
				d := f.GetTranslator(dt).Sync(svc)

				assert.Equal(t, svc.UniqueID, d.ID)
				assert.Equal(t, tc.defaults, d.Name.DefaultNames)
				assert.Equal(t, tc.display, d.Name.Name)
				assert.Empty(t, d.Name.Nicknames)
				assert.NotNil(t, d.Name.Nicknames)
				assert.True(t, d.WillReportState)
				assert.Equal(t, "Acme", d.DeviceInfo.Manufacturer)
				assert.Equal(t, "1.2.3", d.DeviceInfo.SwVersion)
				assert.Equal(t, svc.Aid, d.CustomData.Aid)
				assert.Equal(t, svc.Iid, d.CustomData.Iid)
				assert.Equal(t, svc.Instance.Username, d.CustomData.InstanceUsername)
				assert.Equal(t, svc.Instance.IPAddress, d.CustomData.InstanceIPAddress)
				assert.Equal(t, svc.Instance.Port, d.CustomData.InstancePort)
			})
		}
	}
}

func TestExecute_EmptyAndUnknownCommands(t *testing.T) {
	f := NewFactory(nil)
	for _, dt := range model.AllDeviceTypes() {
		t.Run(dt.String(), func(t *testing.T) {
			io := &recordingIO{}
			svc := newTestService(dt.String(), "Thing", "", io,
				ch(hap.On, false), ch(hap.Active, 0), ch(hap.RotationSpeed, 0))
			tr := f.GetTranslator(dt)

			res, err := tr.Execute(context.Background(), svc, command())
			require.NoError(t, err)
			assert.Equal(t, smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: "missing command"}, res)

			res, err = tr.Execute(context.Background(), svc, command(smarthome.Execution{Command: "action.devices.commands.Bogus"}))
			require.NoError(t, err)
			assert.Equal(t, smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: "unknown command action.devices.commands.Bogus"}, res)

			assert.Empty(t, io.Writes())
		})
	}
}

func TestFactory_TwoFactorTypes(t *testing.T) {
	f := NewFactory(&model.PluginConfig{})
	guarded := map[model.DeviceType]bool{
		model.DeviceTypeLockMechanism:    true,
		model.DeviceTypeSecuritySystem:   true,
		model.DeviceTypeGarageDoorOpener: true,
	}
	for _, dt := range model.AllDeviceTypes() {
		assert.Equal(t, guarded[dt], f.RequiresTwoFactor(dt), dt.String())
	}

	_, ok := f.ForService(&model.Service{Type: hap.ServiceAccessoryInformation})
	assert.False(t, ok)
	tr, ok := f.ForService(&model.Service{Type: hap.ServiceLightbulb})
	require.True(t, ok)
	assert.IsType(t, &LightbulbStrategy{}, tr)
}

func TestSwitch_OnOff(t *testing.T) {
	io := &recordingIO{}
	svc := newTestService(hap.ServiceOutlet, "Kettle", "", io, ch(hap.On, 1))
	s := &SwitchStrategy{DeviceType: smarthome.TypeOutlet}

	assert.Equal(t, smarthome.State{"on": true, "online": true}, s.Query(svc))
	assert.Equal(t, smarthome.TypeOutlet, s.Sync(svc).Type)

	res, err := s.Execute(context.Background(), svc, command(smarthome.MustParams(smarthome.CommandOnOff, smarthome.OnOffParams{On: boolPtr(false)})))
	require.NoError(t, err)
	assert.IsType(t, smarthome.Success{}, res)
	assert.Equal(t, []recordedWrite{{hap.On, false}}, io.Writes())

	res, err = s.Execute(context.Background(), svc, command(smarthome.Execution{Command: smarthome.CommandOnOff}))
	require.NoError(t, err)
	assert.IsType(t, smarthome.Error{}, res)
}

func TestActive_OnOffWritesInteger(t *testing.T) {
	io := &recordingIO{}
	svc := newTestService(hap.ServiceTelevision, "TV", "", io, ch(hap.Active, 0))
	s := &ActiveStrategy{DeviceType: smarthome.TypeTV}

	assert.Equal(t, false, s.Query(svc)["on"])
	_, err := s.Execute(context.Background(), svc, command(smarthome.MustParams(smarthome.CommandOnOff, smarthome.OnOffParams{On: boolPtr(true)})))
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{{hap.Active, 1}}, io.Writes())
}

func TestExecute_WriteErrorPropagates(t *testing.T) {
	boom := errors.New("hub rejected write")
	io := &recordingIO{err: boom}
	svc := newTestService(hap.ServiceSwitch, "Switch", "", io, ch(hap.On, false))

	res, err := (&SwitchStrategy{DeviceType: smarthome.TypeSwitch}).Execute(context.Background(), svc,
		command(smarthome.MustParams(smarthome.CommandOnOff, smarthome.OnOffParams{On: boolPtr(true)})))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestExecute_MissingCharacteristic(t *testing.T) {
	tests := map[string]struct {
		strategy    Translator
		serviceType string
		chars       []char
		exec        smarthome.Execution
		debug       string
	}{
		"thermostat mode": {
			strategy:    &ThermostatStrategy{},
			serviceType: hap.ServiceThermostat,
			exec:        smarthome.MustParams(smarthome.CommandThermostatSetMode, smarthome.ThermostatSetModeParams{ThermostatMode: "heat"}),
			debug:       "TargetHeatingCoolingState not supported",
		},
		"thermostat range without thresholds": {
			strategy:    &ThermostatStrategy{},
			serviceType: hap.ServiceThermostat,
			chars:       []char{ch(hap.TargetTemperature, 20)},
			exec: smarthome.MustParams(smarthome.CommandThermostatTemperatureSetRange, smarthome.ThermostatTemperatureSetRangeParams{
				ThermostatTemperatureSetpointHigh: floatPtr(24), ThermostatTemperatureSetpointLow: floatPtr(18),
			}),
			debug: "CoolingThresholdTemperature not supported",
		},
		"heater cooler setpoint with one threshold": {
			strategy:    &HeaterCoolerStrategy{},
			serviceType: hap.ServiceHeaterCooler,
			chars:       []char{ch(hap.Active, 1), ch(hap.CoolingThresholdTemperature, 24)},
			exec:        smarthome.MustParams(smarthome.CommandThermostatTemperatureSetpoint, smarthome.ThermostatTemperatureSetpointParams{ThermostatTemperatureSetpoint: floatPtr(21)}),
			debug:       "HeatingThresholdTemperature not supported",
		},
		"bulb brightness": {
			strategy:    &LightbulbStrategy{},
			serviceType: hap.ServiceLightbulb,
			chars:       []char{ch(hap.On, false)},
			exec:        smarthome.MustParams(smarthome.CommandBrightnessAbsolute, smarthome.BrightnessAbsoluteParams{Brightness: floatPtr(40)}),
			debug:       "Brightness not supported",
		},
		"bulb colour": {
			strategy:    &LightbulbStrategy{},
			serviceType: hap.ServiceLightbulb,
			chars:       []char{ch(hap.On, false), ch(hap.Hue, 0)},
			exec: smarthome.MustParams(smarthome.CommandColorAbsolute, smarthome.ColorAbsoluteParams{
				Color: smarthome.Color{SpectrumHSV: &smarthome.SpectrumHSV{Hue: 120, Saturation: 0.5, Value: 1}},
			}),
			debug: "Saturation not supported",
		},
		"lock": {
			strategy:    &LockStrategy{},
			serviceType: hap.ServiceLockMechanism,
			exec:        smarthome.MustParams(smarthome.CommandLockUnlock, smarthome.LockUnlockParams{Lock: boolPtr(true)}),
			debug:       "LockTargetState not supported",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			io := &recordingIO{}
			svc := newTestService(tt.serviceType, "Hall", "", io, tt.chars...)

			res, err := tt.strategy.Execute(context.Background(), svc, command(tt.exec))
			require.NoError(t, err)
			assert.Equal(t, smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: tt.debug}, res)
			assert.Empty(t, io.Writes())
		})
	}
}

func TestLightbulb_ColorTemperatureRoundTrip(t *testing.T) {
	const min, max = 140, 500
	for _, kelvin := range []float64{2000, 3000, 4000, 6000} {
		native := kelvinToMired(kelvin, min, max)
		assert.GreaterOrEqual(t, native, float64(min))
		assert.LessOrEqual(t, native, float64(max))
		assert.Equal(t, kelvin, miredToKelvin(native, min, max), "kelvin %v", kelvin)
	}
	// The native scale is inverted: warm light sits at the top.
	assert.Equal(t, float64(max), kelvinToMired(2000, min, max))
	assert.Equal(t, float64(min), kelvinToMired(6000, min, max))
}

func TestLightbulb_Sync(t *testing.T) {
	s := &LightbulbStrategy{}

	plain := s.Sync(newTestService(hap.ServiceLightbulb, "Bulb", "", nil, ch(hap.On, false)))
	assert.Equal(t, []string{smarthome.TraitOnOff}, plain.Traits)
	assert.Equal(t, smarthome.TypeLight, plain.Type)

	full := s.Sync(newTestService(hap.ServiceLightbulb, "Bulb", "", nil,
		ch(hap.On, false), ch(hap.Brightness, 0), ch(hap.Hue, 0), ch(hap.Saturation, 0),
		char{name: hap.ColorTemperature, value: 140, min: 140, max: 500}))
	assert.Equal(t, []string{smarthome.TraitOnOff, smarthome.TraitBrightness, smarthome.TraitColorSetting}, full.Traits)
	assert.Equal(t, "hsv", full.Attributes["colorModel"])
	assert.Equal(t, map[string]int{"temperatureMinK": 2000, "temperatureMaxK": 6000}, full.Attributes["colorTemperatureRange"])
	assert.Equal(t, false, full.Attributes["commandOnlyColorSetting"])
}

func TestLightbulb_QueryHSV(t *testing.T) {
	svc := newTestService(hap.ServiceLightbulb, "Bulb", "", nil,
		ch(hap.On, 0), ch(hap.Brightness, 65), ch(hap.Hue, 0), ch(hap.Saturation, 0))

	assert.JSONEq(t,
		`{"on":false,"online":true,"brightness":65,"color":{"spectrumHsv":{"hue":0,"saturation":0,"value":1}}}`,
		stateJSON(t, (&LightbulbStrategy{}).Query(svc)))
}

func TestLightbulb_QueryTemperatureOverridesHSV(t *testing.T) {
	svc := newTestService(hap.ServiceLightbulb, "Bulb", "", nil,
		ch(hap.On, true), ch(hap.Hue, 120), ch(hap.Saturation, 50),
		char{name: hap.ColorTemperature, value: 320, min: 140, max: 500})

	state := (&LightbulbStrategy{}).Query(svc)
	assert.Equal(t, map[string]interface{}{"temperatureK": float64(4000)}, state["color"])
}

func TestLightbulb_Execute(t *testing.T) {
	ctx := context.Background()
	s := &LightbulbStrategy{}

	t.Run("brightness turns the bulb on", func(t *testing.T) {
		io := &recordingIO{}
		svc := newTestService(hap.ServiceLightbulb, "Bulb", "", io, ch(hap.On, false), ch(hap.Brightness, 0))
		res, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandBrightnessAbsolute,
			smarthome.BrightnessAbsoluteParams{Brightness: floatPtr(40)})))
		require.NoError(t, err)
		assert.IsType(t, smarthome.Success{}, res)
		assert.Equal(t, []recordedWrite{{hap.On, true}, {hap.Brightness, float64(40)}}, io.Writes())
	})

	t.Run("explicit on wins", func(t *testing.T) {
		io := &recordingIO{}
		svc := newTestService(hap.ServiceLightbulb, "Bulb", "", io, ch(hap.On, true), ch(hap.Brightness, 10))
		_, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandBrightnessAbsolute,
			smarthome.BrightnessAbsoluteParams{Brightness: floatPtr(40), On: boolPtr(false)})))
		require.NoError(t, err)
		assert.Equal(t, []recordedWrite{{hap.On, false}, {hap.Brightness, float64(40)}}, io.Writes())
	})

	t.Run("hsv colour", func(t *testing.T) {
		io := &recordingIO{}
		svc := newTestService(hap.ServiceLightbulb, "Bulb", "", io, ch(hap.On, true), ch(hap.Hue, 0), ch(hap.Saturation, 0))
		_, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandColorAbsolute, smarthome.ColorAbsoluteParams{
			Color: smarthome.Color{SpectrumHSV: &smarthome.SpectrumHSV{Hue: 240, Saturation: 0.5, Value: 1}},
		})))
		require.NoError(t, err)
		assert.Equal(t, []recordedWrite{{hap.Hue, float64(240)}, {hap.Saturation, float64(50)}}, io.Writes())
	})

	t.Run("colour temperature", func(t *testing.T) {
		io := &recordingIO{}
		svc := newTestService(hap.ServiceLightbulb, "Bulb", "", io, ch(hap.On, true),
			char{name: hap.ColorTemperature, value: 140, min: 140, max: 500})
		_, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandColorAbsolute, smarthome.ColorAbsoluteParams{
			Color: smarthome.Color{Temperature: 2000},
		})))
		require.NoError(t, err)
		assert.Equal(t, []recordedWrite{{hap.ColorTemperature, float64(500)}}, io.Writes())
	})

	t.Run("unsupported colour", func(t *testing.T) {
		svc := newTestService(hap.ServiceLightbulb, "Bulb", "", &recordingIO{}, ch(hap.On, true))
		res, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandColorAbsolute, smarthome.ColorAbsoluteParams{
			Color: smarthome.Color{Name: "red"},
		})))
		require.NoError(t, err)
		assert.IsType(t, smarthome.Error{}, res)
	})
}

func TestGarageDoor_QueryTable(t *testing.T) {
	s := &GarageDoorStrategy{}
	for state, want := range []int{100, 0, 50, 50, 50} {
		svc := newTestService(hap.ServiceGarageDoorOpener, "Garage", "", nil, ch(hap.CurrentDoorState, state))
		assert.Equal(t, want, s.Query(svc)["openPercent"], "door state %d", state)
	}

	for name, svc := range map[string]*model.Service{
		"no door state": newTestService(hap.ServiceGarageDoorOpener, "Garage", "", nil),
		"out of range":  newTestService(hap.ServiceGarageDoorOpener, "Garage", "", nil, ch(hap.CurrentDoorState, 7)),
	} {
		assert.NotContains(t, s.Query(svc), "openPercent", name)
	}
}

func TestGarageDoor_Execute(t *testing.T) {
	s := &GarageDoorStrategy{}
	cases := []struct {
		percent float64
		target  int
	}{
		{0, 1},
		{1, 0},
		{50, 0},
		{100, 0},
	}
	for _, tc := range cases {
		io := &recordingIO{}
		svc := newTestService(hap.ServiceGarageDoorOpener, "Garage", "", io, ch(hap.CurrentDoorState, 1), ch(hap.TargetDoorState, 1))
		cmd := command(smarthome.MustParams(smarthome.CommandOpenClose, smarthome.OpenCloseParams{OpenPercent: floatPtr(tc.percent)}))

		res, err := s.Execute(context.Background(), svc, cmd)
		require.NoError(t, err)
		assert.IsType(t, smarthome.Success{}, res)
		assert.Equal(t, []recordedWrite{{hap.TargetDoorState, tc.target}}, io.Writes())
		assert.Equal(t, tc.percent > 0, s.RequiresTwoFactor(cmd))
	}
}

func TestOpenClose_Cover(t *testing.T) {
	io := &recordingIO{}
	svc := newTestService(hap.ServiceWindowCovering, "Blinds", "", io, ch(hap.CurrentPosition, 30), ch(hap.TargetPosition, 30))
	s := &OpenCloseStrategy{DeviceType: smarthome.TypeBlinds, OpenDirection: []string{"UP", "DOWN"}}

	assert.Equal(t, smarthome.State{"on": true, "online": true, "openPercent": 30}, s.Query(svc))
	assert.Equal(t, []string{"UP", "DOWN"}, s.Sync(svc).Attributes["openDirection"])

	_, err := s.Execute(context.Background(), svc, command(smarthome.MustParams(smarthome.CommandOpenClose, smarthome.OpenCloseParams{OpenPercent: floatPtr(75)})))
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{{hap.TargetPosition, float64(75)}}, io.Writes())
}

func TestThermostatModes_HeatcoolXorAuto(t *testing.T) {
	translators := map[string]Translator{
		hap.ServiceThermostat:   &ThermostatStrategy{},
		hap.ServiceHeaterCooler: &HeaterCoolerStrategy{},
	}
	for serviceType, tr := range translators {
		withThresholds := newTestService(serviceType, "Climate", "", nil,
			ch(hap.CoolingThresholdTemperature, 25), ch(hap.HeatingThresholdTemperature, 18))
		without := newTestService(serviceType, "Climate", "", nil, ch(hap.TargetTemperature, 21))
		onlyOne := newTestService(serviceType, "Climate", "", nil, ch(hap.CoolingThresholdTemperature, 25))

		assert.Equal(t, "off,heat,cool,heatcool", tr.Sync(withThresholds).Attributes["availableThermostatModes"], serviceType)
		assert.Equal(t, "off,heat,cool,auto", tr.Sync(without).Attributes["availableThermostatModes"], serviceType)
		assert.Equal(t, "off,heat,cool,auto", tr.Sync(onlyOne).Attributes["availableThermostatModes"], serviceType)
	}
}

func TestThermostat_TemperatureUnit(t *testing.T) {
	celsius := newTestService(hap.ServiceThermostat, "Hall", "", nil, ch(hap.TemperatureDisplayUnits, 0))
	fahrenheit := newTestService(hap.ServiceThermostat, "Hall", "", nil, ch(hap.TemperatureDisplayUnits, 1))

	assert.Equal(t, "C", (&ThermostatStrategy{}).Sync(celsius).Attributes["thermostatTemperatureUnit"])
	assert.Equal(t, "F", (&ThermostatStrategy{}).Sync(fahrenheit).Attributes["thermostatTemperatureUnit"])
	assert.Equal(t, "F", (&ThermostatStrategy{ForceFahrenheit: true}).Sync(celsius).Attributes["thermostatTemperatureUnit"])
}

func TestThermostat_Query(t *testing.T) {
	s := &ThermostatStrategy{}

	basic := newTestService(hap.ServiceThermostat, "Hall", "", nil,
		ch(hap.TargetHeatingCoolingState, 1), ch(hap.TargetTemperature, 21), ch(hap.CurrentTemperature, 19.5))
	assert.Equal(t, smarthome.State{
		"online":                        true,
		"thermostatMode":                "heat",
		"thermostatTemperatureSetpoint": 21,
		"thermostatTemperatureAmbient":  19.5,
	}, s.Query(basic))

	ranged := newTestService(hap.ServiceThermostat, "Hall", "", nil,
		ch(hap.TargetHeatingCoolingState, 3), ch(hap.TargetTemperature, 21), ch(hap.CurrentTemperature, 19.5),
		ch(hap.CurrentRelativeHumidity, 45),
		ch(hap.CoolingThresholdTemperature, 25), ch(hap.HeatingThresholdTemperature, 18))
	state := s.Query(ranged)
	assert.Equal(t, "heatcool", state["thermostatMode"])
	assert.Equal(t, 18, state["thermostatTemperatureSetpointLow"])
	assert.Equal(t, 25, state["thermostatTemperatureSetpointHigh"])
	assert.Equal(t, 45, state["thermostatHumidityAmbient"])
}

func TestThermostat_Execute(t *testing.T) {
	ctx := context.Background()
	s := &ThermostatStrategy{}
	newSvc := func(io *recordingIO) *model.Service {
		return newTestService(hap.ServiceThermostat, "Hall", "", io,
			ch(hap.TargetHeatingCoolingState, 0), ch(hap.TargetTemperature, 20),
			ch(hap.CoolingThresholdTemperature, 25), ch(hap.HeatingThresholdTemperature, 18))
	}

	io := &recordingIO{}
	_, err := s.Execute(ctx, newSvc(io), command(smarthome.MustParams(smarthome.CommandThermostatSetMode,
		smarthome.ThermostatSetModeParams{ThermostatMode: "heatcool"})))
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{{hap.TargetHeatingCoolingState, 3}}, io.Writes())

	io = &recordingIO{}
	_, err = s.Execute(ctx, newSvc(io), command(smarthome.MustParams(smarthome.CommandThermostatTemperatureSetpoint,
		smarthome.ThermostatTemperatureSetpointParams{ThermostatTemperatureSetpoint: floatPtr(22.5)})))
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{{hap.TargetTemperature, 22.5}}, io.Writes())

	io = &recordingIO{}
	_, err = s.Execute(ctx, newSvc(io), command(smarthome.MustParams(smarthome.CommandThermostatTemperatureSetRange,
		smarthome.ThermostatTemperatureSetRangeParams{
			ThermostatTemperatureSetpointHigh: floatPtr(26),
			ThermostatTemperatureSetpointLow:  floatPtr(17),
		})))
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{
		{hap.CoolingThresholdTemperature, float64(26)},
		{hap.HeatingThresholdTemperature, float64(17)},
	}, io.Writes())

	res, err := s.Execute(ctx, newSvc(&recordingIO{}), command(smarthome.MustParams(smarthome.CommandThermostatSetMode,
		smarthome.ThermostatSetModeParams{ThermostatMode: "eco"})))
	require.NoError(t, err)
	assert.IsType(t, smarthome.Error{}, res)
}

func TestHeaterCooler_SyncAirConditioner(t *testing.T) {
	s := &HeaterCoolerStrategy{}

	plain := s.Sync(newTestService(hap.ServiceHeaterCooler, "Heater", "", nil, ch(hap.Active, 0)))
	assert.Equal(t, smarthome.TypeThermostat, plain.Type)
	assert.False(t, plain.HasTrait(smarthome.TraitFanSpeed))
	assert.Equal(t, false, plain.Attributes["commandOnlyOnOff"])
	assert.Equal(t, false, plain.Attributes["queryOnlyOnOff"])

	ac := s.Sync(newTestService(hap.ServiceHeaterCooler, "AC", "", nil, ch(hap.Active, 0), ch(hap.RotationSpeed, 0)))
	assert.Equal(t, smarthome.TypeACUnit, ac.Type)
	assert.True(t, ac.HasTrait(smarthome.TraitFanSpeed))
	assert.True(t, ac.HasTrait(smarthome.TraitOnOff))
	assert.Equal(t, true, ac.Attributes["supportsFanSpeedPercent"])
}

func TestHeaterCooler_Query(t *testing.T) {
	s := &HeaterCoolerStrategy{}
	newSvc := func(active, target int) *model.Service {
		return newTestService(hap.ServiceHeaterCooler, "AC", "", nil,
			ch(hap.Active, active), ch(hap.TargetHeaterCoolerState, target), ch(hap.CurrentTemperature, 23),
			ch(hap.CoolingThresholdTemperature, 24), ch(hap.HeatingThresholdTemperature, 19), ch(hap.RotationSpeed, 60))
	}

	off := s.Query(newSvc(0, 1))
	assert.Equal(t, "off", off["thermostatMode"])
	assert.Equal(t, false, off["on"])
	assert.NotContains(t, off, "thermostatTemperatureSetpoint")
	assert.Equal(t, 60, off["currentFanSpeedPercent"])

	heat := s.Query(newSvc(1, 1))
	assert.Equal(t, "heat", heat["thermostatMode"])
	assert.Equal(t, 19, heat["thermostatTemperatureSetpoint"])

	cool := s.Query(newSvc(1, 2))
	assert.Equal(t, 24, cool["thermostatTemperatureSetpoint"])

	auto := s.Query(newSvc(1, 0))
	assert.Equal(t, "heatcool", auto["thermostatMode"])
	assert.Equal(t, "auto", auto["activeThermostatMode"])
	assert.Equal(t, 19, auto["thermostatTemperatureSetpointLow"])
	assert.Equal(t, 24, auto["thermostatTemperatureSetpointHigh"])
}

func TestHeaterCooler_Execute(t *testing.T) {
	ctx := context.Background()
	s := &HeaterCoolerStrategy{}

	io := &recordingIO{}
	svc := newTestService(hap.ServiceHeaterCooler, "Heater", "", io,
		ch(hap.Active, 1), ch(hap.TargetHeaterCoolerState, 1),
		ch(hap.CoolingThresholdTemperature, 24), ch(hap.HeatingThresholdTemperature, 19))

	_, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandThermostatSetMode, smarthome.ThermostatSetModeParams{ThermostatMode: "off"})))
	require.NoError(t, err)
	_, err = s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandThermostatSetMode, smarthome.ThermostatSetModeParams{ThermostatMode: "cool"})))
	require.NoError(t, err)
	_, err = s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandThermostatTemperatureSetpoint,
		smarthome.ThermostatTemperatureSetpointParams{ThermostatTemperatureSetpoint: floatPtr(21)})))
	require.NoError(t, err)
	_, err = s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandOnOff, smarthome.OnOffParams{On: boolPtr(false)})))
	require.NoError(t, err)

	assert.Equal(t, []recordedWrite{
		{hap.Active, 0},
		{hap.Active, 1},
		{hap.TargetHeaterCoolerState, 2},
		{hap.CoolingThresholdTemperature, float64(21)},
		{hap.HeatingThresholdTemperature, float64(21)},
		{hap.Active, 0},
	}, io.Writes())

	res, err := s.Execute(ctx, svc, command(smarthome.MustParams(smarthome.CommandSetFanSpeed, smarthome.SetFanSpeedParams{FanSpeedPercent: floatPtr(50)})))
	require.NoError(t, err)
	assert.Equal(t, smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: "RotationSpeed not supported"}, res)
}

func TestHeaterCooler_SetFanSpeed(t *testing.T) {
	io := &recordingIO{}
	svc := newTestService(hap.ServiceHeaterCooler, "AC", "", io, ch(hap.Active, 1), ch(hap.RotationSpeed, 20))

	res, err := (&HeaterCoolerStrategy{}).Execute(context.Background(), svc,
		command(smarthome.MustParams(smarthome.CommandSetFanSpeed, smarthome.SetFanSpeedParams{FanSpeedPercent: floatPtr(80)})))
	require.NoError(t, err)
	assert.IsType(t, smarthome.Success{}, res)
	assert.Equal(t, []recordedWrite{{hap.RotationSpeed, float64(80)}}, io.Writes())
}

func TestSecuritySystem_Query(t *testing.T) {
	s := &SecuritySystemStrategy{}

	away := s.Query(newTestService(hap.ServiceSecuritySystem, "Alarm", "", nil, ch(hap.SecuritySystemCurrentState, 1)))
	assert.Equal(t, true, away["isArmed"])
	assert.Equal(t, "AWAY", away["currentArmLevel"])

	off := s.Query(newTestService(hap.ServiceSecuritySystem, "Alarm", "", nil, ch(hap.SecuritySystemCurrentState, 3)))
	assert.Equal(t, false, off["isArmed"])
	assert.NotContains(t, off, "currentArmLevel")
	assert.Equal(t, smarthome.StatusSuccess, off["status"])
}

func TestSecuritySystem_Execute(t *testing.T) {
	ctx := context.Background()
	s := &SecuritySystemStrategy{}

	io := &recordingIO{}
	svc := newTestService(hap.ServiceSecuritySystem, "Alarm", "", io, ch(hap.SecuritySystemTargetState, 3))

	arm := command(smarthome.MustParams(smarthome.CommandArmDisarm, smarthome.ArmDisarmParams{Arm: boolPtr(true), ArmLevel: "NIGHT"}))
	res, err := s.Execute(ctx, svc, arm)
	require.NoError(t, err)
	assert.Equal(t, smarthome.Success{
		IDs:    []string{svc.UniqueID},
		States: smarthome.State{"isArmed": true, "currentArmLevel": "NIGHT"},
	}, res)
	assert.False(t, s.RequiresTwoFactor(arm))

	disarm := command(smarthome.MustParams(smarthome.CommandArmDisarm, smarthome.ArmDisarmParams{Arm: boolPtr(false), ArmLevel: "HOME"}))
	_, err = s.Execute(ctx, svc, disarm)
	require.NoError(t, err)
	assert.True(t, s.RequiresTwoFactor(disarm))

	assert.Equal(t, []recordedWrite{
		{hap.SecuritySystemTargetState, 2},
		{hap.SecuritySystemTargetState, 3},
	}, io.Writes())

	sync := s.Sync(svc)
	levels := sync.Attributes["availableArmLevels"].(map[string]interface{})["levels"].([]map[string]interface{})
	assert.Len(t, levels, 3)
	assert.Equal(t, "HOME", levels[0]["level_name"])
}

func TestLock(t *testing.T) {
	s := &LockStrategy{}
	cases := map[int][2]bool{
		0: {false, false},
		1: {true, false},
		2: {false, true},
		3: {false, false},
	}
	for current, want := range cases {
		state := s.Query(newTestService(hap.ServiceLockMechanism, "Door", "", nil, ch(hap.LockCurrentState, current)))
		assert.Equal(t, want[0], state["isLocked"], "state %d", current)
		assert.Equal(t, want[1], state["isJammed"], "state %d", current)
	}

	io := &recordingIO{}
	svc := newTestService(hap.ServiceLockMechanism, "Door", "", io, ch(hap.LockCurrentState, 1), ch(hap.LockTargetState, 1))
	lock := command(smarthome.MustParams(smarthome.CommandLockUnlock, smarthome.LockUnlockParams{Lock: boolPtr(true)}))
	unlock := command(smarthome.MustParams(smarthome.CommandLockUnlock, smarthome.LockUnlockParams{Lock: boolPtr(false)}))

	_, err := s.Execute(context.Background(), svc, unlock)
	require.NoError(t, err)
	_, err = s.Execute(context.Background(), svc, lock)
	require.NoError(t, err)
	assert.Equal(t, []recordedWrite{{hap.LockTargetState, 0}, {hap.LockTargetState, 1}}, io.Writes())

	assert.True(t, s.RequiresTwoFactor(unlock))
	assert.False(t, s.RequiresTwoFactor(lock))
	assert.False(t, s.RequiresTwoFactor(command()))
}

func TestSensors(t *testing.T) {
	temp := newTestService(hap.ServiceTemperatureSensor, "Outside", "", nil, ch(hap.CurrentTemperature, 12.5))
	assert.Equal(t, smarthome.State{
		"online":                     true,
		"temperatureSetpointCelsius": 12.5,
		"temperatureAmbientCelsius":  12.5,
	}, (&TemperatureSensorStrategy{}).Query(temp))
	assert.Equal(t, "F", (&TemperatureSensorStrategy{ForceFahrenheit: true}).Sync(temp).Attributes["temperatureUnitForUX"])
	assert.Equal(t, true, (&TemperatureSensorStrategy{}).Sync(temp).Attributes["queryOnlyTemperatureControl"])

	humidity := newTestService(hap.ServiceHumiditySensor, "Bathroom", "", nil, ch(hap.CurrentRelativeHumidity, 62))
	assert.Equal(t, smarthome.State{"online": true, "humidityAmbientPercent": 62}, (&HumiditySensorStrategy{}).Query(humidity))
	assert.Equal(t, []string{smarthome.TraitHumiditySetting}, (&HumiditySensorStrategy{}).Sync(humidity).Traits)
}
